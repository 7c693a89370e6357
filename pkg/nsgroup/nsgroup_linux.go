// Package nsgroup registers a started container with a control group so
// its process tree can be accounted for and managed as one unit.
// Registration is best effort from the caller's point of view: a host
// without a cgroup filesystem yields ErrNotFound, which the start path
// logs and ignores.
//
// Only the cgroup v2 unified hierarchy is recognized: the root must
// carry a cgroup.procs file. Hosts still on split v1 hierarchies fall
// into the ErrNotFound path.
package nsgroup

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
)

// ErrNotFound reports that no cgroup filesystem is mounted at the
// registry root.
var ErrNotFound = errors.New("nsgroup: cgroup filesystem not found")

const (
	defaultRoot = "/sys/fs/cgroup"
	prefix      = "nsbox"
	cgroupProcs = "cgroup.procs"
	dirPerm     = 0o755
	filePerm    = 0o644
)

// Registry creates and removes per-container groups under Root. The zero
// value uses the host cgroup mount.
type Registry struct {
	Root string
}

func (r Registry) root() string {
	if r.Root != "" {
		return r.Root
	}
	return defaultRoot
}

func (r Registry) groupPath(name string) string {
	return path.Join(r.root(), prefix, name)
}

// Register creates the group for name and moves pid into it.
func (r Registry) Register(name string, pid int) error {
	if _, err := os.Stat(path.Join(r.root(), cgroupProcs)); err != nil {
		return ErrNotFound
	}
	p := r.groupPath(name)
	if err := os.MkdirAll(p, dirPerm); err != nil {
		return fmt.Errorf("nsgroup: create %s: %v", p, err)
	}
	procs := []byte(strconv.Itoa(pid) + "\n")
	if err := os.WriteFile(path.Join(p, cgroupProcs), procs, filePerm); err != nil {
		return fmt.Errorf("nsgroup: attach pid %d: %v", pid, err)
	}
	return nil
}

// Unregister removes the group for name. The group directory can only be
// removed once its processes are gone; failures are reported for the
// caller to log.
func (r Registry) Unregister(name string) error {
	err := os.Remove(r.groupPath(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("nsgroup: remove group: %v", err)
	}
	return nil
}
