package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/edlenz/go-nsbox/config"
	"github.com/edlenz/go-nsbox/pkg/network"
)

// spawnInit re-executes the current binary as "init" inside the new
// namespace set. The child's handshake endpoint rides along as fd 3; the
// parent's endpoint is close-on-exec and never reaches the child.
func spawnInit(root, name string, flags uintptr, child *os.File, argv []string) (process, error) {
	args := append([]string{"--root", root, "init", name}, argv...)
	cmd := exec.Command("/proc/self/exe", args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = []*os.File{child}
	cmd.SysProcAttr = &syscall.SysProcAttr{Cloneflags: flags}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("launcher: spawn into namespaces: %v", err)
	}
	return &realProcess{pid: cmd.Process.Pid}, nil
}

// realProcess handles a child by pid through raw wait4, bypassing
// exec.Cmd bookkeeping so the wait can be retried on EINTR explicitly.
type realProcess struct {
	pid int
}

func (p *realProcess) Pid() int {
	return p.pid
}

func (p *realProcess) Wait() error {
	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(p.pid, &ws, 0, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("launcher: wait4 pid %d: %v", p.pid, err)
		}
		return nil
	}
}

func (p *realProcess) Kill() {
	unix.Kill(p.pid, unix.SIGKILL)
	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(p.pid, &ws, 0, nil)
		if err == unix.EINTR {
			continue
		}
		return
	}
}

// hostNetwork adapts pkg/network to the Network collaborator.
type hostNetwork struct{}

func (hostNetwork) Create(name string, pid int, cfg *config.Config) error {
	nc := network.Config{}
	if cfg.Network != nil {
		nc.Bridge = cfg.Network.Bridge
		nc.HostAddress = cfg.Network.HostAddress
	}
	return network.Create(name, pid, nc)
}

func (hostNetwork) Destroy(name string) error {
	return network.Destroy(name)
}
