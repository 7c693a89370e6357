// Package seccomp installs an optional syscall allowlist in the child
// right before it execs the container program. No policy means no filter.
package seccomp

import (
	"fmt"

	libseccomp "github.com/elastic/go-seccomp-bpf"
)

// Policy is a syscall allowlist. Calls outside the list fail with EPERM
// rather than killing the process, so a misconfigured list is diagnosable
// from inside the container.
type Policy struct {
	Allowed []string
}

// Empty reports whether the policy filters nothing.
func (p Policy) Empty() bool {
	return len(p.Allowed) == 0
}

// Install compiles the policy to BPF and loads it for the calling
// process and its descendants. NoNewPrivs is set as part of loading.
func (p Policy) Install() error {
	if p.Empty() {
		return nil
	}
	filter := libseccomp.Filter{
		NoNewPrivs: true,
		Flag:       libseccomp.FilterFlagTSync,
		Policy: libseccomp.Policy{
			DefaultAction: libseccomp.ActionErrno,
			Syscalls: []libseccomp.SyscallGroup{
				{
					Action: libseccomp.ActionAllow,
					Names:  p.Allowed,
				},
			},
		},
	}
	if err := libseccomp.LoadFilter(filter); err != nil {
		return fmt.Errorf("seccomp: load filter: %v", err)
	}
	return nil
}
