package launcher

import (
	"golang.org/x/sys/unix"

	"github.com/edlenz/go-nsbox/config"
)

// baseFlags is the isolation every container gets: its own pid space,
// IPC objects and mount table.
const baseFlags = unix.CLONE_NEWPID | unix.CLONE_NEWIPC | unix.CLONE_NEWNS

// computeFlags derives the namespace set from the configuration. UTS and
// network namespaces are opt-in through the corresponding configuration
// sections. Computed once before spawn, immutable after.
func computeFlags(cfg *config.Config) uintptr {
	flags := uintptr(baseFlags)
	if cfg.HasHostname() {
		flags |= unix.CLONE_NEWUTS
	}
	if cfg.HasNetwork() {
		flags |= unix.CLONE_NEWNET
	}
	return flags
}
