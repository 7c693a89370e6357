// Package caps drops capabilities from the bounding set of the calling
// process. The start path removes CAP_SYS_BOOT unconditionally right
// before exec so a contained program can never reboot the host.
package caps

import (
	"fmt"

	"github.com/syndtr/gocapability/capability"
	"golang.org/x/sys/unix"
)

// DropBounding removes c from the bounding set. The change survives
// exec and cannot be undone by the contained program.
func DropBounding(c capability.Cap) error {
	if err := unix.Prctl(unix.PR_CAPBSET_DROP, uintptr(c), 0, 0, 0); err != nil {
		return fmt.Errorf("caps: drop %s from bounding set: %v", c, err)
	}
	return nil
}

// DropBoot removes CAP_SYS_BOOT.
func DropBoot() error {
	return DropBounding(capability.CAP_SYS_BOOT)
}
