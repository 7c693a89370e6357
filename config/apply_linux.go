package config

import (
	"fmt"

	"golang.org/x/sys/unix"
)

const defaultMountFlags = unix.MS_NOEXEC | unix.MS_NOSUID | unix.MS_NODEV

// Apply performs the in-namespace side of the configuration: hostname and
// mounts. It runs in the child after the parent finished its privileged
// setup and before the target program execs.
func (c *Config) Apply() error {
	if c.HasHostname() {
		if err := unix.Sethostname([]byte(c.Hostname)); err != nil {
			return fmt.Errorf("config: set hostname %q: %v", c.Hostname, err)
		}
	}
	for _, m := range c.Mounts {
		if err := unix.Mount(m.Source, m.Target, m.Type, defaultMountFlags, m.Data); err != nil {
			return fmt.Errorf("config: mount %s on %s: %v", m.Source, m.Target, err)
		}
	}
	return nil
}
