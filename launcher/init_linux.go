package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"

	"github.com/edlenz/go-nsbox/config"
	"github.com/edlenz/go-nsbox/pkg/caps"
	"github.com/edlenz/go-nsbox/pkg/seccomp"
	"github.com/edlenz/go-nsbox/pkg/syncpair"
)

// syncFd is where the spawning parent placed the child's handshake
// endpoint: first descriptor after stdio.
const syncFd = 3

// Init is the child half of the start protocol. It runs inside the new
// namespaces, re-executed as "init" by spawnInit, and never returns on
// success: the final exec replaces the program image, which closes the
// close-on-exec handshake endpoint and thereby reports success to the
// parent. Every failure instead writes the outcome byte before
// returning, and the caller exits non-zero.
func Init(root, name string, argv []string) error {
	return initChild(syncpair.FromFile(os.NewFile(syncFd, "sync")), root, name, argv)
}

func initChild(side *syncpair.Side, root, name string, argv []string) error {
	side.SetCloseOnExec()

	// Step 1: tell the parent we exist so it can start the setup that
	// needs our pid.
	if err := side.Signal(); err != nil {
		return fmt.Errorf("launcher: init %s: ready signal: %v", name, err)
	}

	// Block until the parent finished group registration and network
	// construction. No timeout: the parent owns our fate.
	if err := side.Await(); err != nil {
		return fmt.Errorf("launcher: init %s: continue signal: %v", name, err)
	}

	cfg, err := config.Load(root, name)
	if err == nil {
		err = setup(cfg)
	}
	if err != nil {
		log.Error().Err(err).Str("container", name).Msg("container setup failed")
		side.Signal()
		return err
	}

	// Exec only returns on failure, and then the outcome byte is still
	// ours to send.
	err = execTarget(cfg, name, argv)
	side.Signal()
	return err
}

// setup applies the in-namespace configuration: container setup from the
// config file, the console binding, and the unconditional boot
// capability drop.
func setup(cfg *config.Config) error {
	if err := cfg.Apply(); err != nil {
		return err
	}
	if err := bindConsole(); err != nil {
		return err
	}
	if err := (seccomp.Policy{Allowed: cfg.SeccompAllowed}).Install(); err != nil {
		return err
	}
	// Dropped regardless of configuration: a container must never be
	// able to reboot the host.
	if err := caps.DropBoot(); err != nil {
		return err
	}
	return nil
}

// bindConsole mounts the launching terminal over /dev/console inside the
// new mount namespace. A start without a terminal (stdin not a tty) has
// no console to bind and skips the step.
func bindConsole() error {
	tty, err := os.Readlink("/proc/self/fd/0")
	if err != nil || !strings.HasPrefix(tty, "/dev/") {
		return nil
	}
	if _, err := os.Stat("/dev/console"); err != nil {
		return nil
	}
	if err := unix.Mount(tty, "/dev/console", "none", unix.MS_BIND, ""); err != nil {
		return fmt.Errorf("launcher: bind %s on /dev/console: %v", tty, err)
	}
	return nil
}

func execTarget(cfg *config.Config, name string, argv []string) error {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return fmt.Errorf("launcher: init %s: %v", name, err)
	}
	env := append(os.Environ(), cfg.Env...)
	if err := unix.Exec(path, argv, env); err != nil {
		return fmt.Errorf("launcher: init %s: exec %s: %v", name, path, err)
	}
	return nil
}
