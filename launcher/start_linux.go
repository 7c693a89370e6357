package launcher

import (
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/edlenz/go-nsbox/config"
	"github.com/edlenz/go-nsbox/pkg/lifecycle"
	"github.com/edlenz/go-nsbox/pkg/locker"
	"github.com/edlenz/go-nsbox/pkg/sigguard"
	"github.com/edlenz/go-nsbox/pkg/syncpair"
)

// Start launches argv as container name and blocks until the container
// exits. The call holds the per-name lock for its whole duration and
// cannot be cancelled once the child runs: the handshake and the final
// wait block indefinitely by design, matching the protocol's no-timeout
// contract.
//
// The returned Result discriminates busy, internal failure and success;
// intermediate failures are logged with their step and only surface
// through that three-way outcome.
func (l *Launcher) Start(name string, argv []string) (Result, error) {
	if len(argv) == 0 {
		return Result{Code: CodeInternal}, errors.New("launcher: no command given")
	}
	log := l.log.With().Str("container", name).Logger()

	cfg, err := config.Load(l.root, name)
	if err != nil {
		return Result{Code: CodeInternal}, err
	}

	lock, err := locker.Acquire(filepath.Join(l.root, name, "lock"))
	if errors.Is(err, locker.ErrBusy) {
		log.Error().Msg("another start is in progress")
		return Result{Code: CodeBusy}, err
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to acquire start lock")
		return Result{Code: CodeInternal}, err
	}

	g := newGuard(log)
	g.push("release lock", func() error {
		lock.Release()
		return nil
	})

	// Every return below this point runs the full unwind. Failure paths
	// additionally land the state in ABORTING; transition errors there
	// are logged, never fatal.
	ok := false
	defer func() {
		if !ok {
			if serr := l.states.Set(name, lifecycle.Aborting); serr != nil {
				log.Warn().Err(serr).Msg("failed to record ABORTING state")
			}
		}
		g.unwind()
	}()

	// The initial STARTING transition is the one state failure that
	// aborts the start: nothing has been spawned yet and refusing early
	// keeps the state record trustworthy.
	if err := l.states.Set(name, lifecycle.Starting); err != nil {
		log.Error().Err(err).Msg("cannot enter STARTING")
		return Result{Code: CodeInternal}, err
	}

	parentSide, childSide, err := syncpair.New()
	if err != nil {
		return Result{Code: CodeInternal}, err
	}
	g.push("close handshake channel", func() error {
		parentSide.Close()
		childSide.Close()
		return nil
	})

	sig := sigguard.Suppress()
	g.push("restore signal dispositions", func() error {
		sig.Restore()
		return nil
	})

	flags := computeFlags(cfg)
	log.Debug().Str("flags", flagString(flags)).Msg("computed namespace set")

	proc, err := l.spawn(l.root, name, flags, childSide.File(), argv)
	if err != nil {
		log.Error().Err(err).Msg("failed to spawn into new namespaces")
		return Result{Code: CodeInternal}, err
	}
	childSide.Close()
	kill := g.push("kill child", func() error {
		proc.Kill()
		return nil
	})
	// Fatal paths below force-terminate the child themselves before the
	// unwind runs: group and network teardown must not touch a live
	// process. The guard entry stays armed as a backstop.
	reap := func() {
		proc.Kill()
		kill.disarm()
	}

	// Step 1/2 of the handshake: the child signals once it exists, then
	// blocks until our privileged setup below is done.
	if err := parentSide.Await(); err != nil {
		log.Error().Err(err).Str("step", "ready").Msg("handshake failed")
		reap()
		return Result{Code: CodeInternal}, err
	}

	// Group registration failure degrades accounting, not isolation.
	if err := l.groups.Register(name, proc.Pid()); err != nil {
		log.Warn().Err(err).Msg("namespace group registration failed, continuing without it")
	}
	g.push("unregister namespace group", func() error {
		return l.groups.Unregister(name)
	})

	var netGuard *guardEntry
	if flags&unix.CLONE_NEWNET != 0 {
		if err := l.net.Create(name, proc.Pid(), cfg); err != nil {
			log.Error().Err(err).Msg("failed to create container network")
			reap()
			return Result{Code: CodeInternal}, err
		}
		netGuard = g.push("destroy network", func() error {
			return l.net.Destroy(name)
		})
	}

	// Step 3: release the child into its in-namespace setup.
	if err := parentSide.Signal(); err != nil {
		log.Error().Err(err).Str("step", "continue").Msg("handshake failed")
		reap()
		return Result{Code: CodeInternal}, err
	}

	// Step 4: a byte means the child failed before exec, closure with no
	// byte means its program image is running. An I/O error counts as a
	// child failure; the asymmetry must never be inverted.
	outcome, err := parentSide.Outcome()
	if err != nil {
		log.Error().Err(err).Str("step", "outcome").Msg("handshake failed")
		reap()
		return Result{Code: CodeInternal}, err
	}
	if outcome == syncpair.OutcomeFailure {
		log.Error().Int("pid", proc.Pid()).Msg("child failed before exec")
		reap()
		return Result{Code: CodeInternal}, fmt.Errorf("launcher: %s: child failed during setup", name)
	}

	if err := l.pids.Write(name, proc.Pid()); err != nil {
		log.Error().Err(err).Msg("failed to persist pid record")
		reap()
		return Result{Code: CodeInternal}, err
	}
	g.push("remove pid record", func() error {
		return l.pids.Remove(name)
	})

	if err := l.states.Set(name, lifecycle.Running); err != nil {
		log.Warn().Err(err).Msg("failed to record RUNNING state")
	}
	log.Info().Int("pid", proc.Pid()).Msg("container running")

	// Blocks until the container's initial process exits; interruption
	// retries inside. A real wait failure is fatal and force-kills the
	// child.
	if err := proc.Wait(); err != nil {
		log.Error().Err(err).Msg("wait for container exit failed")
		reap()
		return Result{Code: CodeInternal}, err
	}
	kill.disarm()

	if err := l.states.Set(name, lifecycle.Stopping); err != nil {
		log.Warn().Err(err).Msg("failed to record STOPPING state")
	}

	if netGuard != nil {
		if err := l.net.Destroy(name); err != nil {
			log.Warn().Err(err).Msg("network teardown failed")
		}
		netGuard.disarm()
	}

	if err := l.states.Set(name, lifecycle.Stopped); err != nil {
		log.Warn().Err(err).Msg("failed to record STOPPED state")
	}
	ok = true

	log.Info().Int("pid", proc.Pid()).Msg("container stopped")
	return Result{Code: CodeOK, Pid: proc.Pid()}, nil
}

// flagString renders the namespace set for logs.
func flagString(flags uintptr) string {
	s := "pid,ipc,mnt"
	if flags&unix.CLONE_NEWUTS != 0 {
		s += ",uts"
	}
	if flags&unix.CLONE_NEWNET != 0 {
		s += ",net"
	}
	return s
}
