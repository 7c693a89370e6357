// Package launcher starts a container: it spawns the target program into
// a fresh set of kernel namespaces and coordinates the two-party
// handshake that lets the launching process finish privileged setup
// (control group registration, network construction) while the child is
// paused between its creation and its exec.
package launcher

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/edlenz/go-nsbox/config"
	"github.com/edlenz/go-nsbox/pkg/lifecycle"
	"github.com/edlenz/go-nsbox/pkg/nsgroup"
	"github.com/edlenz/go-nsbox/pkg/pidfile"
)

// DefaultRoot is the runtime directory holding per-container lock, state,
// pid and configuration files.
const DefaultRoot = "/run/nsbox"

// Code is the discriminated outcome of a start attempt.
type Code int

const (
	// CodeOK: the container started, ran and exited normally.
	CodeOK Code = iota
	// CodeBusy: another start holds the lock for this name.
	CodeBusy
	// CodeInternal: any setup, handshake or child failure.
	CodeInternal
)

// Result is what the caller gets back from Start.
type Result struct {
	Code Code
	// Pid is the container's initial process id, set on success.
	Pid int
}

// Groups registers a started container with its namespace group.
// nsgroup.Registry is the host implementation.
type Groups interface {
	Register(name string, pid int) error
	Unregister(name string) error
}

// Network builds and tears down the container's network resource.
type Network interface {
	Create(name string, pid int, cfg *config.Config) error
	Destroy(name string) error
}

// process is the handle to a spawned child. The two implementations are
// the real clone-based one and test fakes; the Start path never branches
// on which one it holds.
type process interface {
	Pid() int
	// Wait blocks until the child exits, retrying on signal
	// interruption.
	Wait() error
	// Kill force-terminates and reaps the child, best effort.
	Kill()
}

type spawnFunc func(root, name string, flags uintptr, child *os.File, argv []string) (process, error)

// Options configures a Launcher. Zero values select the host defaults;
// a nil Logger uses the process-global one.
type Options struct {
	Root    string
	Fs      afero.Fs
	Groups  Groups
	Network Network
	Logger  *zerolog.Logger
}

// Launcher starts containers under one runtime directory.
type Launcher struct {
	root   string
	states *lifecycle.Store
	pids   *pidfile.Store
	groups Groups
	net    Network
	log    zerolog.Logger
	spawn  spawnFunc
}

// New builds a Launcher from opts.
func New(opts Options) *Launcher {
	root := opts.Root
	if root == "" {
		root = DefaultRoot
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	groups := opts.Groups
	if groups == nil {
		groups = nsgroup.Registry{}
	}
	net := opts.Network
	if net == nil {
		net = hostNetwork{}
	}
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Launcher{
		root:   root,
		states: lifecycle.NewStore(fs, root),
		pids:   pidfile.NewStore(fs, root),
		groups: groups,
		net:    net,
		log:    logger,
		spawn:  spawnInit,
	}
}

// States exposes the lifecycle store for external observation.
func (l *Launcher) States() *lifecycle.Store {
	return l.states
}

// Pids exposes the pid record store.
func (l *Launcher) Pids() *pidfile.Store {
	return l.pids
}
