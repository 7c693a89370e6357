// Package sigguard suppresses terminal signals for the duration of a
// critical section. An operator's interrupt must not land between the
// steps of the start handshake, where it would strand a half initialized
// child; signals are ignored while the guard is held and reset to their
// default dispositions on every exit path. The pre-guard dispositions
// are not recorded: os/signal offers no way to read them back, so a
// handler installed before Suppress is not reinstated by Restore.
package sigguard

import (
	"os"
	"os/signal"
	"sync"

	"golang.org/x/sys/unix"
)

// Guard holds suppressed signal dispositions until Restore.
type Guard struct {
	sigs []os.Signal
	once sync.Once
}

// Suppress ignores the given signals, defaulting to SIGINT and SIGQUIT.
func Suppress(sigs ...os.Signal) *Guard {
	if len(sigs) == 0 {
		sigs = []os.Signal{unix.SIGINT, unix.SIGQUIT}
	}
	signal.Ignore(sigs...)
	return &Guard{sigs: sigs}
}

// Restore resets the suppressed signals to their default dispositions.
// Extra calls are no-ops.
func (g *Guard) Restore() {
	g.once.Do(func() {
		signal.Reset(g.sigs...)
	})
}
