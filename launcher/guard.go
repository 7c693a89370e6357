package launcher

import (
	"github.com/rs/zerolog"
)

// guard is the ordered cleanup stack for one start attempt. Release
// actions are pushed as their resources are acquired and run in reverse
// order on unwind, so every branch of the start path releases exactly
// what it acquired. A failing action is logged and never stops the rest
// of the unwind.
type guard struct {
	log     zerolog.Logger
	entries []*guardEntry
}

type guardEntry struct {
	label string
	fn    func() error
	done  bool
}

func newGuard(log zerolog.Logger) *guard {
	return &guard{log: log}
}

// push registers a release action. The returned entry can be disarmed
// once the resource is released through the normal path.
func (g *guard) push(label string, fn func() error) *guardEntry {
	e := &guardEntry{label: label, fn: fn}
	g.entries = append(g.entries, e)
	return e
}

// disarm marks the entry as already released. Safe to call repeatedly.
func (e *guardEntry) disarm() {
	e.done = true
}

// unwind runs all armed entries newest first. Running twice is a no-op:
// every entry fires at most once.
func (g *guard) unwind() {
	for i := len(g.entries) - 1; i >= 0; i-- {
		e := g.entries[i]
		if e.done {
			continue
		}
		e.done = true
		if err := e.fn(); err != nil {
			g.log.Warn().Err(err).Str("step", e.label).Msg("cleanup step failed")
		}
	}
	g.entries = g.entries[:0]
}
