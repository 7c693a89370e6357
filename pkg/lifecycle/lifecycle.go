// Package lifecycle tracks a container through its start states. The
// transition graph is fixed: Starting is the only entry state, Running is
// reachable only from Starting, a normal exit walks Running, Stopping,
// Stopped, and any failure before Stopped lands in Aborting. Stopped and
// Aborting are terminal for one start and both allow a later Starting.
package lifecycle

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// State is the externally observable container state.
type State int

const (
	Starting State = iota
	Running
	Stopping
	Stopped
	Aborting
)

var stateNames = map[State]string{
	Starting: "STARTING",
	Running:  "RUNNING",
	Stopping: "STOPPING",
	Stopped:  "STOPPED",
	Aborting: "ABORTING",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(s))
}

// legal lists the states each state may move to. Entry from "no state"
// is handled separately in Set.
var legal = map[State][]State{
	Starting: {Running, Aborting},
	Running:  {Stopping, Aborting},
	Stopping: {Stopped, Aborting},
	Stopped:  {Starting},
	Aborting: {Starting},
}

type record struct {
	State   string    `json:"state"`
	Updated time.Time `json:"updated"`
}

// Store persists one state record per container name.
type Store struct {
	fs   afero.Fs
	root string
}

// NewStore keeps state records under root on fs.
func NewStore(fs afero.Fs, root string) *Store {
	return &Store{fs: fs, root: root}
}

func (st *Store) path(name string) string {
	return filepath.Join(st.root, name, "state")
}

// Current reports the recorded state, or ok=false when the container has
// no state at all.
func (st *Store) Current(name string) (State, bool) {
	data, err := afero.ReadFile(st.fs, st.path(name))
	if err != nil {
		return 0, false
	}
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return 0, false
	}
	for s, n := range stateNames {
		if n == r.State {
			return s, true
		}
	}
	return 0, false
}

// Set transitions name to s, enforcing the graph. Starting is the only
// state reachable from "no state".
func (st *Store) Set(name string, s State) error {
	cur, ok := st.Current(name)
	if !ok {
		if s != Starting {
			return fmt.Errorf("lifecycle: %s: cannot enter %s with no previous state", name, s)
		}
	} else if !allowed(cur, s) {
		return fmt.Errorf("lifecycle: %s: illegal transition %s -> %s", name, cur, s)
	}

	if err := st.fs.MkdirAll(filepath.Dir(st.path(name)), 0o755); err != nil {
		return fmt.Errorf("lifecycle: %s: %v", name, err)
	}
	data, err := json.Marshal(record{State: s.String(), Updated: time.Now()})
	if err != nil {
		return err
	}
	if err := afero.WriteFile(st.fs, st.path(name), data, 0o644); err != nil {
		return fmt.Errorf("lifecycle: %s: write state: %v", name, err)
	}
	return nil
}

// Clear removes the state record, for tests and external housekeeping.
func (st *Store) Clear(name string) error {
	if ok, _ := afero.Exists(st.fs, st.path(name)); !ok {
		return nil
	}
	return st.fs.Remove(st.path(name))
}

func allowed(from, to State) bool {
	for _, s := range legal[from] {
		if s == to {
			return true
		}
	}
	return false
}
