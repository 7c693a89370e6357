package lifecycle

import (
	"testing"

	"github.com/spf13/afero"
)

func newTestStore() *Store {
	return NewStore(afero.NewMemMapFs(), "/run/nsbox")
}

func TestEntryRequiresStarting(t *testing.T) {
	t.Parallel()
	st := newTestStore()

	if err := st.Set("c1", Running); err == nil {
		t.Fatal("entering RUNNING with no state succeeded, want error")
	}
	if err := st.Set("c1", Starting); err != nil {
		t.Fatal(err)
	}
	s, ok := st.Current("c1")
	if !ok || s != Starting {
		t.Fatalf("Current = %v, %v; want STARTING, true", s, ok)
	}
}

func TestNormalPath(t *testing.T) {
	t.Parallel()
	st := newTestStore()

	for _, s := range []State{Starting, Running, Stopping, Stopped} {
		if err := st.Set("c1", s); err != nil {
			t.Fatalf("Set(%s): %v", s, err)
		}
	}

	// terminal state allows a fresh start
	if err := st.Set("c1", Starting); err != nil {
		t.Fatalf("restart after STOPPED: %v", err)
	}
}

func TestAbortPaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		walk []State
	}{
		{"from starting", []State{Starting, Aborting}},
		{"from running", []State{Starting, Running, Aborting}},
		{"from stopping", []State{Starting, Running, Stopping, Aborting}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			st := newTestStore()
			for _, s := range tc.walk {
				if err := st.Set("c1", s); err != nil {
					t.Fatalf("Set(%s): %v", s, err)
				}
			}
			if err := st.Set("c1", Starting); err != nil {
				t.Fatalf("restart after ABORTING: %v", err)
			}
		})
	}
}

func TestIllegalTransitions(t *testing.T) {
	t.Parallel()
	st := newTestStore()

	if err := st.Set("c1", Starting); err != nil {
		t.Fatal(err)
	}
	if err := st.Set("c1", Stopped); err == nil {
		t.Fatal("STARTING -> STOPPED succeeded, want error")
	}
	if err := st.Set("c1", Running); err != nil {
		t.Fatal(err)
	}
	if err := st.Set("c1", Starting); err == nil {
		t.Fatal("RUNNING -> STARTING succeeded, want error")
	}
}

func TestClear(t *testing.T) {
	t.Parallel()
	st := newTestStore()

	if err := st.Clear("ghost"); err != nil {
		t.Fatalf("Clear on absent record: %v", err)
	}
	if err := st.Set("c1", Starting); err != nil {
		t.Fatal(err)
	}
	if err := st.Clear("c1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := st.Current("c1"); ok {
		t.Fatal("state survived Clear")
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()
	want := map[State]string{
		Starting: "STARTING",
		Running:  "RUNNING",
		Stopping: "STOPPING",
		Stopped:  "STOPPED",
		Aborting: "ABORTING",
	}
	for s, n := range want {
		if s.String() != n {
			t.Errorf("%d.String() = %s, want %s", int(s), s.String(), n)
		}
	}
}
