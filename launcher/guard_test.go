package launcher

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestGuard_ReverseOrder(t *testing.T) {
	t.Parallel()
	g := newGuard(zerolog.Nop())

	var order []string
	for _, label := range []string{"a", "b", "c"} {
		label := label
		g.push(label, func() error {
			order = append(order, label)
			return nil
		})
	}
	g.unwind()

	if len(order) != 3 || order[0] != "c" || order[1] != "b" || order[2] != "a" {
		t.Fatalf("unwind order = %v, want [c b a]", order)
	}
}

func TestGuard_FailureDoesNotMaskLaterSteps(t *testing.T) {
	t.Parallel()
	g := newGuard(zerolog.Nop())

	var ran []string
	g.push("first", func() error {
		ran = append(ran, "first")
		return nil
	})
	g.push("failing", func() error {
		ran = append(ran, "failing")
		return errors.New("boom")
	})
	g.unwind()

	if len(ran) != 2 || ran[1] != "first" {
		t.Fatalf("ran = %v, want failing then first", ran)
	}
}

func TestGuard_Disarm(t *testing.T) {
	t.Parallel()
	g := newGuard(zerolog.Nop())

	fired := false
	e := g.push("kill", func() error {
		fired = true
		return nil
	})
	e.disarm()
	g.unwind()

	if fired {
		t.Fatal("disarmed entry fired")
	}
}

func TestGuard_UnwindTwice(t *testing.T) {
	t.Parallel()
	g := newGuard(zerolog.Nop())

	count := 0
	g.push("once", func() error {
		count++
		return nil
	})
	g.unwind()
	g.unwind()

	if count != 1 {
		t.Fatalf("entry fired %d times, want 1", count)
	}
}
