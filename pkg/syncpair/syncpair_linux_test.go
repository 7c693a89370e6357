package syncpair

import (
	"testing"
)

func TestSignalAwait(t *testing.T) {
	t.Parallel()
	parent, child, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer parent.Close()
	defer child.Close()

	go func() {
		child.Signal()
	}()

	if err := parent.Await(); err != nil {
		t.Fatal(err)
	}
}

func TestOutcome_ClosureIsSuccess(t *testing.T) {
	t.Parallel()
	parent, child, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer parent.Close()

	// peer closing without writing anything models close-on-exec after
	// a successful exec
	child.Close()

	out, err := parent.Outcome()
	if err != nil {
		t.Fatal(err)
	}
	if out != OutcomeSuccess {
		t.Fatalf("outcome = %v, want OutcomeSuccess", out)
	}
}

func TestOutcome_ByteIsFailure(t *testing.T) {
	t.Parallel()
	parent, child, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer parent.Close()

	if err := child.Signal(); err != nil {
		t.Fatal(err)
	}
	child.Close()

	out, err := parent.Outcome()
	if err != nil {
		t.Fatal(err)
	}
	if out != OutcomeFailure {
		t.Fatalf("outcome = %v, want OutcomeFailure", out)
	}
}

func TestAwait_ClosedPeer(t *testing.T) {
	t.Parallel()
	parent, child, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer parent.Close()

	child.Close()

	if err := parent.Await(); err == nil {
		t.Fatal("Await succeeded on a closed peer, want error")
	}
}

func TestFullHandshake(t *testing.T) {
	t.Parallel()
	parent, child, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer parent.Close()

	// child side of the four step protocol: ready, wait for continue,
	// succeed by closing without a byte
	go func() {
		child.Signal()
		child.Await()
		child.Close()
	}()

	if err := parent.Await(); err != nil {
		t.Fatal(err)
	}
	if err := parent.Signal(); err != nil {
		t.Fatal(err)
	}
	out, err := parent.Outcome()
	if err != nil {
		t.Fatal(err)
	}
	if out != OutcomeSuccess {
		t.Fatalf("outcome = %v, want OutcomeSuccess", out)
	}
}
