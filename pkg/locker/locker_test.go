package locker

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestAcquireRelease(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "a", "lock")

	l, err := Acquire(path)
	if err != nil {
		t.Fatal(err)
	}
	l.Release()

	// reacquire after release
	l2, err := Acquire(path)
	if err != nil {
		t.Fatal(err)
	}
	l2.Release()
}

func TestAcquire_Busy(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "lock")

	l, err := Acquire(path)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Release()

	if _, err := Acquire(path); !errors.Is(err, ErrBusy) {
		t.Fatalf("second acquire: err = %v, want ErrBusy", err)
	}
}

func TestRelease_Idempotent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "lock")

	l, err := Acquire(path)
	if err != nil {
		t.Fatal(err)
	}
	l.Release()
	l.Release()

	if _, err := Acquire(path); err != nil {
		t.Fatalf("acquire after double release: %v", err)
	}
}

func TestAcquire_DifferentNames(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	a, err := Acquire(filepath.Join(dir, "a.lock"))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Release()

	b, err := Acquire(filepath.Join(dir, "b.lock"))
	if err != nil {
		t.Fatalf("independent identities must not contend: %v", err)
	}
	b.Release()
}
