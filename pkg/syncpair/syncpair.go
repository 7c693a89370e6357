// Package syncpair provides the connected socket pair used to synchronize
// a launching process with the process it spawned into new namespaces.
//
// The wire format is a single untyped byte. The value carries no meaning,
// only presence does: a byte from the child before exec reports failure,
// while end of stream with no byte reports success (the child side is
// marked close-on-exec, so a successful exec closes it implicitly).
package syncpair

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Outcome is the final result the parent observes on its side of the pair.
type Outcome int

const (
	// OutcomeSuccess means the stream closed with no byte: the child
	// execed and close-on-exec released its endpoint.
	OutcomeSuccess Outcome = iota

	// OutcomeFailure means at least one byte arrived: the child reported
	// an error before or during exec.
	OutcomeFailure
)

// Side is one endpoint of the pair.
type Side struct {
	f *os.File
}

// New creates a connected stream socket pair. Both endpoints are marked
// close-on-exec; passing the child side through ExtraFiles clears the
// flag on the descriptor the child actually receives.
func New() (parent, child *Side, err error) {
	fds, err := unix.Socketpair(unix.AF_LOCAL, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("syncpair: socketpair: %v", err)
	}
	parent = &Side{f: os.NewFile(uintptr(fds[0]), "syncpair-parent")}
	child = &Side{f: os.NewFile(uintptr(fds[1]), "syncpair-child")}
	return parent, child, nil
}

// FromFile wraps an inherited descriptor as a channel endpoint.
func FromFile(f *os.File) *Side {
	return &Side{f: f}
}

// File exposes the underlying file for descriptor passing.
func (s *Side) File() *os.File {
	return s.f
}

// SetCloseOnExec marks the endpoint so that a successful exec closes it.
func (s *Side) SetCloseOnExec() {
	unix.CloseOnExec(int(s.f.Fd()))
}

// Signal writes a single control byte. The same operation serves as the
// child's ready signal, the parent's continue signal and the child's
// failure outcome.
func (s *Side) Signal() error {
	if _, err := s.f.Write([]byte{0}); err != nil {
		return fmt.Errorf("syncpair: write: %v", err)
	}
	return nil
}

// Await blocks until one control byte arrives. End of stream before the
// byte means the peer went away and is reported as an error.
func (s *Side) Await() error {
	buf := make([]byte, 1)
	n, err := s.f.Read(buf)
	if n > 0 {
		return nil
	}
	if err == nil || err == io.EOF {
		return fmt.Errorf("syncpair: closed before signal")
	}
	return fmt.Errorf("syncpair: read: %v", err)
}

// Outcome blocks for the final read of the handshake. Zero bytes followed
// by end of stream is the success variant, any byte is the failure
// variant. The mapping is deliberately asymmetric and must never be
// inverted: closure is the only way the child can report success.
func (s *Side) Outcome() (Outcome, error) {
	buf := make([]byte, 1)
	n, err := s.f.Read(buf)
	if n > 0 {
		return OutcomeFailure, nil
	}
	if err == io.EOF {
		return OutcomeSuccess, nil
	}
	if err != nil {
		return OutcomeFailure, fmt.Errorf("syncpair: read: %v", err)
	}
	// zero-length read without EOF does not happen on a stream socket,
	// treat it as closure anyway
	return OutcomeSuccess, nil
}

// Close releases the endpoint. Safe to call more than once; the second
// close is a no-op.
func (s *Side) Close() {
	s.f.Close()
}
