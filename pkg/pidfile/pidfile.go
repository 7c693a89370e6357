// Package pidfile persists the process id of a started container. The
// record exists exactly while the container is RUNNING: it is written
// after the start handshake reports success and removed by the cleanup
// path on every exit.
package pidfile

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
)

// Store keeps one pid record per container name under root.
type Store struct {
	fs   afero.Fs
	root string
}

// NewStore keeps pid records under root on fs.
func NewStore(fs afero.Fs, root string) *Store {
	return &Store{fs: fs, root: root}
}

// Path reports the record location for name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.root, name, "init")
}

// Write records pid for name. Content is the decimal pid and a newline.
func (s *Store) Write(name string, pid int) error {
	path := s.Path(name)
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("pidfile: %s: %v", name, err)
	}
	data := []byte(strconv.Itoa(pid) + "\n")
	if err := afero.WriteFile(s.fs, path, data, 0o600); err != nil {
		return fmt.Errorf("pidfile: %s: write: %v", name, err)
	}
	return nil
}

// Read returns the recorded pid for name.
func (s *Store) Read(name string) (int, error) {
	data, err := afero.ReadFile(s.fs, s.Path(name))
	if err != nil {
		return 0, fmt.Errorf("pidfile: %s: %v", name, err)
	}
	pid, err := strconv.Atoi(string(bytes.TrimRight(data, "\n")))
	if err != nil {
		return 0, fmt.Errorf("pidfile: %s: malformed record: %v", name, err)
	}
	return pid, nil
}

// Remove deletes the record. An absent record is not an error.
func (s *Store) Remove(name string) error {
	if ok, _ := afero.Exists(s.fs, s.Path(name)); !ok {
		return nil
	}
	return s.fs.Remove(s.Path(name))
}
