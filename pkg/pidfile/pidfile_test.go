package pidfile

import (
	"testing"

	"github.com/spf13/afero"
)

func TestWriteRead(t *testing.T) {
	t.Parallel()
	s := NewStore(afero.NewMemMapFs(), "/run/nsbox")

	if err := s.Write("c1", 4242); err != nil {
		t.Fatal(err)
	}
	pid, err := s.Read("c1")
	if err != nil {
		t.Fatal(err)
	}
	if pid != 4242 {
		t.Fatalf("Read = %d, want 4242", pid)
	}
}

func TestRecordFormat(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	s := NewStore(fs, "/run/nsbox")

	if err := s.Write("c1", 17); err != nil {
		t.Fatal(err)
	}
	data, err := afero.ReadFile(fs, s.Path("c1"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "17\n" {
		t.Fatalf("record content = %q, want %q", data, "17\n")
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()
	s := NewStore(afero.NewMemMapFs(), "/run/nsbox")

	if err := s.Remove("absent"); err != nil {
		t.Fatalf("Remove on absent record: %v", err)
	}
	if err := s.Write("c1", 1); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove("c1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Read("c1"); err == nil {
		t.Fatal("record survived Remove")
	}
}
