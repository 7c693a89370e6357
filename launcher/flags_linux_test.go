package launcher

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/edlenz/go-nsbox/config"
)

func TestComputeFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.Config
		want uintptr
	}{
		{
			name: "base set only",
			cfg:  config.Config{},
			want: uintptr(baseFlags),
		},
		{
			name: "hostname adds uts",
			cfg:  config.Config{Hostname: "web01"},
			want: uintptr(baseFlags | unix.CLONE_NEWUTS),
		},
		{
			name: "network adds net",
			cfg:  config.Config{Network: &config.Network{Bridge: "br0"}},
			want: uintptr(baseFlags | unix.CLONE_NEWNET),
		},
		{
			name: "both",
			cfg:  config.Config{Hostname: "web01", Network: &config.Network{}},
			want: uintptr(baseFlags | unix.CLONE_NEWUTS | unix.CLONE_NEWNET),
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := computeFlags(&tc.cfg); got != tc.want {
				t.Fatalf("computeFlags = %#x, want %#x", got, tc.want)
			}
		})
	}
}
