// Package config loads and queries per-container configuration. One YAML
// file per container name lives under the runtime directory; the start
// path consults it for namespace flag computation before spawn and the
// child applies it inside the new namespaces.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Mount is a single mount applied inside the container's mount namespace.
type Mount struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
	Type   string `yaml:"type"`
	Data   string `yaml:"data,omitempty"`
}

// Network declares the container's network resource. Its presence alone
// switches on network namespace isolation.
type Network struct {
	Bridge      string `yaml:"bridge,omitempty"`
	HostAddress string `yaml:"host_address,omitempty"`
}

// Config is the full per-container configuration.
type Config struct {
	// Hostname, when set, gives the container its own UTS namespace.
	Hostname string `yaml:"hostname,omitempty"`

	Network *Network `yaml:"network,omitempty"`

	Mounts []Mount `yaml:"mounts,omitempty"`

	// Env entries are KEY=VALUE pairs appended to the target program's
	// environment.
	Env []string `yaml:"env,omitempty"`

	// SeccompAllowed, when non-empty, restricts the container to the
	// listed syscalls.
	SeccompAllowed []string `yaml:"seccomp_allowed,omitempty"`
}

// Path reports the configuration file location for name under root.
func Path(root, name string) string {
	return filepath.Join(root, name, "config.yaml")
}

// Load reads the configuration for name. A missing file yields an empty
// configuration: a container without one runs with base isolation only.
func Load(root, name string) (*Config, error) {
	data, err := os.ReadFile(Path(root, name))
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: %s: %v", name, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: %s: parse: %v", name, err)
	}
	return &c, nil
}

// HasHostname reports whether the configuration declares a hostname.
func (c *Config) HasHostname() bool {
	return c.Hostname != ""
}

// HasNetwork reports whether the configuration declares network setup.
func (c *Config) HasNetwork() bool {
	return c.Network != nil
}
