package config

import "time"

// Config represents the dockyard configuration file structure
type Config struct {
	// StorePath is the location of the connection catalogue file
	StorePath string `yaml:"storePath,omitempty" json:"storePath,omitempty"`

	// CertDir is the root directory of the certificate store
	CertDir string `yaml:"certDir,omitempty" json:"certDir,omitempty"`

	// Defaults contains default settings for operations
	Defaults DefaultsConfig `yaml:"defaults,omitempty" json:"defaults,omitempty"`
}

// DefaultsConfig contains default configuration values
type DefaultsConfig struct {
	// ProbeTimeout bounds a single health probe
	ProbeTimeout time.Duration `yaml:"probeTimeout,omitempty" json:"probeTimeout,omitempty"`

	// Parallel is the number of concurrent probes
	Parallel int `yaml:"parallel,omitempty" json:"parallel,omitempty"`

	// OutputFormat is the default output format (table, json, yaml)
	OutputFormat string `yaml:"outputFormat,omitempty" json:"outputFormat,omitempty"`

	// NoColor disables colored output
	NoColor bool `yaml:"noColor,omitempty" json:"noColor,omitempty"`
}
