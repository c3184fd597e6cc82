package config

import (
	"github.com/arthur-debert/imgrename/pkg/fields"
	"github.com/arthur-debert/imgrename/pkg/plugin"
	"github.com/arthur-debert/imgrename/pkg/scan"
)

// Config is the complete imgrename configuration
type Config struct {
	User       string          `koanf:"user" toml:"user"`
	Output     Output          `koanf:"output" toml:"output"`
	Copy       Copy            `koanf:"copy" toml:"copy"`
	Scan       scan.Config     `koanf:"scan" toml:"scan"`
	Task       Task            `koanf:"task" toml:"task"`
	Fields     []FieldConfig   `koanf:"fields" toml:"fields"`
	Validators []PluginConfig  `koanf:"validators" toml:"validators,omitempty"`
	Listeners  []PluginConfig  `koanf:"listeners" toml:"listeners,omitempty"`
}

// FieldConfig describes one field of the file name template
type FieldConfig = fields.Spec

// PluginConfig selects a validator or listener and carries its options
type PluginConfig = plugin.Config

// Output selects the output directory
type Output struct {
	Mode          string `koanf:"mode" toml:"mode"`
	Dir           string `koanf:"dir" toml:"dir"`
	DerivedLayout string `koanf:"derived_layout" toml:"derived_layout"`
	// DirPerm is an octal permission string such as "0755"
	DirPerm string `koanf:"dir_perm" toml:"dir_perm"`
}

// Copy controls how each file is copied
type Copy struct {
	KeepSource      bool  `koanf:"keep_source" toml:"keep_source"`
	Overwrite       bool  `koanf:"overwrite" toml:"overwrite"`
	PreserveModTime bool  `koanf:"preserve_mod_time" toml:"preserve_mod_time"`
	ChunkSize       int64 `koanf:"chunk_size" toml:"chunk_size"`
}

// Task holds batch policies
type Task struct {
	AbortOnInvalidRow bool `koanf:"abort_on_invalid_row" toml:"abort_on_invalid_row"`
}
