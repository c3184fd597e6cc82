package config

import (
	"os"
	"strconv"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/fields"
	"github.com/arthur-debert/imgrename/pkg/output"
	"github.com/arthur-debert/imgrename/pkg/paths"
)

// Validate fails fast on settings that would only break later, naming the
// offending property.
func Validate(c *Config) error {
	if len(c.Fields) == 0 {
		return errors.New(errors.ErrConfigValid, "at least one field must be configured").
			WithDetail("property", "fields")
	}
	if _, err := c.Template(); err != nil {
		return err
	}
	if _, err := c.Resolver(); err != nil {
		return err
	}
	if _, err := c.DirPerm(); err != nil {
		return err
	}
	if c.Copy.ChunkSize <= 0 {
		return errors.Newf(errors.ErrConfigValid, "copy.chunk_size must be positive, got %d", c.Copy.ChunkSize).
			WithDetail("property", "copy.chunk_size")
	}
	for i, p := range c.Validators {
		if p.Type == "" {
			return errors.Newf(errors.ErrConfigValid, "validators[%d] has no type", i).
				WithDetail("property", "validators.type")
		}
	}
	for i, p := range c.Listeners {
		if p.Type == "" {
			return errors.Newf(errors.ErrConfigValid, "listeners[%d] has no type", i).
				WithDetail("property", "listeners.type")
		}
	}
	return nil
}

// Template builds the configured fields
func (c *Config) Template() ([]fields.DataField, error) {
	return fields.BuildAll(c.Fields)
}

// Resolver builds the output directory resolver
func (c *Config) Resolver() (*output.Resolver, error) {
	return output.NewResolver(output.Mode(c.Output.Mode), paths.ExpandHome(c.Output.Dir), c.Output.DerivedLayout)
}

// DirPerm parses output.dir_perm; empty means 0755
func (c *Config) DirPerm() (os.FileMode, error) {
	if c.Output.DirPerm == "" {
		return 0755, nil
	}
	v, err := strconv.ParseUint(c.Output.DirPerm, 8, 32)
	if err != nil || v > 0777 {
		return 0, errors.Newf(errors.ErrConfigValid, "output.dir_perm must be an octal permission such as 0755, got %q", c.Output.DirPerm).
			WithDetail("property", "output.dir_perm")
	}
	return os.FileMode(v), nil
}
