package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/logging"
	"github.com/arthur-debert/imgrename/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "IMGRENAME_"

// LoadOptions selects the layers loaded on top of the embedded defaults
type LoadOptions struct {
	// UserFile is the per-user config; empty uses the XDG location
	UserFile string
	// ProjectFile is a .toml, .yaml or .yml file given on the command line
	ProjectFile string
	// Overrides are flat koanf keys set from flags, applied last
	Overrides map[string]interface{}
	// SkipEnv disables IMGRENAME_* environment overrides
	SkipEnv bool
}

// Load merges defaults, user file, project file, environment and overrides
// and decodes the result. The configuration is validated before it is returned.
func Load(opts LoadOptions) (*Config, error) {
	log := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load built-in defaults")
	}

	// 2. User file, when present
	userFile := opts.UserFile
	if userFile == "" {
		userFile = paths.New().ConfigFile()
	}
	if _, err := os.Stat(userFile); err == nil {
		if err := loadFile(k, userFile); err != nil {
			return nil, err
		}
		log.Debug().Str("file", userFile).Msg("loaded user config")
	}

	// 3. Project file; it must exist when given
	if opts.ProjectFile != "" {
		if _, err := os.Stat(opts.ProjectFile); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not found", opts.ProjectFile).
				WithDetail("file", opts.ProjectFile)
		}
		if err := loadFile(k, opts.ProjectFile); err != nil {
			return nil, err
		}
		log.Debug().Str("file", opts.ProjectFile).Msg("loaded project config")
	}

	// 4. Environment
	if !opts.SkipEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
		}
	}

	// 5. Flags
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	if cfg.User == "" {
		cfg.User = os.Getenv("USER")
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration
func Default() *Config {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		panic(err)
	}
	cfg, err := unmarshal(k)
	if err != nil {
		panic(err)
	}
	return cfg
}

// envKey maps IMGRENAME_OUTPUT_DERIVED_LAYOUT to output.derived_layout: the
// first underscore separates the section from the key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func loadFile(k *koanf.Koanf, path string) error {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	default:
		return errors.Newf(errors.ErrConfigLoad, "config file %s: unsupported format (use .toml, .yaml or .yml)", path).
			WithDetail("file", path)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
			WithDetail("file", path)
	}
	return nil
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}
	return &cfg, nil
}
