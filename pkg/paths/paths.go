package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for imgrename
	EnvConfigDir = "IMGRENAME_CONFIG_DIR"

	// EnvCacheDir overrides the XDG cache directory for imgrename
	EnvCacheDir = "IMGRENAME_CACHE_DIR"
)

const (
	// AppDirName is the directory name used under each XDG base directory
	AppDirName = "imgrename"

	// ConfigFileName is the name of the user configuration file
	ConfigFileName = "config.toml"

	// RenameLogDir is the subdirectory of the state dir holding undo logs
	RenameLogDir = "renames"
)

// Paths provides the locations imgrename reads from and writes to
type Paths interface {
	ConfigDir() string
	ConfigFile() string
	StateDir() string
	CacheDir() string
	RenameLogDir() string
}

type paths struct {
	config string
	state  string
	cache  string
}

// New resolves all directories once, honouring environment overrides
func New() Paths {
	p := &paths{}

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.config = ExpandHome(dir)
	} else {
		p.config = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	if dir := os.Getenv(EnvCacheDir); dir != "" {
		p.cache = ExpandHome(dir)
	} else {
		p.cache = filepath.Join(xdg.CacheHome, AppDirName)
	}

	// xdg caches StateHome at init; read the variable directly so tests can override it
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		p.state = filepath.Join(dir, AppDirName)
	} else {
		p.state = filepath.Join(xdg.StateHome, AppDirName)
	}

	return p
}

func (p *paths) ConfigDir() string    { return p.config }
func (p *paths) ConfigFile() string   { return filepath.Join(p.config, ConfigFileName) }
func (p *paths) StateDir() string     { return p.state }
func (p *paths) CacheDir() string     { return p.cache }
func (p *paths) RenameLogDir() string { return filepath.Join(p.state, RenameLogDir) }

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
