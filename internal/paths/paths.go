// Package paths resolves the configuration and data directories used by
// the todos server and CLI.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "todos"

// CWD-relative directory names.
const (
	DefaultConfigDirName = ".todos"
	DefaultDataDirName   = ".todos-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "TODOS_CONFIG_DIR"
	EnvDataDir   = "TODOS_DATA_DIR"
)

// platformDir holds platform lookups that tests override.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// Dirs is a resolved pair of directories.
type Dirs struct {
	Config string
	Data   string
}

// DefaultConfigDir returns the per-user configuration directory:
// $XDG_CONFIG_HOME/todos (fallback ~/.config/todos) on Linux and
// os.UserConfigDir()/todos elsewhere.
func DefaultConfigDir() (string, error) {
	return userDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the per-user data directory:
// $XDG_DATA_HOME/todos (fallback ~/.local/share/todos) on Linux and
// os.UserConfigDir()/todos elsewhere.
func DefaultDataDir() (string, error) {
	return userDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func userDir(xdgEnv, homeRel string) (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(xdgEnv); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, AppName), nil
}

// ResolveConfigDir picks the configuration directory:
// flag > TODOS_CONFIG_DIR > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if dir := firstNonEmpty(flag, os.Getenv(EnvConfigDir)); dir != "" {
		return filepath.Abs(dir)
	}
	return DefaultConfigDir()
}

// ResolveDataDir picks the data directory:
// flag > data_dir from config.yaml > TODOS_DATA_DIR > $(CWD)/.todos-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	if dir := firstNonEmpty(flag, configValue, os.Getenv(EnvDataDir)); dir != "" {
		return filepath.Abs(dir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// Resolve resolves both directories in one call.
func Resolve(configFlag, dataFlag, configValue string) (Dirs, error) {
	cfg, err := ResolveConfigDir(configFlag)
	if err != nil {
		return Dirs{}, err
	}
	data, err := ResolveDataDir(dataFlag, configValue)
	if err != nil {
		return Dirs{}, err
	}
	return Dirs{Config: cfg, Data: data}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
