package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/todos/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
)

// Config keys.
const (
	cfgKeyBackend      = "backend"
	cfgKeyDataDir      = "data_dir"
	cfgKeyAddr         = "addr"
	cfgKeyCookieName   = "cookie_name"
	cfgKeyCookieSecure = "cookie_secure"
	cfgKeySessionTTL   = "session_ttl"
	cfgKeyLogLevel     = "log_level"
)

// Defaults for keys missing from config.yaml.
const (
	defaultBackend    = types.BackendSQLite
	defaultAddr       = "localhost:4567"
	defaultCookieName = "todos_session"
	defaultSessionTTL = 30 * 24 * time.Hour
	defaultLogLevel   = "info"
)

// envBindings maps keys that may be overridden from the environment. data_dir
// is absent on purpose: TODOS_DATA_DIR ranks below config.yaml and is
// handled by paths.ResolveDataDir.
var envBindings = map[string]string{
	cfgKeyBackend:      "TODOS_BACKEND",
	cfgKeyAddr:         "TODOS_ADDR",
	cfgKeyCookieName:   "TODOS_COOKIE_NAME",
	cfgKeyCookieSecure: "TODOS_COOKIE_SECURE",
	cfgKeySessionTTL:   "TODOS_SESSION_TTL",
	cfgKeyLogLevel:     "TODOS_LOG_LEVEL",
}

// configFile is the shape of config.yaml written by init.
type configFile struct {
	Backend      string `yaml:"backend"`
	DataDir      string `yaml:"data_dir,omitempty"`
	Addr         string `yaml:"addr"`
	CookieName   string `yaml:"cookie_name"`
	CookieSecure bool   `yaml:"cookie_secure"`
	SessionTTL   string `yaml:"session_ttl"`
	LogLevel     string `yaml:"log_level"`
}

func defaultConfigFile(dataDir string) configFile {
	return configFile{
		Backend:    defaultBackend,
		DataDir:    dataDir,
		Addr:       defaultAddr,
		CookieName: defaultCookieName,
		SessionTTL: defaultSessionTTL.String(),
		LogLevel:   defaultLogLevel,
	}
}

// settings are the resolved configuration values.
type settings struct {
	Backend      string
	DataDir      string
	Addr         string
	CookieName   string
	CookieSecure bool
	SessionTTL   time.Duration
	LogLevel     slog.Level
}

// loadConfig reads config.yaml from configDir with Viper. A missing file is
// not an error; defaults apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeyAddr, defaultAddr)
	v.SetDefault(cfgKeyCookieName, defaultCookieName)
	v.SetDefault(cfgKeyCookieSecure, false)
	v.SetDefault(cfgKeySessionTTL, defaultSessionTTL)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// decodeSettings converts loaded values and checks them.
func decodeSettings(v *viper.Viper) (settings, error) {
	s := settings{
		Backend:      strings.ToLower(strings.TrimSpace(v.GetString(cfgKeyBackend))),
		DataDir:      v.GetString(cfgKeyDataDir),
		Addr:         v.GetString(cfgKeyAddr),
		CookieName:   v.GetString(cfgKeyCookieName),
		CookieSecure: v.GetBool(cfgKeyCookieSecure),
		SessionTTL:   v.GetDuration(cfgKeySessionTTL),
	}
	if err := s.LogLevel.UnmarshalText([]byte(v.GetString(cfgKeyLogLevel))); err != nil {
		return settings{}, fmt.Errorf("%s: %w", cfgKeyLogLevel, err)
	}
	if s.SessionTTL < 0 {
		return settings{}, fmt.Errorf("%s must not be negative", cfgKeySessionTTL)
	}
	if err := (types.Config{Backend: s.Backend, DataDir: s.DataDir}).Validate(); err != nil {
		return settings{}, err
	}
	return s, nil
}

// writeConfigIfMissing creates config.yaml with default values. An existing
// file is left untouched. Reports whether a file was written.
func writeConfigIfMissing(configDir, dataDir string) (bool, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := defaultConfigFile(dataDir)
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# todos configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
