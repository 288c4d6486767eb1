package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config keys. Each can come from a flag, a PRIORITIZE_* environment variable or .prioritize.yaml.
const (
	KeyDir          = "dir"
	KeyBackend      = "backend"
	KeyTimeout      = "timeout"
	KeyLogLevel     = "log_level"
	KeyLogFormat    = "log_format"
	KeyHistoryLimit = "history_limit"
	KeyJournal      = "journal"
)

const (
	EnvPrefix      = "PRIORITIZE"
	configFileName = ".prioritize" // .yaml is implicit
)

type Config struct {
	Dir          string
	Backend      string
	Timeout      time.Duration
	LogLevel     string
	LogFormat    string
	HistoryLimit int
	Journal      bool
}

// ConfigDir is the per-user directory searched for .prioritize.yaml.
func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.prioritize).
	if v := strings.TrimSpace(os.Getenv(EnvPrefix + "_CONFIG_DIR")); v != "" {
		return homedir.Expand(v)
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, WorkspaceDirName), nil
}

// NewViper returns a viper instance with defaults, env binding and config search paths set.
// Callers bind their flags to it before LoadConfig.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDir, "")
	v.SetDefault(KeyBackend, BackendFile)
	v.SetDefault(KeyTimeout, "10s")
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyHistoryLimit, 1000)
	v.SetDefault(KeyJournal, true)

	v.SetConfigName(configFileName)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.AddConfigPath("./")
	if dir, err := ConfigDir(); err == nil {
		v.AddConfigPath(dir)
	}
	return v
}

// LoadConfig reads the optional config file and resolves every key. A missing config file is
// not an error.
func LoadConfig(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	dir, err := homedir.Expand(strings.TrimSpace(v.GetString(KeyDir)))
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", KeyDir, err)
	}
	timeout, err := time.ParseDuration(strings.TrimSpace(v.GetString(KeyTimeout)))
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", KeyTimeout, err)
	}
	if timeout < 0 {
		return Config{}, fmt.Errorf("config %s: must not be negative", KeyTimeout)
	}
	limit := v.GetInt(KeyHistoryLimit)
	if limit < 0 {
		return Config{}, fmt.Errorf("config %s: must not be negative", KeyHistoryLimit)
	}

	cfg := Config{
		Dir:          dir,
		Backend:      strings.ToLower(strings.TrimSpace(v.GetString(KeyBackend))),
		Timeout:      timeout,
		LogLevel:     strings.TrimSpace(v.GetString(KeyLogLevel)),
		LogFormat:    strings.TrimSpace(v.GetString(KeyLogFormat)),
		HistoryLimit: limit,
		Journal:      v.GetBool(KeyJournal),
	}
	switch cfg.Backend {
	case BackendFile, BackendSQLite, BackendDiskv:
	default:
		return Config{}, fmt.Errorf("config %s: unknown backend %q", KeyBackend, cfg.Backend)
	}
	return cfg, nil
}
