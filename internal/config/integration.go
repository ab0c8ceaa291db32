package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

//nolint:gochecknoglobals // Process-wide configuration shared by all commands.
var (
	globalMu sync.RWMutex
	global   *Config
)

// InitGlobalConfig builds the global configuration from the defaults, the
// config file and the environment unless one is already set.
func InitGlobalConfig() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global == nil {
		global = New()
	}
}

// SetGlobalConfig replaces the global configuration, for example after an
// explicit --config file was loaded. A nil cfg is rebuilt on next use.
func SetGlobalConfig(cfg *Config) {
	globalMu.Lock()
	global = cfg
	globalMu.Unlock()
}

// ResetGlobalConfigForTest drops the global configuration.
func ResetGlobalConfigForTest() {
	SetGlobalConfig(nil)
}

// GetGlobalConfig returns the global configuration, initializing it if needed.
func GetGlobalConfig() *Config {
	globalMu.RLock()
	cfg := global
	globalMu.RUnlock()
	if cfg != nil {
		return cfg
	}

	InitGlobalConfig()
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// GetDefaultOutputFormat returns the configured default output format.
func GetDefaultOutputFormat() string {
	return GetGlobalConfig().Output.DefaultFormat
}

// GetMatchConcurrency returns the configured ranking concurrency.
func GetMatchConcurrency() int {
	return GetGlobalConfig().Matching.Concurrency
}

// EnsureConfigDir ensures the circulate configuration directory exists.
func EnsureConfigDir() error {
	dir, err := GetConfigDir()
	if err == nil {
		err = os.MkdirAll(dir, 0o700)
	}
	return err
}

// EnsureLogDir creates the parent directory of the configured log file,
// if one is configured.
func EnsureLogDir() error {
	file := GetGlobalConfig().Logging.File
	if file == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
		return fmt.Errorf("creating log directory for %s: %w", file, err)
	}
	return nil
}

// GetConfigDir returns $CIRCULATE_HOME, or ~/.circulate.
func GetConfigDir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".circulate"), nil
}
