// Package config loads a cvk.ContextInfo from defaults, a config file,
// CVK_* environment variables and explicit overrides, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/gogpu/cvk"
	"github.com/gogpu/cvk/vk"
)

// Configuration keys.
const (
	KeyAppName      = "app_name"
	KeyEngineName   = "engine_name"
	KeyVersion      = "version"
	KeyDebugging    = "debugging"
	KeyExtensions   = "extensions"
	KeyWindowSystem = "window_system"
)

// EnvPrefix is prepended to upper-cased keys to form environment variable
// names, e.g. CVK_APP_NAME.
const EnvPrefix = "CVK"

// FileName is the base name searched for in the search paths.
const FileName = "cvk"

// FileExtensions lists the file formats tried, in order.
var FileExtensions = []string{"yaml", "yml", "toml", "json"}

// ErrInvalid is returned when a configured value cannot be parsed.
var ErrInvalid = errors.New("config: invalid value")

// Loader builds a cvk.ContextInfo.
type Loader struct {
	v           *viper.Viper
	configPath  string
	searchPaths []string
	used        string
}

// NewLoader creates a loader that reads CVK_* environment variables and
// searches the working directory for a config file.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return &Loader{
		v:           v,
		searchPaths: []string{"."},
	}
}

// WithConfigPath sets an explicit config file path. A missing explicit
// file is an error.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithSearchPaths adds directories to search for a config file.
func (l *Loader) WithSearchPaths(paths ...string) *Loader {
	l.searchPaths = append(l.searchPaths, paths...)
	return l
}

// Set overrides key with value. Overrides win over files and environment.
func (l *Loader) Set(key string, value any) *Loader {
	l.v.Set(key, value)
	return l
}

// ConfigFileUsed returns the config file read by the last Load, if any.
func (l *Loader) ConfigFileUsed() string { return l.used }

// Load reads the configuration and converts it.
func (l *Loader) Load() (cvk.ContextInfo, error) {
	l.setDefaults()

	if err := l.loadConfigFile(); err != nil {
		return cvk.ContextInfo{}, fmt.Errorf("config: read %s: %w", l.used, err)
	}

	info := cvk.DefaultContextInfo()
	info.AppName = l.v.GetString(KeyAppName)
	info.EngineName = l.v.GetString(KeyEngineName)
	info.Debugging = l.v.GetBool(KeyDebugging)

	version, err := cvk.ParseAPIVersion(l.v.GetString(KeyVersion))
	if err != nil {
		return cvk.ContextInfo{}, fmt.Errorf("%w: %s: %w", ErrInvalid, KeyVersion, err)
	}
	info.Version = version

	ws, err := vk.ParseWindowSystem(strings.ToLower(l.v.GetString(KeyWindowSystem)))
	if err != nil {
		return cvk.ContextInfo{}, fmt.Errorf("%w: %s: %w", ErrInvalid, KeyWindowSystem, err)
	}
	info.WindowSystem = ws

	if exts := splitList(l.v.GetStringSlice(KeyExtensions)); len(exts) > 0 {
		info = info.WithExtensions(exts...)
	}
	return info, nil
}

func (l *Loader) setDefaults() {
	defaults := cvk.DefaultContextInfo()

	l.v.SetDefault(KeyAppName, defaults.AppName)
	l.v.SetDefault(KeyEngineName, defaults.EngineName)
	l.v.SetDefault(KeyVersion, defaults.Version.String())
	l.v.SetDefault(KeyDebugging, defaults.Debugging)
	l.v.SetDefault(KeyExtensions, []string{})
	l.v.SetDefault(KeyWindowSystem, "")
}

func (l *Loader) loadConfigFile() error {
	if l.configPath != "" {
		l.used = l.configPath
		l.v.SetConfigFile(l.configPath)
		return l.v.ReadInConfig()
	}

	for _, dir := range l.searchPaths {
		for _, ext := range FileExtensions {
			path := filepath.Join(dir, FileName+"."+ext)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			l.used = path
			l.v.SetConfigFile(path)
			return l.v.ReadInConfig()
		}
	}
	return nil
}

// splitList accepts both list values and comma separated strings, which is
// what a single environment variable yields.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
