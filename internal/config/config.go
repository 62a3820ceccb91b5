// Package config loads projcpp settings from YAML and exposes them through an
// injectable get/set Store.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Setting keys, as written in config.yaml.
const (
	KeyCompileCommand         = "compile_command"
	KeyExternalTerminal       = "external_terminal"
	KeyDefaultProjectLocation = "default_project_location"
	KeyShell                  = "shell"
	KeyTerminalEmulator       = "terminal_emulator"
	KeyToolchainURL           = "toolchain_url"
	KeyDownloadDir            = "download_dir"
	KeyRegistryPath           = "registry_path"
	KeySaveCommand            = "save_command"
	KeyTheme                  = "theme"
	KeyShowIcons              = "show_icons"
	KeyDebugLog               = "debug_log"
)

// EnvPrefix prefixes environment variable overrides: PROJCPP_COMPILE_COMMAND.
const EnvPrefix = "PROJCPP_"

// OverridePrefix prefixes --config flag overrides: --config pc.shell=cmd.
const OverridePrefix = "pc."

// DefaultToolchainURL is the MinGW-w64 archive offered when no compiler is found.
const DefaultToolchainURL = "https://deac-ams.dl.sourceforge.net/project/mingw-w64/Toolchains%20targetting%20Win64/Personal%20Builds/mingw-builds/8.1.0/threads-posix/seh/x86_64-8.1.0-release-posix-seh-rt_v6-rev0.7z"

var boolKeys = map[string]bool{
	KeyExternalTerminal: true,
	KeyShowIcons:        true,
}

// KnownKeys lists every supported setting key, sorted.
func KnownKeys() []string {
	keys := []string{
		KeyCompileCommand, KeyExternalTerminal, KeyDefaultProjectLocation,
		KeyShell, KeyTerminalEmulator, KeyToolchainURL, KeyDownloadDir,
		KeyRegistryPath, KeySaveCommand, KeyTheme, KeyShowIcons, KeyDebugLog,
	}
	sort.Strings(keys)
	return keys
}

// IsKnownKey reports whether key is a supported setting.
func IsKnownKey(key string) bool {
	for _, k := range KnownKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// ParseValue converts raw command-line text into the value stored for key.
// Boolean keys are stored as YAML booleans.
func ParseValue(key, raw string) (any, error) {
	if !IsKnownKey(key) {
		return nil, fmt.Errorf("unknown setting %q", key)
	}
	if !boolKeys[key] {
		return strings.TrimSpace(raw), nil
	}
	// unrecognised text falls back to each default in turn
	if coerceBool(raw, true) != coerceBool(raw, false) {
		return nil, fmt.Errorf("setting %q expects a boolean, got %q", key, raw)
	}
	return coerceBool(raw, false), nil
}

// AppConfig is a typed snapshot of the settings.
type AppConfig struct {
	CompileCommand         string
	ExternalTerminal       bool
	DefaultProjectLocation string
	Shell                  string // empty selects the platform default dialect
	TerminalEmulator       string
	ToolchainURL           string
	DownloadDir            string
	RegistryPath           string
	SaveCommand            string // run before every compile to flush editor buffers
	Theme                  string
	ShowIcons              bool
	DebugLog               string
}

// DefaultConfig returns the default configuration values.
func DefaultConfig() *AppConfig {
	home, _ := os.UserHomeDir()
	return &AppConfig{
		ExternalTerminal:       false,
		DefaultProjectLocation: filepath.Join(home, "projects"),
		ToolchainURL:           DefaultToolchainURL,
		DownloadDir:            filepath.Join(home, "Downloads"),
		RegistryPath:           filepath.Join(DataDir(), "projects.db"),
		Theme:                  "dracula",
		ShowIcons:              true,
	}
}

func coerceBool(value any, defaultVal bool) bool {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		text := strings.ToLower(strings.TrimSpace(v))
		switch text {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return defaultVal
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// parseConfig builds an AppConfig from raw YAML data, ignoring blank values.
func parseConfig(data map[string]any) *AppConfig {
	cfg := DefaultConfig()

	setString := func(key string, dst *string) {
		if text := stringValue(data[key]); text != "" {
			*dst = text
		}
	}

	setString(KeyCompileCommand, &cfg.CompileCommand)
	setString(KeyDefaultProjectLocation, &cfg.DefaultProjectLocation)
	setString(KeyShell, &cfg.Shell)
	setString(KeyTerminalEmulator, &cfg.TerminalEmulator)
	setString(KeyToolchainURL, &cfg.ToolchainURL)
	setString(KeyDownloadDir, &cfg.DownloadDir)
	setString(KeyRegistryPath, &cfg.RegistryPath)
	setString(KeySaveCommand, &cfg.SaveCommand)
	setString(KeyDebugLog, &cfg.DebugLog)

	if themeName := strings.ToLower(stringValue(data[KeyTheme])); themeName != "" {
		cfg.Theme = themeName
	}

	cfg.ExternalTerminal = coerceBool(data[KeyExternalTerminal], cfg.ExternalTerminal)
	cfg.ShowIcons = coerceBool(data[KeyShowIcons], cfg.ShowIcons)

	for _, dst := range []*string{&cfg.DefaultProjectLocation, &cfg.DownloadDir, &cfg.RegistryPath, &cfg.DebugLog} {
		if expanded, err := expandPath(*dst); err == nil {
			*dst = expanded
		}
	}

	return cfg
}

// parseOverride splits "pc.key=value" into key and value.
func parseOverride(raw string) (string, string, error) {
	key, value, ok := strings.Cut(raw, "=")
	if !ok {
		return "", "", fmt.Errorf("invalid override %q: expected %skey=value", raw, OverridePrefix)
	}
	key = strings.TrimSpace(key)
	if !strings.HasPrefix(key, OverridePrefix) {
		return "", "", fmt.Errorf("invalid override %q: key must start with %q", raw, OverridePrefix)
	}
	key = strings.TrimPrefix(key, OverridePrefix)
	if !IsKnownKey(key) {
		return "", "", fmt.Errorf("unknown setting %q", key)
	}
	return key, value, nil
}

// envOverrides collects PROJCPP_* variables for every known key.
func envOverrides(getenv func(string) string) map[string]string {
	out := map[string]string{}
	for _, key := range KnownKeys() {
		if value := getenv(EnvPrefix + strings.ToUpper(key)); value != "" {
			out[key] = value
		}
	}
	return out
}

// ConfigDir returns the directory holding config.yaml.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "projcpp")
}

// DataDir returns the directory holding the project registry.
func DataDir() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "projcpp")
}

// ResolvePath validates an explicit --config-file value, or returns the
// default config.yaml location when configPath is empty.
func ResolvePath(configPath string) (string, error) {
	configBase := filepath.Clean(ConfigDir())
	if configPath == "" {
		for _, name := range []string{"config.yaml", "config.yml"} {
			candidate := filepath.Join(configBase, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		return filepath.Join(configBase, "config.yaml"), nil
	}

	expanded, err := expandPath(configPath)
	if err != nil {
		return "", err
	}
	absPath, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	if !isPathWithin(configBase, absPath) {
		return "", fmt.Errorf("config path must reside inside %s", configBase)
	}
	return absPath, nil
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return os.ExpandEnv(path), nil
}

func isPathWithin(base, target string) bool {
	base = filepath.Clean(base)
	target = filepath.Clean(target)

	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return false
	}
	return true
}
