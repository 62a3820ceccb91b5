package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Empty(t, cfg.CompileCommand)
	assert.False(t, cfg.ExternalTerminal)
	assert.True(t, cfg.ShowIcons)
	assert.Equal(t, "dracula", cfg.Theme)
	assert.Equal(t, DefaultToolchainURL, cfg.ToolchainURL)
	assert.Equal(t, "projects", filepath.Base(cfg.DefaultProjectLocation))
	assert.Equal(t, "projects.db", filepath.Base(cfg.RegistryPath))
}

func TestCoerceBool(t *testing.T) {
	tests := []struct {
		name  string
		input any
		def   bool
		want  bool
	}{
		{name: "nil uses default", input: nil, def: true, want: true},
		{name: "bool true", input: true, def: false, want: true},
		{name: "int zero", input: 0, def: true, want: false},
		{name: "yes string", input: " Yes ", def: false, want: true},
		{name: "off string", input: "off", def: true, want: false},
		{name: "garbage keeps default", input: "maybe", def: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceBool(tt.input, tt.def))
		})
	}
}

func TestParseConfig(t *testing.T) {
	cfg := parseConfig(map[string]any{
		KeyCompileCommand:         "  clang++  ",
		KeyExternalTerminal:       "true",
		KeyDefaultProjectLocation: "/work/cpp",
		KeyShell:                  "pwsh",
		KeyTheme:                  "NORD",
		KeyShowIcons:              false,
		KeySaveCommand:            "",
	})

	assert.Equal(t, "clang++", cfg.CompileCommand)
	assert.True(t, cfg.ExternalTerminal)
	assert.Equal(t, "/work/cpp", cfg.DefaultProjectLocation)
	assert.Equal(t, "pwsh", cfg.Shell)
	assert.Equal(t, "nord", cfg.Theme)
	assert.False(t, cfg.ShowIcons)
	assert.Empty(t, cfg.SaveCommand)
}

func TestParseOverride(t *testing.T) {
	key, value, err := parseOverride("pc.compile_command=/usr/bin/g++")
	require.NoError(t, err)
	assert.Equal(t, KeyCompileCommand, key)
	assert.Equal(t, "/usr/bin/g++", value)

	_, _, err = parseOverride("compile_command=g++")
	assert.Error(t, err)

	_, _, err = parseOverride("pc.nope=1")
	assert.Error(t, err)

	_, _, err = parseOverride("pc.shell")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	env := map[string]string{
		"PROJCPP_EXTERNAL_TERMINAL": "1",
		"PROJCPP_SHELL":             "cmd",
		"OTHER":                     "x",
	}
	got := envOverrides(func(k string) string { return env[k] })
	assert.Equal(t, map[string]string{KeyExternalTerminal: "1", KeyShell: "cmd"}, got)
}

func TestResolvePathRejectsOutsideConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := ResolvePath(filepath.Join(t.TempDir(), "config.yaml"))
	assert.Error(t, err)

	inside := filepath.Join(ConfigDir(), "alt.yaml")
	got, err := ResolvePath(inside)
	require.NoError(t, err)
	assert.Equal(t, inside, got)

	def, err := ResolvePath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ConfigDir(), "config.yaml"), def)
}

func TestFileStoreRoundTripPreservesUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projcpp", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("theme: nord\ncustom_thing: kept\n"), 0o600))

	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyCompileCommand, "g++"))

	reloaded, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, "g++", reloaded.Get(KeyCompileCommand))
	assert.Equal(t, "nord", reloaded.Get(KeyTheme))
	assert.Equal(t, "kept", reloaded.Get("custom_thing"))

	require.NoError(t, reloaded.Unset(KeyCompileCommand))
	again, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Empty(t, again.Get(KeyCompileCommand))
}

func TestFileStoreOverridesShadowUntilWritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	store.applyEnv(func(k string) string {
		if k == "PROJCPP_COMPILE_COMMAND" {
			return "from-env"
		}
		return ""
	})
	require.NoError(t, store.ApplyOverrides([]string{"pc.external_terminal=yes"}))

	assert.Equal(t, "from-env", store.Get(KeyCompileCommand))
	assert.True(t, store.GetBool(KeyExternalTerminal, false))
	assert.True(t, store.Config().ExternalTerminal)

	require.NoError(t, store.Unset(KeyCompileCommand))
	assert.Empty(t, store.Get(KeyCompileCommand))
}

func TestNewFileStoreRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: [unclosed"), 0o600))

	_, err := NewFileStore(path)
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(map[string]any{KeyExternalTerminal: true})
	assert.True(t, store.GetBool(KeyExternalTerminal, false))
	require.NoError(t, store.Set(KeyCompileCommand, "gcc"))
	assert.Equal(t, "gcc", store.Config().CompileCommand)
	require.NoError(t, store.Unset(KeyCompileCommand))
	assert.Empty(t, store.Get(KeyCompileCommand))
	assert.Equal(t, 2, store.Writes)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		key     string
		raw     string
		want    any
		wantErr bool
	}{
		{KeyShell, " pwsh ", "pwsh", false},
		{KeyExternalTerminal, "yes", true, false},
		{KeyShowIcons, "off", false, false},
		{KeyShowIcons, "maybe", nil, true},
		{"nope", "x", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.raw, func(t *testing.T) {
			got, err := ParseValue(tt.key, tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
