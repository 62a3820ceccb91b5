package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projcpp/projcpp/internal/platform"
	"github.com/projcpp/projcpp/internal/process"
)

func TestWindowsDir(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`C:\MinGW\bin\g++.exe`, `C:\MinGW\bin`},
		{`"C:\Program Files\CodeBlocks\MinGW\bin\g++.exe"`, `C:\Program Files\CodeBlocks\MinGW\bin`},
		{`C:/tools/mingw64/bin/g++.exe`, `C:\tools\mingw64\bin`},
		{`g++`, ``},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, WindowsDir(tt.in))
		})
	}
}

func TestOnPath(t *testing.T) {
	env := `C:\Windows\system32;C:\MinGW\Bin\;C:\Tools`
	assert.True(t, OnPath(env, `C:\mingw\bin`))
	assert.True(t, OnPath(env, `c:\tools\`))
	assert.False(t, OnPath(env, `C:\MinGW`))
	assert.False(t, OnPath("", `C:\MinGW`))
}

func TestSetxScript(t *testing.T) {
	script := SetxScript(`C:\MinGW\bin`)
	assert.Contains(t, script, `reg query HKCU\Environment /v PATH`)
	assert.Contains(t, script, `@setx PATH "C:\MinGW\bin;%~a"`)
	assert.Contains(t, script, `@setx PATH "C:\MinGW\bin;%~a %~b"`)
	assert.NotContains(t, script, "%%")
}

func TestRegister(t *testing.T) {
	const command = `C:\MinGW\bin\g++.exe`
	setx := `C:\Windows\System32\cmd.exe /S /C "` + SetxScript(`C:\MinGW\bin`) + `"`

	tests := []struct {
		name      string
		goos      string
		path      string
		command   string
		wantAdded bool
	}{
		{name: "windows, dir missing from PATH", goos: "windows", path: `C:\Windows`, command: command, wantAdded: true},
		{name: "windows, dir already on PATH", goos: "windows", path: `C:\Windows;C:\MinGW\bin`, command: command},
		{name: "bare command name", goos: "windows", command: "g++"},
		{name: "not windows", goos: "linux", command: "/usr/bin/g++"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{results: map[string]process.Result{setx: {}}}
			host := platform.Host{GOOS: tt.goos, Getenv: func(string) string { return tt.path }}
			var notices []string
			reg := NewPathRegistrar(host, runner, func(m string) { notices = append(notices, m) })

			added, err := reg.Register(context.Background(), tt.command)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAdded, added)
			assert.Equal(t, tt.wantAdded, reg.Added())
			if !tt.wantAdded {
				assert.Empty(t, runner.calls)
				assert.Empty(t, notices)
				return
			}
			require.Len(t, runner.calls, 1)
			assert.True(t, runner.calls[0].Raw)
			assert.Equal(t, []string{MsgPathAdded}, notices)

			again, err := reg.Register(context.Background(), tt.command)
			require.NoError(t, err)
			assert.False(t, again, "registration happens once per session")
			assert.Len(t, runner.calls, 1)
		})
	}
}

func TestRegisterFailure(t *testing.T) {
	host := platform.Host{GOOS: "windows", Getenv: func(string) string { return "" }}
	reg := NewPathRegistrar(host, &fakeRunner{}, nil)

	added, err := reg.Register(context.Background(), `C:\MinGW\bin\g++.exe`)
	require.Error(t, err)
	assert.False(t, added)
	assert.False(t, reg.Added())
}
