package shell

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"unicode/utf16"

	"github.com/projcpp/projcpp/internal/platform"
	"github.com/projcpp/projcpp/internal/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteArg(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		input   string
		want    string
	}{
		{name: "posix empty", dialect: POSIX{}, input: "", want: "''"},
		{name: "posix simple", dialect: POSIX{}, input: "hello", want: "'hello'"},
		{name: "posix single quote", dialect: POSIX{}, input: "it's", want: "'it'\"'\"'s'"},
		{name: "posix spaces", dialect: POSIX{}, input: "/my proj", want: "'/my proj'"},
		{name: "powershell single quote", dialect: PowerShell{}, input: "it's", want: "'it''s'"},
		{name: "powershell empty", dialect: PowerShell{}, input: "", want: "''"},
		{name: "cmd spaces", dialect: Cmd{}, input: `C:\My Proj`, want: `"C:\My Proj"`},
		{name: "cmd double quote", dialect: Cmd{}, input: `a"b`, want: `"a""b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.QuoteArg(tt.input))
		})
	}
}

func TestRunBinaryCommand(t *testing.T) {
	assert.Equal(t, "'./bin/main'", POSIX{}.RunBinaryCommand("bin", "main"))
	assert.Equal(t, `& '.\bin\main.exe'`, PowerShell{Windows: true}.RunBinaryCommand("bin", "main.exe"))
	assert.Equal(t, `& './bin/main'`, PowerShell{}.RunBinaryCommand("bin", "main"))
	assert.Equal(t, `& './bin/main'; exit $LASTEXITCODE`, PowerShell{}.ExitWithLastCode(PowerShell{}.RunBinaryCommand("bin", "main")))
	assert.Equal(t, `".\bin\main.exe"`, Cmd{}.RunBinaryCommand("bin", "main.exe"))
}

func TestChangeDirectoryCommand(t *testing.T) {
	assert.Equal(t, "cd '/proj'", POSIX{}.ChangeDirectoryCommand("/proj"))
	assert.Equal(t, `Set-Location -LiteralPath 'C:\proj'`, PowerShell{Windows: true}.ChangeDirectoryCommand(`C:\proj`))
	assert.Equal(t, `cd /d "C:\proj"`, Cmd{}.ChangeDirectoryCommand(`C:\proj`))
}

func TestChainAndSequence(t *testing.T) {
	assert.Equal(t, "a && b", POSIX{}.Chain("a", "", "b"))
	assert.Equal(t, "a; b", POSIX{}.Sequence("a", "b"))
	assert.Equal(t, "a && b", Cmd{}.Chain("a", "b"))
	assert.Equal(t, "a & b", Cmd{}.Sequence("a", "b"))
	assert.Equal(t, "a; if ($?) { b; if ($?) { c } }", PowerShell{}.Chain("a", "b", "c"))
	assert.Equal(t, "a", PowerShell{}.Chain("a"))
	assert.Empty(t, PowerShell{}.Chain())
}

func TestInvocation(t *testing.T) {
	spec := POSIX{}.Invocation("echo hi")
	assert.Equal(t, "sh", spec.Name)
	assert.Equal(t, []string{"-c", "echo hi"}, spec.Args)

	spec = Cmd{}.Invocation("echo hi")
	assert.Equal(t, "cmd.exe", spec.Name)
	assert.Equal(t, []string{"/V:ON", "/S", "/C", `"echo hi"`}, spec.Args)
	assert.True(t, spec.Raw)

	spec = PowerShell{Exe: "pwsh"}.Invocation("echo hi")
	assert.Equal(t, "pwsh", spec.Name)
	require.Len(t, spec.Args, 3)
	assert.Equal(t, "-EncodedCommand", spec.Args[1])
}

func TestEncodePowerShell(t *testing.T) {
	raw, err := base64.StdEncoding.DecodeString(EncodePowerShell("& 'é'"))
	require.NoError(t, err)
	require.Equal(t, 0, len(raw)%2)

	units := make([]uint16, 0, len(raw)/2)
	for i := 0; i < len(raw); i += 2 {
		units = append(units, uint16(raw[i])|uint16(raw[i+1])<<8)
	}
	assert.Equal(t, "& 'é'", string(utf16.Decode(units)))
}

func TestDetect(t *testing.T) {
	withPowerShell := platform.Host{GOOS: "windows", Stat: func(name string) (os.FileInfo, error) {
		if name == WindowsPowerShellDir {
			return nil, nil
		}
		return nil, os.ErrNotExist
	}}
	withoutPowerShell := platform.Host{GOOS: "windows", Stat: func(string) (os.FileInfo, error) {
		return nil, os.ErrNotExist
	}}
	linux := platform.Host{GOOS: "linux"}

	tests := []struct {
		name    string
		setting string
		host    platform.Host
		want    string
	}{
		{name: "windows default powershell", host: withPowerShell, want: NamePowerShell},
		{name: "windows fallback cmd", host: withoutPowerShell, want: NameCmd},
		{name: "linux default posix", host: linux, want: NamePOSIX},
		{name: "setting pwsh", setting: "/usr/bin/pwsh", host: linux, want: NamePowerShell},
		{name: "setting powershell path", setting: `C:\Windows\System32\WindowsPowerShell\v1.0\powershell.exe`, host: withoutPowerShell, want: NamePowerShell},
		{name: "setting cmd", setting: `C:\Windows\System32\cmd.exe`, host: withPowerShell, want: NameCmd},
		{name: "setting bash", setting: "/bin/bash", host: withPowerShell, want: NamePOSIX},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.setting, tt.host).Name())
		})
	}

	bash, ok := Detect("/bin/bash", linux).(POSIX)
	require.True(t, ok)
	assert.Equal(t, "/bin/bash", bash.Shell)
}

func TestPOSIXScriptRunsBinaryAndReportsExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}

	dir := filepath.Join(t.TempDir(), "it's a dir")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin", "main"), []byte("#!/bin/sh\necho ran\nexit 4\n"), 0o700)) //nolint:gosec

	d := POSIX{}
	script := d.Sequence(
		d.Chain(d.ChangeDirectoryCommand(dir), d.RunBinaryCommand("bin", "main")),
		d.ReportExitCodeCommand(),
	)

	res, err := process.ExecRunner{}.Run(context.Background(), d.Invocation(script))
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, "ran")
	assert.Contains(t, res.Stdout, "Process exited with code 4")
}
