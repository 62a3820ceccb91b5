package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projcpp/projcpp/internal/process"
)

func TestStripQuotes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"C:\mingw\bin\g++.exe"`, `C:\mingw\bin\g++.exe`},
		{`'/usr/bin/g++'`, `/usr/bin/g++`},
		{`  g++  `, `g++`},
		{`"mismatched'`, `"mismatched'`},
		{`"`, `"`},
		{``, ``},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, StripQuotes(tt.in))
		})
	}
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name    string
		goos    string
		results map[string]process.Result
		probe   string
		want    bool
	}{
		{
			name:    "whereis lists a location",
			goos:    "linux",
			results: map[string]process.Result{"whereis g++": {Stdout: "g++: /usr/bin/g++\n"}},
			probe:   "g++",
			want:    true,
		},
		{
			name:    "whereis lists nothing",
			goos:    "linux",
			results: map[string]process.Result{"whereis clang": {Stdout: "clang:\n"}},
			probe:   "clang",
			want:    false,
		},
		{
			name:    "stderr output fails the probe",
			goos:    "linux",
			results: map[string]process.Result{"whereis g++": {Stdout: "g++: /usr/bin/g++", Stderr: "warning"}},
			probe:   "g++",
			want:    false,
		},
		{
			name:    "non-zero exit fails the probe",
			goos:    "windows",
			results: map[string]process.Result{"where g++": {ExitCode: 1}},
			probe:   "g++",
			want:    false,
		},
		{
			name:    "where success is enough on windows",
			goos:    "windows",
			results: map[string]process.Result{"where g++": {}},
			probe:   "g++",
			want:    true,
		},
		{
			name:    "quotes are stripped before probing",
			goos:    "linux",
			results: map[string]process.Result{"whereis gcc": {Stdout: "gcc: /usr/bin/gcc"}},
			probe:   `"gcc"`,
			want:    true,
		},
		{
			name:    "whereis echoes only the base name of a path",
			goos:    "linux",
			results: map[string]process.Result{"whereis /nonexistent/g++": {Stdout: "g++:\n"}},
			probe:   "/nonexistent/g++",
			want:    false,
		},
		{
			name:    "base name prefix with a location",
			goos:    "linux",
			results: map[string]process.Result{"whereis /opt/gcc/g++": {Stdout: "g++: /usr/bin/g++\n"}},
			probe:   "/opt/gcc/g++",
			want:    true,
		},
		{
			name:  "unknown command",
			goos:  "darwin",
			probe: "nope",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(hostWith(tt.goos), &fakeRunner{results: tt.results})
			assert.Equal(t, tt.want, v.Probe(context.Background(), tt.probe))
		})
	}
}

func TestIsCommand(t *testing.T) {
	runner := &fakeRunner{results: map[string]process.Result{"whereis g++": {Stdout: "g++: /usr/bin/g++"}}}
	v := NewValidator(hostWith("linux", "/opt/gcc/bin/g++"), runner)
	ctx := context.Background()

	assert.False(t, v.IsCommand(ctx, ""))
	assert.False(t, v.IsCommand(ctx, "   "))
	require.Empty(t, runner.calls, "blank input must not spawn a probe")

	assert.True(t, v.IsCommand(ctx, "/opt/gcc/bin/g++"))
	assert.True(t, v.IsCommand(ctx, `"/opt/gcc/bin/g++"`))
	require.Empty(t, runner.calls, "existing paths skip the probe")

	assert.True(t, v.IsCommand(ctx, "g++"))
	assert.Equal(t, []string{"whereis g++"}, runner.probes())
}

func TestIsCommandMissingPathIsNotLookedUp(t *testing.T) {
	// whereis strips the directory and still exits 0 with "g++:"
	runner := &fakeRunner{results: map[string]process.Result{
		"whereis /missing/g++":     {Stdout: "g++: /usr/bin/g++\n"},
		`whereis C:\MinGW\bin\g++`: {Stdout: "g++:\n"},
	}}
	v := NewValidator(hostWith("linux"), runner)
	ctx := context.Background()

	assert.False(t, v.IsCommand(ctx, "/missing/g++"))
	assert.False(t, v.IsCommand(ctx, `"/missing/g++"`))
	assert.False(t, v.IsCommand(ctx, `C:\MinGW\bin\g++`))
	assert.False(t, v.IsCommand(ctx, "bin/g++"))
	assert.Empty(t, runner.calls)
}

func TestProbeWithoutRunner(t *testing.T) {
	v := NewValidator(hostWith("linux"), nil)
	assert.False(t, v.Probe(context.Background(), "g++"))
}
