package process

import (
	"bytes"
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}
}

func TestRunCapturesOutput(t *testing.T) {
	skipOnWindows(t)

	res, err := ExecRunner{}.Run(context.Background(), Spec{
		Name: "sh",
		Args: []string{"-c", "echo out; echo err 1>&2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Equal(t, 0, res.ExitCode)
}

func TestRunReportsExitCode(t *testing.T) {
	skipOnWindows(t)

	res, err := ExecRunner{}.Run(context.Background(), Spec{
		Name: "sh",
		Args: []string{"-c", "exit 3"},
	})
	require.Error(t, err)
	assert.Equal(t, 3, res.ExitCode)
}

func TestRunUsesDirAndEnv(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	var out bytes.Buffer
	_, err := ExecRunner{}.Run(context.Background(), Spec{
		Name:   "sh",
		Args:   []string{"-c", "pwd; echo $PROJCPP_TEST"},
		Dir:    dir,
		Env:    map[string]string{"PROJCPP_TEST": "hello"},
		Stdout: &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "hello")
}

func TestRunMissingBinary(t *testing.T) {
	res, err := ExecRunner{}.Run(context.Background(), Spec{Name: "projcpp-definitely-missing-binary"})
	require.Error(t, err)
	assert.Equal(t, -1, res.ExitCode)

	_, err = ExecRunner{}.Run(context.Background(), Spec{})
	assert.Error(t, err)
}

func TestSpecString(t *testing.T) {
	assert.Equal(t, "g++ main.cpp -o bin/main", Spec{Name: "g++", Args: []string{"main.cpp", "-o", "bin/main"}}.String())
}
