//go:build !windows

package process

import "os/exec"

func applyRawCommandLine(_ *exec.Cmd, _ Spec) {}
