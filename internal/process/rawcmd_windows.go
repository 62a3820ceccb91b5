//go:build windows

package process

import (
	"os/exec"
	"strings"
	"syscall"
)

func applyRawCommandLine(cmd *exec.Cmd, spec Spec) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CmdLine: spec.Name + " " + strings.Join(spec.Args, " "),
	}
}
