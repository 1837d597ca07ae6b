//go:build !windows

package client

import (
	"os/exec"
	"syscall"
)

// setProcessGroup places the child in its own process group so a SIGINT
// delivered to this process does not also propagate to the child, mirroring
// the original transport's command.process_group(0).
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
