//go:build windows

package client

import (
	"os/exec"
	"syscall"
)

// createNoWindow suppresses the console window Windows would otherwise pop
// up for a spawned child, mirroring the original transport's CREATE_NO_WINDOW
// creation flag.
const createNoWindow = 0x08000000

func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: createNoWindow}
}
