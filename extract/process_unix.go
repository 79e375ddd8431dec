//go:build unix

package extract

import (
	"os/exec"
	"syscall"
)

// setProcessGroup puts the extractor in its own process group and makes
// ctx cancellation send SIGKILL to that whole group instead of only the
// extractor's own pid, so the whole subprocess tree goes down with it (§5).
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
