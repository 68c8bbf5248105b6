//go:build unix

package encoder

import (
	"os/exec"
	"syscall"
)

// detach puts the encoder in its own process group so a terminal Ctrl+C
// reaches only megrep, which then stops at the next batch boundary.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
