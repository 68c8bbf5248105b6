//go:build !unix

package encoder

import "os/exec"

func detach(cmd *exec.Cmd) {}
