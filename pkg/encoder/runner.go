package encoder

import (
	"bytes"
	"context"
	"os/exec"
)

// RunResult holds the outcome of a single encoder invocation
type RunResult struct {
	Stdout string
	Stderr string
	Err    error
}

// Runner executes an external command
type Runner interface {
	Run(ctx context.Context, name string, args ...string) RunResult
}

// ExecRunner runs commands with os/exec, capturing both output streams
type ExecRunner struct{}

// Run executes name with args and waits for it to exit
func (ExecRunner) Run(ctx context.Context, name string, args ...string) RunResult {
	cmd := exec.CommandContext(ctx, name, args...)
	detach(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return RunResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Err:    err,
	}
}

// LookPath reports whether binary can be found on PATH
func LookPath(binary string) error {
	_, err := exec.LookPath(binary)
	return err
}
