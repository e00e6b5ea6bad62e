// Package command runs external binaries for document conversion and speech
// synthesis.
package command

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"PaperCast/internal/ports"
)

// ExecRunner executes commands with os/exec and returns their stdout.
type ExecRunner struct{}

var _ ports.Runner = (*ExecRunner)(nil)

// NewExecRunner builds a runner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes name with args, capturing stdout. On a non-zero exit the
// error carries the trailing stderr output for diagnostics.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := stderr.Bytes()
		if len(detail) > 1024 {
			detail = detail[len(detail)-1024:]
		}
		return nil, fmt.Errorf("%s: %w: %s", name, err, bytes.TrimSpace(detail))
	}
	return stdout.Bytes(), nil
}
