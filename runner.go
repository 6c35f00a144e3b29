package texeqn

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/alnah/go-texeqn/internal/process"
)

// waitDelay bounds how long Wait blocks on output pipes held open by
// orphaned children after the tool itself exited or was killed.
const waitDelay = 5 * time.Second

// Invocation is the outcome of a completed external process.
type Invocation struct {
	ExitCode int    // -1 if the process was killed or never started
	Output   string // combined stdout and stderr
}

// CommandRunner abstracts command execution to enable testing without real subprocesses.
//
// A non-zero exit status is reported through Invocation.ExitCode with a nil
// error. The error is reserved for processes that could not be started or
// did not run to completion (context canceled or deadline exceeded).
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (Invocation, error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Invocation, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- tool names come from trusted site config
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = waitDelay
	process.Isolate(cmd)

	err := cmd.Run()

	inv := Invocation{ExitCode: -1, Output: out.String()}
	if cmd.ProcessState != nil {
		inv.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err == nil {
		return inv, nil
	}
	if errors.Is(err, exec.ErrNotFound) {
		return inv, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return inv, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return inv, nil
	}
	return inv, fmt.Errorf("running %s: %w", name, err)
}
