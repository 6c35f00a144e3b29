package process

// Notes:
// - KillProcessGroup: we only test with an invalid PID to verify the function
//   doesn't panic. Real kill behavior is exercised through the step timeout
//   tests of the root package.
// - Cannot test with PID 0 (kills current process group) or real PIDs.
// These are acceptable gaps: we test observable behavior, not syscall internals.

import (
	"os/exec"
	"testing"
)

// ---------------------------------------------------------------------------
// TestKillProcessGroup - Invalid PID Handling
// ---------------------------------------------------------------------------

func TestKillProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	KillProcessGroup(999999999)
}

// ---------------------------------------------------------------------------
// TestIsolate - Command setup
// ---------------------------------------------------------------------------

func TestIsolate_SetsCancel(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("true")
	Isolate(cmd)

	if cmd.Cancel == nil {
		t.Fatal("expected Cancel to be set")
	}
}
