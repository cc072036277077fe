//go:build !windows

// SPDX-License-Identifier: MPL-2.0

package adapterlocal

import (
	"os/exec"
	"syscall"
)

// installGracefulCancel makes ctx cancellation send SIGTERM first, giving
// the child grace time to exit; os/exec force-kills it only after grace
// elapses with no exit (via cmd.WaitDelay, set by the caller).
func installGracefulCancel(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
}
