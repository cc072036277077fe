//go:build windows

// SPDX-License-Identifier: MPL-2.0

package adapterlocal

import "os/exec"

// installGracefulCancel is a no-op on Windows: there is no portable
// graceful-termination signal, so ctx cancellation falls through to
// os/exec's default Cancel behavior (Process.Kill).
func installGracefulCancel(cmd *exec.Cmd) {}
