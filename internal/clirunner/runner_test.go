// SPDX-License-Identifier: MPL-2.0

package clirunner

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shellRunner(t *testing.T) *Runner {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX shell binary")
	}
	return New("sh", "/bin/sh")
}

func TestRunner_Run_Success(t *testing.T) {
	r := shellRunner(t)
	out, err := r.Run(context.Background(), nil, "-c", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, 0, out.ExitCode)
	assert.Contains(t, out.Stdout, "hello")
}

func TestRunner_Run_NonZeroExit(t *testing.T) {
	r := shellRunner(t)
	out, err := r.Run(context.Background(), nil, "-c", "exit 7")
	require.NoError(t, err)
	assert.Equal(t, 7, out.ExitCode)
}

func TestRunner_Run_Stdin(t *testing.T) {
	r := shellRunner(t)
	out, err := r.Run(context.Background(), []byte("piped\n"), "-c", "cat")
	require.NoError(t, err)
	assert.Equal(t, "piped\n", out.Stdout)
}
