// SPDX-License-Identifier: MPL-2.0

package adapterlocal

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xec-sh/xec/internal/xecore"
)

func echoRequest(arg string) *xecore.Request {
	if runtime.GOOS == "windows" {
		return &xecore.Request{
			Command:        "echo " + arg,
			Shell:          xecore.ShellTrue(),
			AdapterOptions: xecore.LocalOptions{},
		}
	}
	return &xecore.Request{
		Command:        "echo",
		Args:           []string{arg},
		AdapterOptions: xecore.LocalOptions{},
	}
}

func TestAdapter_Execute_Echo(t *testing.T) {
	a := New(nil)
	res, err := a.Execute(context.Background(), echoRequest("hello"))
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Contains(t, res.Stdout, "hello")
}

func TestAdapter_Execute_NonZeroExit_Errors(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX shell")
	}
	a := New(nil)
	req := &xecore.Request{
		Command:        "exit 3",
		Shell:          xecore.ShellTrue(),
		AdapterOptions: xecore.LocalOptions{},
	}
	res, err := a.Execute(context.Background(), req)
	require.Error(t, err)
	var cmdErr *xecore.CommandFailedError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 3, res.ExitCode)
}

func TestAdapter_Execute_NonZeroExit_Nothrow(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX shell")
	}
	a := New(nil)
	req := &xecore.Request{
		Command:        "exit 3",
		Shell:          xecore.ShellTrue(),
		Nothrow:        true,
		AdapterOptions: xecore.LocalOptions{},
	}
	res, err := a.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.Success())
}

func TestAdapter_Execute_Timeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX shell")
	}
	a := New(nil)
	req := &xecore.Request{
		Command:        "sleep 5",
		Shell:          xecore.ShellTrue(),
		Timeout:        50 * time.Millisecond,
		AdapterOptions: xecore.LocalOptions{},
	}
	_, err := a.Execute(context.Background(), req)
	require.Error(t, err)
	var timeoutErr *xecore.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
}

func TestAdapter_Execute_Env(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX shell")
	}
	a := New(nil)
	req := &xecore.Request{
		Command:        "echo $FOO",
		Shell:          xecore.ShellTrue(),
		Env:            map[string]string{"FOO": "bar"},
		AdapterOptions: xecore.LocalOptions{},
	}
	res, err := a.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, "bar")
}

func TestAdapter_Execute_Cwd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX shell")
	}
	a := New(nil)
	dir := t.TempDir()
	req := &xecore.Request{
		Command:        "pwd",
		Shell:          xecore.ShellTrue(),
		Cwd:            dir,
		AdapterOptions: xecore.LocalOptions{},
	}
	res, err := a.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, dir)
}

func TestAdapter_Execute_OutputTooLarge(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX shell")
	}
	a := New(nil)
	req := &xecore.Request{
		Command:        "yes | head -c 1000000",
		Shell:          xecore.ShellTrue(),
		MaxOutput:      16,
		AdapterOptions: xecore.LocalOptions{},
	}
	_, err := a.Execute(context.Background(), req)
	require.Error(t, err)
	var tooLarge *xecore.OutputTooLargeError
	require.ErrorAs(t, err, &tooLarge)
}

func TestAdapter_IsAvailable(t *testing.T) {
	a := New(nil)
	assert.True(t, a.IsAvailable(context.Background()))
}
