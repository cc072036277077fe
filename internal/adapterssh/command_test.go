// SPDX-License-Identifier: MPL-2.0

package adapterssh

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xec-sh/xec/internal/xecore"
)

func TestBuildCommandLine_NoShell(t *testing.T) {
	req := &xecore.Request{Command: "echo", Args: []string{"hello world"}}
	got := buildCommandLine(req, xecore.SSHOptions{})
	assert.Equal(t, "echo 'hello world'", got)
}

func TestBuildCommandLine_Shell(t *testing.T) {
	req := &xecore.Request{Command: "echo $HOME", Shell: xecore.ShellTrue()}
	got := buildCommandLine(req, xecore.SSHOptions{})
	assert.Equal(t, "/bin/sh -c 'echo $HOME'", got)
}

func TestBuildCommandLine_OptsShellOverridesDefault(t *testing.T) {
	req := &xecore.Request{Command: "echo $HOME"}
	got := buildCommandLine(req, xecore.SSHOptions{Shell: "/bin/bash"})
	assert.Equal(t, "/bin/bash -c 'echo $HOME'", got)
}

func TestBuildCommandLine_RequestShellPathWinsOverDefault(t *testing.T) {
	req := &xecore.Request{Command: "echo $HOME", Shell: xecore.ShellPath("/bin/zsh")}
	got := buildCommandLine(req, xecore.SSHOptions{})
	assert.Equal(t, "/bin/zsh -c 'echo $HOME'", got)
}

func TestEffectiveShell_NoneWhenUnset(t *testing.T) {
	assert.Equal(t, "", effectiveShell(&xecore.Request{}, xecore.SSHOptions{}))
}

func TestSudoShell_DefaultsToSh(t *testing.T) {
	assert.Equal(t, "/bin/sh", sudoShell(xecore.SSHOptions{}))
	assert.Equal(t, "/bin/bash", sudoShell(xecore.SSHOptions{Shell: "/bin/bash"}))
}

func TestBuildCommandLine_Cwd(t *testing.T) {
	req := &xecore.Request{Command: "pwd", Cwd: "/tmp/my dir"}
	got := buildCommandLine(req, xecore.SSHOptions{})
	assert.Equal(t, "cd '/tmp/my dir' && pwd", got)
}

func TestBuildCommandLine_Env(t *testing.T) {
	req := &xecore.Request{Command: "env", Env: map[string]string{"FOO": "bar"}}
	got := buildCommandLine(req, xecore.SSHOptions{})
	assert.Contains(t, got, "export FOO=bar; ")
	assert.Contains(t, got, "env")
}

func TestConnKey_Deterministic(t *testing.T) {
	a := xecore.SSHOptions{Host: "h1", Port: 22, Username: "u"}
	b := xecore.SSHOptions{Host: "h1", Port: 22, Username: "u"}
	c := xecore.SSHOptions{Host: "h2", Port: 22, Username: "u"}
	assert.Equal(t, connKey(a), connKey(b))
	assert.NotEqual(t, connKey(a), connKey(c))
}

func TestEffectivePort_DefaultsTo22(t *testing.T) {
	assert.Equal(t, 22, effectivePort(xecore.SSHOptions{}))
	assert.Equal(t, 2222, effectivePort(xecore.SSHOptions{Port: 2222}))
}
