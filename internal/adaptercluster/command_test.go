// SPDX-License-Identifier: MPL-2.0

package adaptercluster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xec-sh/xec/internal/xecore"
)

func TestExecArgs_DirectCommand(t *testing.T) {
	req := &xecore.Request{Command: "echo", Args: []string{"a", "b"}}
	opts := xecore.KubernetesOptions{Pod: "web-0"}
	args := execArgs(req, opts)
	assert.Equal(t, []string{"exec", "web-0", "--", "echo", "a", "b"}, args)
}

func TestExecArgs_ShellWrappedIgnoresArgs(t *testing.T) {
	req := &xecore.Request{Command: "echo hi; false", Args: []string{"should", "be", "ignored"}, Shell: xecore.ShellTrue()}
	opts := xecore.KubernetesOptions{Pod: "web-0"}
	args := execArgs(req, opts)
	assert.Equal(t, []string{"exec", "web-0", "--", "/bin/sh", "-c", "echo hi; false"}, args)
}

func TestExecArgs_OptsShellOverridesDefault(t *testing.T) {
	req := &xecore.Request{Command: "echo hi", Shell: xecore.ShellTrue()}
	opts := xecore.KubernetesOptions{Pod: "web-0", Shell: "/bin/bash"}
	args := execArgs(req, opts)
	assert.Equal(t, []string{"exec", "web-0", "--", "/bin/bash", "-c", "echo hi"}, args)
}

func TestExecArgs_NamespaceContainerStdin(t *testing.T) {
	req := &xecore.Request{Command: "whoami", Stdin: xecore.StdinString("x")}
	opts := xecore.KubernetesOptions{Pod: "web-0", Namespace: "prod", Container: "app"}
	args := execArgs(req, opts)
	assert.Equal(t, []string{"exec", "-n", "prod", "-i", "web-0", "-c", "app", "--", "whoami"}, args)
}

func TestTarget_Fields(t *testing.T) {
	a := New(nil)
	opts := xecore.KubernetesOptions{Pod: "web-0", Namespace: "prod", Container: "app"}
	tgt := a.target(opts)
	assert.Equal(t, "web-0", tgt.Pod)
	assert.Equal(t, "prod", tgt.Namespace)
	assert.Equal(t, "app", tgt.Container)
}
