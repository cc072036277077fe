// SPDX-License-Identifier: MPL-2.0

package xec

import (
	"io"

	"github.com/xec-sh/xec/internal/xecore"
)

// Public type aliases over internal/xecore: the engine's data model lives
// in internal/xecore so the adapter packages can depend on it without
// importing the root package (which in turn depends on the adapters),
// avoiding an import cycle. Callers only ever see these xec-prefixed
// names.
type (
	// Request is the immutable, fully-resolved description of one
	// execution, as produced by Builder.
	Request = xecore.Request
	// Result is the immutable outcome of one execution.
	Result = xecore.Result
	// RetryPolicy configures retry behaviour for a Builder chain.
	RetryPolicy = xecore.RetryPolicy
	// ShellSelection models the three-way shell field: direct exec,
	// default shell, or a named interpreter.
	ShellSelection = xecore.ShellSelection

	// AdapterTag discriminates the closed set of backend kinds.
	AdapterTag = xecore.AdapterTag
	// AdapterOptions is the closed sum type selecting a backend.
	AdapterOptions = xecore.AdapterOptions
	// LocalOptions targets the local host.
	LocalOptions = xecore.LocalOptions
	// SSHOptions targets a remote host over SSH.
	SSHOptions = xecore.SSHOptions
	// DockerOptions targets a Docker/Podman container.
	DockerOptions = xecore.DockerOptions
	// KubernetesOptions targets a pod in a Kubernetes-compatible cluster.
	KubernetesOptions = xecore.KubernetesOptions

	// SSHAuth is the closed sum type of SSH authentication methods.
	SSHAuth = xecore.SSHAuth
	// PasswordAuth authenticates over SSH with a plaintext password.
	PasswordAuth = xecore.PasswordAuth
	// PrivateKeyAuth authenticates over SSH with a PEM-encoded key.
	PrivateKeyAuth = xecore.PrivateKeyAuth
	// AgentAuth authenticates over SSH via the local ssh-agent.
	AgentAuth = xecore.AgentAuth

	// SudoOptions configures sudo-wrapping for the SSH adapter.
	SudoOptions = xecore.SudoOptions
	// SudoMethod selects a sudo privilege-escalation strategy.
	SudoMethod = xecore.SudoMethod

	// AutoCreateOptions configures the container adapter's ephemeral
	// auto-create/auto-remove fallback.
	AutoCreateOptions = xecore.AutoCreateOptions

	// StdinSource abstracts the ways a Request may supply standard input.
	StdinSource = xecore.StdinSource

	// Capability is a single backend feature flag.
	Capability = xecore.Capability
	// CapabilitySet is a bitmask of Capability flags.
	CapabilitySet = xecore.CapabilitySet
	// Descriptor statically describes an adapter's identity and
	// capabilities.
	Descriptor = xecore.Descriptor
	// Adapter is the uniform contract every execution backend implements.
	// New registers only the four built-in adapters; no EngineOption
	// adds another.
	Adapter = xecore.Adapter
)

// Re-exported constants and constructors, so callers never need to import
// internal/xecore directly.
const (
	TagLocal      = xecore.TagLocal
	TagSSH        = xecore.TagSSH
	TagDocker     = xecore.TagDocker
	TagKubernetes = xecore.TagKubernetes

	SudoStdin         = xecore.SudoStdin
	SudoEcho          = xecore.SudoEcho
	SudoSecureAskpass = xecore.SudoSecureAskpass

	CapStdin         = xecore.CapStdin
	CapTTY           = xecore.CapTTY
	CapCopy          = xecore.CapCopy
	CapStreamingLogs = xecore.CapStreamingLogs
	CapPortForward   = xecore.CapPortForward
	CapSudo          = xecore.CapSudo

	DefaultMaxCapturedOutput = xecore.DefaultMaxCapturedOutput
)

// ShellDefault requests direct exec with no shell wrapping.
func ShellDefault() ShellSelection { return xecore.ShellDefault() }

// ShellTrue requests the target's default shell.
func ShellTrue() ShellSelection { return xecore.ShellTrue() }

// ShellPath requests a specific shell/interpreter binary.
func ShellPath(path string) ShellSelection { return xecore.ShellPath(path) }

// StdinString wraps a string as a StdinSource.
func StdinString(s string) StdinSource { return xecore.StdinString(s) }

// StdinBytes wraps a byte slice as a StdinSource.
func StdinBytes(b []byte) StdinSource { return xecore.StdinBytes(b) }

// StdinFromReader wraps a factory function producing a fresh io.Reader on
// each call, for retried requests that must re-read stdin per attempt.
func StdinFromReader(open func() io.Reader) StdinSource {
	return xecore.StdinFromReader(open)
}
