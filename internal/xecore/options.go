// SPDX-License-Identifier: MPL-2.0

package xecore

import "time"

// AdapterTag discriminates the closed set of backend kinds a Request can
// target. Mirrors the "type" discriminator field the spec's source records
// as a loose string; here it is a typed enum matched against a Go sum type
// (AdapterOptions) rather than duck-typed at dispatch time.
type AdapterTag string

const (
	TagLocal      AdapterTag = "local"
	TagSSH        AdapterTag = "ssh"
	TagDocker     AdapterTag = "docker"
	TagKubernetes AdapterTag = "kubernetes"
)

// AdapterOptions is a closed sum type: only the four variants defined in
// this package implement it (the unexported tag() method prevents external
// packages from adding new variants, keeping dispatch exhaustive).
type AdapterOptions interface {
	Tag() AdapterTag
	tag()
}

// LocalOptions carries no target-selection fields — the local adapter has
// no connection to configure — but exists so Request.AdapterOptions is
// always non-nil and dispatch can switch uniformly on Tag().
type LocalOptions struct{}

func (LocalOptions) Tag() AdapterTag { return TagLocal }
func (LocalOptions) tag()            {}

// SSHAuth is a closed sum type selecting exactly one of the three
// authentication methods the spec allows (password XOR privateKey XOR
// agent). Validated once at request-build time rather than at execution.
type SSHAuth interface {
	isSSHAuth()
}

type (
	// PasswordAuth authenticates with a plaintext password.
	PasswordAuth struct{ Password string }
	// PrivateKeyAuth authenticates with a PEM-encoded private key, optionally
	// passphrase-protected.
	PrivateKeyAuth struct {
		PEM        []byte
		Passphrase string
	}
	// AgentAuth authenticates via the local ssh-agent (SSH_AUTH_SOCK).
	AgentAuth struct{}
)

func (PasswordAuth) isSSHAuth()   {}
func (PrivateKeyAuth) isSSHAuth() {}
func (AgentAuth) isSSHAuth()      {}

// SudoMethod selects the privilege-escalation strategy the SSH adapter uses
// when SudoOptions.Enabled is true.
type SudoMethod string

const (
	SudoStdin          SudoMethod = "stdin"
	SudoEcho           SudoMethod = "echo"
	SudoSecureAskpass  SudoMethod = "secure-askpass"
)

// SudoOptions configures sudo-wrapping of the command sent to the SSH
// adapter.
type SudoOptions struct {
	Enabled  bool
	Password string
	Method   SudoMethod
	// User, if set, is passed to sudo as `sudo -u <user>`. Empty means root.
	User string
}

// SSHOptions configures the SSH adapter's target connection.
type SSHOptions struct {
	Host        string
	Port        int // zero defaults to 22
	Username    string
	Auth        SSHAuth
	Shell       string // "" defers to the request's Shell selection
	Sudo        SudoOptions
	KeepAlive   time.Duration // zero defaults to the pool's standard interval
	Fingerprint string        // optional extra pool-key discriminator
	// HostKeyInsecureIgnore skips host-key verification. Off by default;
	// intended for ephemeral test targets, never for production hosts.
	HostKeyInsecureIgnore bool
	KnownHostsPath        string // "" defaults to ~/.ssh/known_hosts
}

func (SSHOptions) Tag() AdapterTag { return TagSSH }
func (SSHOptions) tag()            {}

// AutoCreateOptions configures the container adapter's ephemeral-container
// fallback for a missing target container.
type AutoCreateOptions struct {
	Enabled    bool
	Image      string
	AutoRemove bool
}

// DockerOptions configures the container adapter's target container.
type DockerOptions struct {
	Engine      string // not read by the container adapter, which uses its own engine
	Container   string
	User        string
	Workdir     string
	Env         map[string]string
	AutoCreate  AutoCreateOptions
}

func (DockerOptions) Tag() AdapterTag { return TagDocker }
func (DockerOptions) tag()            {}

// KubernetesOptions configures the cluster adapter's target pod.
type KubernetesOptions struct {
	Pod         string
	Namespace   string
	Container   string // "" selects the pod's first container
	Kubeconfig  string
	KubectlPath string // "" resolves "kubectl" from PATH
	Shell       string
}

func (KubernetesOptions) Tag() AdapterTag { return TagKubernetes }
func (KubernetesOptions) tag()            {}
