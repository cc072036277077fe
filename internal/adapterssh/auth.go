// SPDX-License-Identifier: MPL-2.0

package adapterssh

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	"github.com/xec-sh/xec/internal/xecore"
)

// authMethodsFor converts the closed xecore.SSHAuth sum type into the one
// ssh.AuthMethod it selects. Grounded on opal's sshKeyAuth/sshAgentAuth
// helpers, generalized from opal's "try everything available" fallback
// chain to an exhaustive switch, since xecore.SSHAuth forces exactly one
// variant to be chosen at request-build time.
func authMethodsFor(auth xecore.SSHAuth) ([]ssh.AuthMethod, error) {
	switch a := auth.(type) {
	case xecore.PasswordAuth:
		return []ssh.AuthMethod{ssh.Password(a.Password)}, nil
	case xecore.PrivateKeyAuth:
		var signer ssh.Signer
		var err error
		if a.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(a.PEM, []byte(a.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(a.PEM)
		}
		if err != nil {
			return nil, &xecore.AuthenticationFailedError{Err: fmt.Errorf("parsing private key: %w", err)}
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	case xecore.AgentAuth:
		socket := os.Getenv("SSH_AUTH_SOCK")
		if socket == "" {
			return nil, &xecore.AuthenticationFailedError{Err: fmt.Errorf("SSH_AUTH_SOCK not set, no agent to connect to")}
		}
		conn, err := net.Dial("unix", socket)
		if err != nil {
			return nil, &xecore.AuthenticationFailedError{Err: fmt.Errorf("dialing ssh-agent: %w", err)}
		}
		client := agent.NewClient(conn)
		return []ssh.AuthMethod{ssh.PublicKeysCallback(client.Signers)}, nil
	default:
		return nil, &xecore.InvalidRequestError{Reason: "unrecognized SSH auth variant"}
	}
}

// hostKeyCallbackFor resolves the host-key verification policy: explicit
// insecure opt-out, or known_hosts lookup (default path, or an override),
// falling back to trust-on-first-use when the file cannot be read — the
// same posture opal's getHostKeyCallback takes.
func hostKeyCallbackFor(opts xecore.SSHOptions) (ssh.HostKeyCallback, error) {
	if opts.HostKeyInsecureIgnore {
		return ssh.InsecureIgnoreHostKey(), nil
	}

	path := opts.KnownHostsPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, ".ssh", "known_hosts")
		}
	}

	callback, err := loadKnownHosts(path)
	if err != nil {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	return callback, nil
}

func loadKnownHosts(path string) (ssh.HostKeyCallback, error) {
	if path == "" {
		return nil, fmt.Errorf("no known_hosts path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]ssh.PublicKey)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		_, hosts, pubKey, _, _, err := ssh.ParseKnownHosts([]byte(line))
		if err != nil {
			continue
		}
		for _, h := range hosts {
			entries[h+":"+pubKey.Type()] = pubKey
		}
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		known, ok := entries[hostname+":"+key.Type()]
		if !ok {
			return fmt.Errorf("host key not found in known_hosts: %s", hostname)
		}
		if string(known.Marshal()) != string(key.Marshal()) {
			return fmt.Errorf("host key mismatch for %s", hostname)
		}
		return nil
	}, nil
}
