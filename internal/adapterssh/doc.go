// SPDX-License-Identifier: MPL-2.0

// Package adapterssh implements the SSH execution backend: command dispatch
// over golang.org/x/crypto/ssh, a pooled connection cache keyed by
// connection parameters, SFTP-backed file transfer, and three sudo
// privilege-escalation strategies (stdin, echo, secure askpass).
//
// Grounded on opal-lang-opal's core/decorator/session_pool.go (pooling) and
// ssh_session.go (client construction, context-cancellable exec), since the
// teacher repo only ever runs an SSH *server* (internal/sshserver) and has
// no outbound SSH client of its own.
package adapterssh
