// SPDX-License-Identifier: MPL-2.0

package adapterssh

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/xec-sh/xec/internal/secure"
	"github.com/xec-sh/xec/internal/xecore"
)

var echoWarnOnce sync.Once

// wrapSudo rewrites script to run under sudo per opts.Method, returning the
// final script plus an optional stdin prefix (used by the stdin method to
// feed the password ahead of the caller's own stdin) and a cleanup func
// that must run after execution regardless of outcome. shell selects the
// interpreter sudo's "-c" invokes, resolved by the caller via sudoShell so
// SSHOptions.Shell is honored instead of a hardcoded /bin/sh.
func wrapSudo(script string, opts xecore.SudoOptions, shell string, logger *log.Logger, session *secure.Session) (finalScript string, stdinPrefix io.Reader, cleanup func(), err error) {
	if !opts.Enabled {
		return script, nil, func() {}, nil
	}

	userFlag := ""
	if opts.User != "" {
		userFlag = "-u " + quote(opts.User) + " "
	}

	switch opts.Method {
	case xecore.SudoStdin:
		cmd := fmt.Sprintf("sudo -S %s%s -c %s", userFlag, shell, quote(script))
		return cmd, strings.NewReader(opts.Password + "\n"), func() {}, nil

	case xecore.SudoEcho:
		echoWarnOnce.Do(func() {
			logger.Warn("sudo echo method exposes the password on the remote command line; prefer secure-askpass")
		})
		cmd := fmt.Sprintf("echo %s | sudo -S %s%s -c %s", quote(opts.Password), userFlag, shell, quote(script))
		return cmd, nil, func() {}, nil

	case xecore.SudoSecureAskpass:
		if session == nil {
			return "", nil, func() {}, &xecore.InvalidRequestError{Reason: "secure-askpass sudo requires an open askpass session"}
		}
		cmd := fmt.Sprintf(
			"%s=%s SUDO_ASKPASS=%s sudo -A %s%s -c %s",
			session.PasswordEnvVarName, quote(opts.Password),
			quote(session.RemoteScriptPath), userFlag, shell, quote(script),
		)
		return cmd, nil, func() {}, nil

	default:
		return "", nil, func() {}, &xecore.InvalidRequestError{Reason: fmt.Sprintf("unknown sudo method %q", opts.Method)}
	}
}
