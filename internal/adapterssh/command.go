// SPDX-License-Identifier: MPL-2.0

package adapterssh

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/xec-sh/xec/internal/xecore"
)

// quote shell-quotes a single argument, reusing mvdan.cc/sh/v3/syntax (the
// same shell-parsing package the teacher imports for script validation) for
// its quoting rules rather than hand-rolling an escaping function.
func quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		// syntax.Quote only fails for inputs containing a NUL byte, which a
		// shell command line can never carry anyway.
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return q
}

// sudoShell resolves which shell binary sudo's "-c" wrapping uses, per the
// same opts.Shell override effectiveShell applies for the outer command.
func sudoShell(opts xecore.SSHOptions) string {
	if opts.Shell != "" {
		return opts.Shell
	}
	return "/bin/sh"
}

// effectiveShell resolves which shell binary wraps the remote command line,
// preferring the target's configured opts.Shell, falling back to a
// per-request xecore.ShellPath, and finally "/bin/sh" when a shell is
// requested but no specific binary was named. An empty result means no
// shell wrapping at all.
func effectiveShell(req *xecore.Request, opts xecore.SSHOptions) string {
	if opts.Shell != "" {
		return opts.Shell
	}
	if !req.Shell.Enabled {
		return ""
	}
	if req.Shell.Path != "" {
		return req.Shell.Path
	}
	return "/bin/sh"
}

// buildCommandLine assembles the final remote command line: the request's
// command (or command+args when not shell-wrapped), prefixed with `export`
// statements for injected variables and a `cd` for the working directory.
// Sudo wrapping is not applied here; Execute passes the result to wrapSudo.
// When a shell is in play (req.Shell.Enabled or opts.Shell configured),
// Args is ignored — Command is the whole script handed to the shell.
func buildCommandLine(req *xecore.Request, opts xecore.SSHOptions) string {
	shell := effectiveShell(req, opts)

	var script string
	if shell != "" {
		script = req.Command
	} else {
		parts := make([]string, 0, 1+len(req.Args))
		parts = append(parts, quote(req.Command))
		for _, a := range req.Args {
			parts = append(parts, quote(a))
		}
		script = strings.Join(parts, " ")
	}

	if req.Cwd != "" {
		script = fmt.Sprintf("cd %s && %s", quote(req.Cwd), script)
	}

	if len(req.Env) > 0 {
		script = exportPrefix(req.Env) + script
	}

	if shell != "" {
		script = fmt.Sprintf("%s -c %s", shell, quote(script))
	}

	return script
}

func exportPrefix(env map[string]string) string {
	var b strings.Builder
	for k, v := range env {
		fmt.Fprintf(&b, "export %s=%s; ", k, quote(v))
	}
	return b.String()
}
