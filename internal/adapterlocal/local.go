// SPDX-License-Identifier: MPL-2.0

// Package adapterlocal implements the local-process execution backend: the
// spec's simplest adapter, running commands as direct children of the
// current process via os/exec. Grounded on the teacher's
// internal/runtime.NativeRuntime (shell/interpreter resolution, working
// directory and environment wiring), rewritten against xecore.Request and
// xecore.Result instead of the teacher's ExecutionContext/invkfile types.
package adapterlocal

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"

	"github.com/xec-sh/xec/internal/xecore"
)

// terminationGrace is how long a timed-out child is given to exit after
// SIGTERM before the adapter force-kills it.
const terminationGrace = 5 * time.Second

// Adapter executes commands as local child processes.
type Adapter struct {
	logger *log.Logger
}

// New constructs a local adapter. A nil logger falls back to a discard
// logger so callers that never configure logging pay no output cost.
func New(logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{Prefix: "local"})
	}
	return &Adapter{logger: logger}
}

// Capabilities describes what the local adapter supports.
func (a *Adapter) Capabilities() xecore.Descriptor {
	return xecore.Descriptor{
		Tag:          xecore.TagLocal,
		Capabilities: xecore.CapabilitySet(xecore.CapStdin),
	}
}

// IsAvailable reports whether a usable shell can be resolved on this host.
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	_, err := defaultShell("")
	return err == nil
}

// Dispose is a no-op: the local adapter owns no persistent resources.
func (a *Adapter) Dispose(ctx context.Context) error { return nil }

// Execute runs req.Command as a local child process, enforcing the
// request's timeout (SIGTERM, then SIGKILL after terminationGrace) and
// output cap.
func (a *Adapter) Execute(ctx context.Context, req *xecore.Request) (*xecore.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	startedAt := time.Now()
	target := xecore.Target{Adapter: xecore.TagLocal}

	name, args, err := a.resolveCommand(req)
	if err != nil {
		return nil, &xecore.AdapterUnavailableError{Target: target, Reason: err.Error()}
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if req.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, name, args...)
	installGracefulCancel(cmd)
	cmd.WaitDelay = terminationGrace

	if req.Cwd != "" {
		cmd.Dir = req.Cwd
	}
	if len(req.Env) > 0 {
		cmd.Env = append(os.Environ(), envSlice(req.Env)...)
	}
	if req.Stdin != nil {
		cmd.Stdin = req.Stdin.Reader()
	}

	limit := req.EffectiveMaxOutput()
	stdout := newCappedBuffer("stdout", limit)
	stderr := newCappedBuffer("stderr", limit)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	a.logger.Debug("executing local command", "command", req.Command, "cwd", req.Cwd)

	runErr := cmd.Run()
	duration := time.Since(startedAt)

	if err := stdout.Err(); err != nil {
		return nil, err
	}
	if err := stderr.Err(); err != nil {
		return nil, err
	}

	result := xecore.NewResult(xecore.TagLocal, "local", req.Command, startedAt)
	result.Duration = duration
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if runErr != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, &xecore.TimeoutError{Target: target, Budget: req.Timeout, Elapsed: duration}
		}

		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			if exitErr.ExitCode() == -1 {
				result.Signal = exitErr.String()
			}
		} else {
			return nil, &xecore.ConnectionFailedError{Target: target, Err: runErr}
		}
	}

	if result.ExitCode != 0 && !req.Nothrow {
		return result, &xecore.CommandFailedError{Target: target, Result: result}
	}
	return result, nil
}

// resolveCommand turns a Request into the executable name and argument
// vector os/exec needs, honoring the three-way shell selection: direct
// exec when disabled, the resolved default shell when enabled with no
// path, or the named interpreter when a path is given. Per the resolved
// shell=true policy, Args is ignored when a shell wraps Command — the
// whole Command string is the script, exactly as the wrapping shell
// receives it.
func (a *Adapter) resolveCommand(req *xecore.Request) (string, []string, error) {
	if !req.Shell.Enabled {
		return req.Command, req.Args, nil
	}

	shell, err := defaultShell(req.Shell.Path)
	if err != nil {
		return "", nil, err
	}
	args := append(shellInvocation(shell), req.Command)
	return shell, args, nil
}

func envSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}
