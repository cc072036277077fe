// SPDX-License-Identifier: MPL-2.0

package xec

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/xec-sh/xec/internal/adapterreg"
	"github.com/xec-sh/xec/internal/retryx"
	"github.com/xec-sh/xec/internal/xecore"
)

// Builder is an immutable fluent object accumulating command configuration.
// Every chain method returns a new Builder with a shallow-copied, modified
// Request; the receiver is never mutated, so a Builder can be safely
// reused as a template for many executions (e.g. hold one SSH-target
// Builder and call Exec on it repeatedly with different commands).
type Builder struct {
	req      xecore.Request
	registry *adapterreg.Registry
}

func newBuilder(registry *adapterreg.Registry, opts AdapterOptions) *Builder {
	return &Builder{
		registry: registry,
		req: xecore.Request{
			AdapterOptions: opts,
		},
	}
}

func (b *Builder) clone() *Builder {
	nb := &Builder{registry: b.registry, req: b.req}
	if b.req.Env != nil {
		nb.req.Env = maps.Clone(b.req.Env)
	}
	if b.req.Args != nil {
		nb.req.Args = append([]string(nil), b.req.Args...)
	}
	return nb
}

// Command sets the command string and its positional arguments. When Shell
// is enabled, Command carries the whole script and Args is ignored by the
// adapters; otherwise Command is the executable name and Args its argv.
func (b *Builder) Command(command string, args ...string) *Builder {
	nb := b.clone()
	nb.req.Command = command
	nb.req.Args = args
	return nb
}

// Env merges vars onto any environment already accumulated on this
// Builder, later calls overriding earlier ones for the same key.
func (b *Builder) Env(vars map[string]string) *Builder {
	nb := b.clone()
	if nb.req.Env == nil {
		nb.req.Env = make(map[string]string, len(vars))
	}
	maps.Copy(nb.req.Env, vars)
	return nb
}

// Cd sets the working directory the command runs in, when the target
// supports it.
func (b *Builder) Cd(dir string) *Builder {
	nb := b.clone()
	nb.req.Cwd = dir
	return nb
}

// Stdin supplies standard input to the command.
func (b *Builder) Stdin(src StdinSource) *Builder {
	nb := b.clone()
	nb.req.Stdin = src
	return nb
}

// Timeout bounds how long the execution may run before it is cancelled and
// a Timeout error is raised.
func (b *Builder) Timeout(d time.Duration) *Builder {
	nb := b.clone()
	nb.req.Timeout = d
	return nb
}

// Shell selects direct exec, the target's default shell, or a named
// interpreter to wrap Command in.
func (b *Builder) Shell(sel ShellSelection) *Builder {
	nb := b.clone()
	nb.req.Shell = sel
	return nb
}

// Retry configures the retry policy applied around dispatch.
func (b *Builder) Retry(policy RetryPolicy) *Builder {
	nb := b.clone()
	nb.req.Retry = policy
	return nb
}

// Nothrow makes a non-zero exit code a normal result instead of raising
// CommandFailedError.
func (b *Builder) Nothrow() *Builder {
	nb := b.clone()
	nb.req.Nothrow = true
	return nb
}

// MaxOutput overrides DefaultMaxCapturedOutput for this Builder's captured
// stdout/stderr.
func (b *Builder) MaxOutput(n int64) *Builder {
	nb := b.clone()
	nb.req.MaxOutput = n
	return nb
}

// Request returns the Builder's currently accumulated, immutable request
// (a copy), for callers that want to inspect configuration before
// dispatch.
func (b *Builder) Request() Request {
	return b.req
}

// Run materializes the Builder's accumulated configuration into a Request
// and dispatches it once (plus any configured retries).
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	req := b.req
	if err := req.Validate(); err != nil {
		return nil, err
	}

	adapter, ok := b.registry.Get(req.AdapterOptions.Tag())
	if !ok {
		return nil, &xecore.AdapterUnavailableError{
			Target: xecore.Target{Adapter: req.AdapterOptions.Tag()},
			Reason: "no adapter registered for this target",
		}
	}

	var result *xecore.Result
	err := retryx.Do(ctx, req.Retry, func(attempt int) (bool, error) {
		res, err := adapter.Execute(ctx, &req)
		result = res
		if err == nil {
			return false, nil
		}
		return isRetryable(err, req.Retry.RetryTimeout), err
	})
	return result, err
}

// Exec is sugar for Command(commandString, args...).Run(ctx).
func (b *Builder) Exec(ctx context.Context, commandString string, args ...string) (*Result, error) {
	return b.Command(commandString, args...).Run(ctx)
}

// isRetryable implements the policy from spec.md §9's resolved open
// question: a Timeout is retried only when the policy opts in; every other
// adapter error is retryable except the ones that mean retrying can never
// help (bad auth, malformed request, bad image reference).
func isRetryable(err error, retryTimeout bool) bool {
	var timeoutErr *xecore.TimeoutError
	if errors.As(err, &timeoutErr) {
		return retryTimeout
	}
	var authErr *xecore.AuthenticationFailedError
	if errors.As(err, &authErr) {
		return false
	}
	var invalidReqErr *xecore.InvalidRequestError
	if errors.As(err, &invalidReqErr) {
		return false
	}
	var invalidImageErr *xecore.InvalidImageError
	if errors.As(err, &invalidImageErr) {
		return false
	}
	return true
}
