// SPDX-License-Identifier: MPL-2.0

package adaptercluster

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/xec-sh/xec/internal/xecore"
)

// Adapter executes commands inside Kubernetes pods via a kubectl-compatible
// client binary. It carries no connection state between calls: every
// Execute or CopyFiles call spawns an independent client invocation, so
// distinct container selectors on the same pod never share state, per
// spec's multi-container independence requirement.
type Adapter struct {
	logger *log.Logger
}

// New constructs a cluster adapter. A nil logger falls back to a discard
// logger.
func New(logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{Prefix: "cluster"})
	}
	return &Adapter{logger: logger}
}

func (a *Adapter) target(opts xecore.KubernetesOptions) xecore.Target {
	return xecore.Target{Adapter: xecore.TagKubernetes, Pod: opts.Pod, Namespace: opts.Namespace, Container: opts.Container}
}

// resultTarget renders the "pod/namespace" Result.Target form the spec's
// result envelope describes for cluster executions.
func resultTarget(opts xecore.KubernetesOptions) string {
	if opts.Namespace == "" {
		return opts.Pod
	}
	return opts.Pod + "/" + opts.Namespace
}

// Capabilities describes what the cluster adapter supports.
func (a *Adapter) Capabilities() xecore.Descriptor {
	return xecore.Descriptor{
		Tag:          xecore.TagKubernetes,
		Capabilities: xecore.CapabilitySet(xecore.CapStdin | xecore.CapCopy),
	}
}

// IsAvailable reports whether a kubectl-compatible client is reachable on
// PATH.
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	return clientAvailable(ctx, clientFor("", ""))
}

// Dispose is a no-op: the cluster adapter holds no connections or
// ephemeral resources to release.
func (a *Adapter) Dispose(ctx context.Context) error { return nil }

// Execute runs req.Command inside the pod/container described by
// req.AdapterOptions.(xecore.KubernetesOptions).
func (a *Adapter) Execute(ctx context.Context, req *xecore.Request) (*xecore.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	opts, ok := req.AdapterOptions.(xecore.KubernetesOptions)
	if !ok {
		return nil, &xecore.InvalidRequestError{Reason: "adaptercluster requires xecore.KubernetesOptions"}
	}
	if opts.Pod == "" {
		return nil, &xecore.InvalidRequestError{Reason: "kubernetes target requires Pod"}
	}

	runner := clientFor(opts.KubectlPath, opts.Kubeconfig)
	if !clientAvailable(ctx, runner) {
		return nil, &xecore.AdapterUnavailableError{Target: a.target(opts), Reason: "kubectl-compatible client not found on PATH"}
	}

	args := execArgs(req, opts)

	runCtx := ctx
	var cancel context.CancelFunc
	if req.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var stdin []byte
	if req.Stdin != nil {
		data, err := io.ReadAll(req.Stdin.Reader())
		if err != nil {
			return nil, &xecore.InvalidRequestError{Reason: "reading stdin: " + err.Error()}
		}
		stdin = data
	}

	startedAt := time.Now()
	a.logger.Debug("executing pod command", "pod", opts.Pod, "namespace", opts.Namespace, "container", opts.Container)
	out, err := runner.Run(runCtx, stdin, args...)
	duration := time.Since(startedAt)

	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, &xecore.TimeoutError{Target: a.target(opts), Budget: req.Timeout, Elapsed: duration}
		}
		return nil, &xecore.ConnectionFailedError{Target: a.target(opts), Err: err}
	}

	if int64(len(out.Stdout)) > req.EffectiveMaxOutput() {
		return nil, &xecore.OutputTooLargeError{Stream: "stdout", Limit: req.EffectiveMaxOutput()}
	}
	if int64(len(out.Stderr)) > req.EffectiveMaxOutput() {
		return nil, &xecore.OutputTooLargeError{Stream: "stderr", Limit: req.EffectiveMaxOutput()}
	}

	result := xecore.NewResult(xecore.TagKubernetes, resultTarget(opts), req.Command, startedAt)
	result.Duration = duration
	result.Stdout = out.Stdout
	result.Stderr = out.Stderr
	result.ExitCode = out.ExitCode

	if result.ExitCode != 0 && !req.Nothrow {
		return result, &xecore.CommandFailedError{Target: a.target(opts), Result: result}
	}
	return result, nil
}

// execArgs assembles the full "kubectl exec" argument vector: namespace,
// stdin, pod/container selectors, then either a shell-wrapped invocation of
// req.Command (Args ignored once a shell wraps the command, matching
// adapterlocal.resolveCommand's shell=true policy) or req.Command+req.Args
// run directly.
func execArgs(req *xecore.Request, opts xecore.KubernetesOptions) []string {
	args := []string{"exec"}
	if opts.Namespace != "" {
		args = append(args, "-n", opts.Namespace)
	}
	if req.Stdin != nil {
		args = append(args, "-i")
	}
	args = append(args, opts.Pod)
	if opts.Container != "" {
		args = append(args, "-c", opts.Container)
	}
	args = append(args, "--")

	shell := opts.Shell
	if req.Shell.Enabled && shell == "" {
		shell = req.Shell.Path
	}
	if shell == "" && req.Shell.Enabled {
		shell = "/bin/sh"
	}

	if shell != "" {
		args = append(args, shell, "-c", req.Command)
	} else {
		args = append(args, req.Command)
		args = append(args, req.Args...)
	}
	return args
}

// CopyDirection selects which way CopyFiles moves data relative to the
// pod.
type CopyDirection int

const (
	// CopyTo copies from the local filesystem into the pod.
	CopyTo CopyDirection = iota
	// CopyFrom copies from the pod to the local filesystem.
	CopyFrom
)

// CopyFiles wraps the client's cp subcommand, scoped to the named
// container, preserving the copied file's bytes and mode as kubectl cp
// itself guarantees.
func (a *Adapter) CopyFiles(ctx context.Context, opts xecore.KubernetesOptions, source, destination string, direction CopyDirection) error {
	runner := clientFor(opts.KubectlPath, opts.Kubeconfig)

	podRef := opts.Pod
	if opts.Namespace != "" {
		podRef = opts.Namespace + "/" + opts.Pod
	}

	var args []string
	switch direction {
	case CopyTo:
		args = []string{"cp", source, podRef + ":" + destination}
	case CopyFrom:
		args = []string{"cp", podRef + ":" + source, destination}
	}
	if opts.Container != "" {
		args = append(args, "-c", opts.Container)
	}

	out, err := runner.Run(ctx, nil, args...)
	if err != nil {
		return &xecore.AdapterUnavailableError{Target: a.target(opts), Reason: err.Error()}
	}
	if out.ExitCode != 0 {
		return &xecore.TransferFailedError{Source: source, Dest: destination, Err: fmt.Errorf("%s", strings.TrimSpace(out.Stderr))}
	}
	return nil
}
