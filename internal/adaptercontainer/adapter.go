// SPDX-License-Identifier: MPL-2.0

package adaptercontainer

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/xec-sh/xec/internal/xecore"
)

// Adapter executes commands inside a running Docker or Podman container,
// optionally auto-creating an ephemeral one when the target is missing.
type Adapter struct {
	engine Engine
	logger *log.Logger

	mu          chan struct{} // binary semaphore guarding autoCreated map
	autoCreated map[string]bool
}

// New constructs a container adapter. A nil engine auto-detects Docker or
// Podman at first use; a nil logger falls back to a discard logger.
func New(engine Engine, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{Prefix: "container"})
	}
	a := &Adapter{engine: engine, logger: logger, mu: make(chan struct{}, 1), autoCreated: make(map[string]bool)}
	a.mu <- struct{}{}
	return a
}

func (a *Adapter) target(container string) xecore.Target {
	return xecore.Target{Adapter: xecore.TagDocker, Container: container}
}

// Capabilities describes what the container adapter supports.
func (a *Adapter) Capabilities() xecore.Descriptor {
	return xecore.Descriptor{
		Tag:          xecore.TagDocker,
		Capabilities: xecore.CapabilitySet(xecore.CapStdin | xecore.CapCopy | xecore.CapStreamingLogs),
	}
}

// IsAvailable reports whether the configured (or auto-detected) engine
// binary is reachable.
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	if a.engine == nil {
		a.engine = AutoDetect(ctx)
	}
	return a.engine != nil && a.engine.Available(ctx)
}

// Dispose removes every container this adapter auto-created.
func (a *Adapter) Dispose(ctx context.Context) error {
	<-a.mu
	names := make([]string, 0, len(a.autoCreated))
	for n := range a.autoCreated {
		names = append(names, n)
	}
	a.autoCreated = make(map[string]bool)
	a.mu <- struct{}{}

	var firstErr error
	for _, n := range names {
		if err := a.RemoveContainer(ctx, n, true); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Execute runs req.Command inside the target container described by
// req.AdapterOptions.(xecore.DockerOptions), auto-creating an ephemeral
// container first when AutoCreate.Enabled and the target is missing.
func (a *Adapter) Execute(ctx context.Context, req *xecore.Request) (*xecore.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	opts, ok := req.AdapterOptions.(xecore.DockerOptions)
	if !ok {
		return nil, &xecore.InvalidRequestError{Reason: "adaptercontainer requires xecore.DockerOptions"}
	}
	if a.engine == nil {
		a.engine = AutoDetect(ctx)
	}
	if a.engine == nil {
		return nil, &xecore.AdapterUnavailableError{Target: a.target(opts.Container), Reason: "no container engine (docker/podman) found on PATH"}
	}

	startedAt := time.Now()
	containerName := opts.Container

	autoRemove, err := a.ensureTarget(ctx, &containerName, opts)
	if err != nil {
		return nil, err
	}
	if autoRemove {
		defer func() { _ = a.RemoveContainer(context.Background(), containerName, true) }()
	}

	args := []string{"exec"}
	if req.Stdin != nil {
		args = append(args, "-i")
	}
	if opts.User != "" {
		args = append(args, "-u", opts.User)
	}
	if opts.Workdir != "" {
		args = append(args, "-w", opts.Workdir)
	}
	for k, v := range opts.Env {
		args = append(args, "-e", k+"="+v)
	}
	args = append(args, containerName)

	if req.Shell.Enabled {
		shell := req.Shell.Path
		if shell == "" {
			shell = "/bin/sh"
		}
		args = append(args, shell, "-c", req.Command)
	} else {
		args = append(args, req.Command)
		args = append(args, req.Args...)
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if req.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	a.logger.Debug("executing container command", "container", containerName, "command", req.Command)

	var stdin []byte
	if req.Stdin != nil {
		data, err := io.ReadAll(req.Stdin.Reader())
		if err != nil {
			return nil, &xecore.InvalidRequestError{Reason: "reading stdin: " + err.Error()}
		}
		stdin = data
	}

	out, err := a.engine.Runner().Run(runCtx, stdin, args...)
	duration := time.Since(startedAt)

	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, &xecore.TimeoutError{Target: a.target(containerName), Budget: req.Timeout, Elapsed: duration}
		}
		return nil, &xecore.ConnectionFailedError{Target: a.target(containerName), Err: err}
	}

	if int64(len(out.Stdout)) > req.EffectiveMaxOutput() {
		return nil, &xecore.OutputTooLargeError{Stream: "stdout", Limit: req.EffectiveMaxOutput()}
	}
	if int64(len(out.Stderr)) > req.EffectiveMaxOutput() {
		return nil, &xecore.OutputTooLargeError{Stream: "stderr", Limit: req.EffectiveMaxOutput()}
	}

	result := xecore.NewResult(xecore.TagDocker, containerName, req.Command, startedAt)
	result.Duration = duration
	result.Stdout = out.Stdout
	result.Stderr = out.Stderr
	result.ExitCode = out.ExitCode

	if result.ExitCode != 0 && !req.Nothrow {
		return result, &xecore.CommandFailedError{Target: a.target(containerName), Result: result}
	}
	return result, nil
}

// ensureTarget resolves containerName, auto-creating and starting an
// ephemeral container when the configured target does not exist and
// AutoCreate is enabled. Reports whether the caller should remove the
// container immediately after Execute returns (AutoRemove); when false but
// the container was still auto-created, it is tracked instead for
// Dispose-time cleanup.
func (a *Adapter) ensureTarget(ctx context.Context, containerName *string, opts xecore.DockerOptions) (autoRemove bool, err error) {
	if *containerName != "" {
		if _, err := a.Inspect(ctx, *containerName); err == nil {
			return false, nil
		}
		if !opts.AutoCreate.Enabled {
			return false, &xecore.TargetNotFoundError{Target: a.target(*containerName)}
		}
	} else if !opts.AutoCreate.Enabled {
		return false, &xecore.InvalidRequestError{Reason: "docker target requires either Container or AutoCreate.Enabled"}
	}

	image := opts.AutoCreate.Image
	if image == "" {
		return false, &xecore.InvalidRequestError{Reason: "AutoCreate requires an Image"}
	}

	ephemeralName := *containerName
	if ephemeralName == "" {
		ephemeralName = generateEphemeralName()
	}

	name, err := a.CreateContainer(ctx, ContainerSpec{
		Image:   image,
		Name:    ephemeralName,
		Command: []string{"sleep", "infinity"},
	}, time.Now())
	if err != nil {
		return false, err
	}
	if err := a.StartContainer(ctx, name); err != nil {
		return false, err
	}
	*containerName = name

	if opts.AutoCreate.AutoRemove {
		return true, nil
	}

	<-a.mu
	a.autoCreated[name] = true
	a.mu <- struct{}{}
	return false, nil
}
