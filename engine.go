// SPDX-License-Identifier: MPL-2.0

package xec

import (
	"context"
	"os"

	"github.com/charmbracelet/log"

	"github.com/xec-sh/xec/internal/adaptercluster"
	"github.com/xec-sh/xec/internal/adaptercontainer"
	"github.com/xec-sh/xec/internal/adapterlocal"
	"github.com/xec-sh/xec/internal/adapterreg"
	"github.com/xec-sh/xec/internal/adapterssh"
	"github.com/xec-sh/xec/internal/xecore"
)

// Engine owns the registry of backend adapters and is the entry point for
// building executions against any target. Construct one with New and
// Dispose it when done to release pooled connections, ephemeral
// containers, and askpass helpers.
type Engine struct {
	registry *adapterreg.Registry
}

// EngineOption configures Engine construction.
type EngineOption func(*engineConfig)

type engineConfig struct {
	logger          *log.Logger
	containerEngine adaptercontainer.Engine
}

// WithLogger sets the *log.Logger every built-in adapter logs through. The
// default writes to os.Stderr, following internal/sshserver/server.go's
// logging setup in the teacher.
func WithLogger(logger *log.Logger) EngineOption {
	return func(c *engineConfig) { c.logger = logger }
}

// WithContainerEngine pins the container adapter to a specific engine
// (docker or podman) instead of auto-detecting one at first use.
func WithContainerEngine(engine adaptercontainer.Engine) EngineOption {
	return func(c *engineConfig) { c.containerEngine = engine }
}

// New constructs an Engine with the local, SSH, container, and cluster
// adapters registered and the registry frozen, per spec's "write-once at
// construction" resource model.
func New(opts ...EngineOption) *Engine {
	cfg := &engineConfig{
		logger: log.NewWithOptions(os.Stderr, log.Options{Prefix: "xec"}),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	reg := adapterreg.New()
	reg.Register(xecore.TagLocal, adapterlocal.New(cfg.logger.WithPrefix("xec:local")))
	reg.Register(xecore.TagSSH, adapterssh.New(cfg.logger.WithPrefix("xec:ssh")))
	reg.Register(xecore.TagDocker, adaptercontainer.New(cfg.containerEngine, cfg.logger.WithPrefix("xec:docker")))
	reg.Register(xecore.TagKubernetes, adaptercluster.New(cfg.logger.WithPrefix("xec:kubernetes")))
	reg.Freeze()

	return &Engine{registry: reg}
}

// Local returns a Builder targeting the local host.
func (e *Engine) Local() *Builder {
	return newBuilder(e.registry, LocalOptions{})
}

// SSH returns a Builder targeting a remote host over SSH.
func (e *Engine) SSH(opts SSHOptions) *Builder {
	return newBuilder(e.registry, opts)
}

// Docker returns a Builder targeting a Docker/Podman container.
func (e *Engine) Docker(opts DockerOptions) *Builder {
	return newBuilder(e.registry, opts)
}

// K8s returns a Builder targeting a pod in a Kubernetes-compatible
// cluster. pod overrides opts.Pod so the common case (only a pod name
// matters) doesn't require repeating it in opts.
func (e *Engine) K8s(pod string, opts KubernetesOptions) *Builder {
	opts.Pod = pod
	return newBuilder(e.registry, opts)
}

// Dispose releases every resource every registered adapter owns: pooled
// SSH connections, ephemeral containers, and live askpass sessions. Safe
// to call once; calling Execute on any Builder derived from this Engine
// afterward is undefined.
func (e *Engine) Dispose(ctx context.Context) error {
	var firstErr error
	for _, a := range e.registry.All() {
		if err := a.Dispose(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
