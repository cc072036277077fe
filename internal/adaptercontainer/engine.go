// SPDX-License-Identifier: MPL-2.0

package adaptercontainer

import (
	"context"
	"os/exec"

	"github.com/xec-sh/xec/internal/clirunner"
)

// Engine is the CLI-backed container runtime contract both Docker and
// Podman satisfy, generalized from the teacher's BaseCLIEngine (which
// hard-codes the Docker/Podman split as two concrete structs sharing one
// embedded base) to an interface so Adapter can select an engine at
// construction time without a type switch.
type Engine interface {
	Name() string
	Available(ctx context.Context) bool
	Runner() *clirunner.Runner
}

// dockerEngine wraps the docker CLI.
type dockerEngine struct{ runner *clirunner.Runner }

// NewDockerEngine constructs a Docker-backed Engine. binaryPath defaults to
// "docker" resolved from PATH when empty.
func NewDockerEngine(binaryPath string) Engine {
	if binaryPath == "" {
		binaryPath = "docker"
	}
	return &dockerEngine{runner: clirunner.New("docker", binaryPath)}
}

func (e *dockerEngine) Name() string { return "docker" }
func (e *dockerEngine) Available(ctx context.Context) bool {
	return binaryAvailable(ctx, e.runner)
}
func (e *dockerEngine) Runner() *clirunner.Runner { return e.runner }

// podmanEngine wraps the podman CLI.
type podmanEngine struct{ runner *clirunner.Runner }

// NewPodmanEngine constructs a Podman-backed Engine. binaryPath defaults to
// "podman" resolved from PATH when empty.
func NewPodmanEngine(binaryPath string) Engine {
	if binaryPath == "" {
		binaryPath = "podman"
	}
	return &podmanEngine{runner: clirunner.New("podman", binaryPath)}
}

func (e *podmanEngine) Name() string { return "podman" }
func (e *podmanEngine) Available(ctx context.Context) bool {
	return binaryAvailable(ctx, e.runner)
}
func (e *podmanEngine) Runner() *clirunner.Runner { return e.runner }

func binaryAvailable(ctx context.Context, r *clirunner.Runner) bool {
	if _, err := exec.LookPath(r.BinaryPath()); err != nil {
		return false
	}
	out, err := r.Run(ctx, nil, "version", "--format", "{{.Server.Version}}")
	return err == nil && out.ExitCode == 0
}

// AutoDetect returns the first available engine, preferring Docker, or nil
// if neither binary is reachable.
func AutoDetect(ctx context.Context) Engine {
	d := NewDockerEngine("")
	if d.Available(ctx) {
		return d
	}
	p := NewPodmanEngine("")
	if p.Available(ctx) {
		return p
	}
	return nil
}
