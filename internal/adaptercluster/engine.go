// SPDX-License-Identifier: MPL-2.0

package adaptercluster

import (
	"context"
	"os/exec"

	"github.com/xec-sh/xec/internal/clirunner"
)

// clientFor builds a clirunner.Runner for the configured (or PATH-resolved)
// kubectl-compatible client binary, optionally overlaying a KUBECONFIG
// environment variable when a kubeconfig path is supplied.
func clientFor(binaryPath, kubeconfig string) *clirunner.Runner {
	if binaryPath == "" {
		binaryPath = "kubectl"
	}
	opts := []clirunner.Option{}
	if kubeconfig != "" {
		opts = append(opts, clirunner.WithEnv("KUBECONFIG", kubeconfig))
	}
	return clirunner.New("kubectl", binaryPath, opts...)
}

// clientAvailable reports whether the client binary is resolvable on PATH
// and responds to a lightweight version probe.
func clientAvailable(ctx context.Context, r *clirunner.Runner) bool {
	if _, err := exec.LookPath(r.BinaryPath()); err != nil {
		return false
	}
	out, err := r.Run(ctx, nil, "version", "--client", "--output=yaml")
	return err == nil && out.ExitCode == 0
}
