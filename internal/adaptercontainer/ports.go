// SPDX-License-Identifier: MPL-2.0

package adaptercontainer

import (
	"fmt"

	"github.com/docker/go-connections/nat"
)

// portArgs validates and reformats "hostPort:containerPort[/proto]" specs
// into docker/podman `-p` flag arguments, using the same nat.ParsePortSpec
// the Docker daemon itself uses to parse -p, so malformed specs are
// rejected before the engine binary is even invoked.
func portArgs(specs []string) ([]string, error) {
	args := make([]string, 0, len(specs)*2)
	for _, spec := range specs {
		mappings, err := nat.ParsePortSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("invalid port binding %q: %w", spec, err)
		}
		for _, m := range mappings {
			flag := string(m.Port)
			if m.Binding.HostPort != "" {
				flag = m.Binding.HostPort + ":" + flag
			}
			if m.Binding.HostIP != "" {
				flag = m.Binding.HostIP + ":" + flag
			}
			args = append(args, "-p", flag)
		}
	}
	return args, nil
}
