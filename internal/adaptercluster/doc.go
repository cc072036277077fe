// SPDX-License-Identifier: MPL-2.0

// Package adaptercluster executes commands inside Kubernetes pods by
// shelling out to kubectl (or a compatible client such as oc), mirroring
// the way internal/adaptercontainer drives docker/podman: both adapters
// share internal/clirunner for subprocess plumbing rather than linking
// k8s.io/client-go, since the spec describes the cluster adapter purely in
// terms of the client binary's exec/cp subcommands.
package adaptercluster
