// SPDX-License-Identifier: MPL-2.0

// Package adaptercontainer implements the container execution backend:
// exec into a running Docker or Podman container, with an optional
// auto-create/auto-remove fallback for a missing target, plus the full
// container lifecycle surface (create/start/stop/remove/list/inspect/
// logs/copy/stats/network/health-wait).
//
// Grounded on the teacher's internal/container.BaseCLIEngine, generalized
// from its Docker/Podman-specific arg builders to the smaller surface
// internal/clirunner exposes, and sharing that runner with
// internal/adaptercluster's kubectl integration.
package adaptercontainer
