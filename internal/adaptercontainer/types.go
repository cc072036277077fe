// SPDX-License-Identifier: MPL-2.0

package adaptercontainer

import "time"

// ContainerState mirrors the spec's created -> running -> stopped -> removed
// lifecycle; removed is terminal.
type ContainerState string

const (
	StateCreated ContainerState = "created"
	StateRunning ContainerState = "running"
	StateStopped ContainerState = "stopped"
	StateRemoved ContainerState = "removed"
)

// HealthcheckSpec describes a container healthcheck to attach at create
// time. An empty Test disables health checking.
type HealthcheckSpec struct {
	Test     []string
	Interval time.Duration
	Timeout  time.Duration
	Retries  int
}

// ContainerSpec is the full createContainer argument set from the spec:
// image, optional name (auto-generated if empty), env, port/volume
// bindings, workdir, user, labels, network, healthcheck, and command
// override.
type ContainerSpec struct {
	Image       string
	Name        string
	Env         map[string]string
	Ports       []string // "hostPort:containerPort[/proto]"
	Volumes     map[string]string // hostPath -> containerPath
	Workdir     string
	User        string
	Labels      map[string]string
	Network     string
	Healthcheck *HealthcheckSpec
	Command     []string
}

// ContainerInfo is the result of ListContainers: a lightweight summary, not
// the engine's full inspect JSON (which Inspect returns as a map).
// ListContainers fills Name, Image, and State only; AutoCreatedBy and
// Labels are left empty.
type ContainerInfo struct {
	Name          string
	Image         string
	State         ContainerState
	AutoCreatedBy string
	Labels        map[string]string
}

// Stats is a single-sample resource usage reading.
type Stats struct {
	CPUPercent    float64
	MemoryUsage   int64
	MemoryLimit   int64
	NetworkRxByte int64
	NetworkTxByte int64
}
