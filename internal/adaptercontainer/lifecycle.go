// SPDX-License-Identifier: MPL-2.0

package adaptercontainer

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xec-sh/xec/internal/xecore"
)

const healthPollInterval = 500 * time.Millisecond

// generateName produces the spec's auto-generated container name format for
// CreateContainer's own optional-name path: xec-<unix-timestamp>-<random-suffix>.
func generateName(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("xec-%d-%s", now.Unix(), suffix)
}

// generateEphemeralName produces the distinct name pattern the auto-create
// policy pins for containers it spins up on the caller's behalf:
// temp-ush-<random>, separate from generateName's xec-<timestamp>-<suffix>
// pattern used when CreateContainer itself is called with no name.
func generateEphemeralName() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return "temp-ush-" + suffix
}

// CreateContainer creates (but does not start) a container per spec,
// auto-generating a name when spec.Name is empty.
func (a *Adapter) CreateContainer(ctx context.Context, spec ContainerSpec, now time.Time) (string, error) {
	name := spec.Name
	if name == "" {
		name = generateName(now)
	}

	args := []string{"create", "--name", name}
	if spec.Workdir != "" {
		args = append(args, "-w", spec.Workdir)
	}
	if spec.User != "" {
		args = append(args, "-u", spec.User)
	}
	if spec.Network != "" {
		args = append(args, "--network", spec.Network)
	}
	for k, v := range spec.Env {
		args = append(args, "-e", k+"="+v)
	}
	for k, v := range spec.Labels {
		args = append(args, "-l", k+"="+v)
	}
	for host, container := range spec.Volumes {
		args = append(args, "-v", host+":"+container)
	}
	if spec.Healthcheck != nil && len(spec.Healthcheck.Test) > 0 {
		args = append(args, "--health-cmd", strings.Join(spec.Healthcheck.Test, " "))
		if spec.Healthcheck.Interval > 0 {
			args = append(args, "--health-interval", spec.Healthcheck.Interval.String())
		}
		if spec.Healthcheck.Timeout > 0 {
			args = append(args, "--health-timeout", spec.Healthcheck.Timeout.String())
		}
		if spec.Healthcheck.Retries > 0 {
			args = append(args, "--health-retries", strconv.Itoa(spec.Healthcheck.Retries))
		}
	}

	portFlags, err := portArgs(spec.Ports)
	if err != nil {
		return "", &xecore.InvalidRequestError{Reason: err.Error()}
	}
	args = append(args, portFlags...)

	args = append(args, spec.Image)
	args = append(args, spec.Command...)

	out, err := a.engine.Runner().Run(ctx, nil, args...)
	if err != nil {
		return "", &xecore.AdapterUnavailableError{Target: a.target(""), Reason: err.Error()}
	}
	if out.ExitCode != 0 {
		return "", &xecore.InvalidImageError{Image: spec.Image, Err: fmt.Errorf("%s", strings.TrimSpace(out.Stderr))}
	}
	return name, nil
}

// StartContainer starts an existing container.
func (a *Adapter) StartContainer(ctx context.Context, name string) error {
	return a.simpleOp(ctx, "start", name)
}

// StopContainer stops a running container.
func (a *Adapter) StopContainer(ctx context.Context, name string) error {
	return a.simpleOp(ctx, "stop", name)
}

// RemoveContainer removes a container, optionally forcing removal of a
// still-running one.
func (a *Adapter) RemoveContainer(ctx context.Context, name string, force bool) error {
	args := []string{"rm"}
	if force {
		args = append(args, "-f")
	}
	args = append(args, name)
	out, err := a.engine.Runner().Run(ctx, nil, args...)
	if err != nil {
		return &xecore.AdapterUnavailableError{Target: a.target(name), Reason: err.Error()}
	}
	if out.ExitCode != 0 {
		return &xecore.TargetNotFoundError{Target: a.target(name)}
	}
	return nil
}

func (a *Adapter) simpleOp(ctx context.Context, op, name string) error {
	out, err := a.engine.Runner().Run(ctx, nil, op, name)
	if err != nil {
		return &xecore.AdapterUnavailableError{Target: a.target(name), Reason: err.Error()}
	}
	if out.ExitCode != 0 {
		return &xecore.TargetNotFoundError{Target: a.target(name)}
	}
	return nil
}

// ListContainers lists containers, optionally including stopped ones.
func (a *Adapter) ListContainers(ctx context.Context, all bool) ([]ContainerInfo, error) {
	args := []string{"ps", "--format", "{{.Names}}\t{{.Image}}\t{{.State}}"}
	if all {
		args = append(args, "-a")
	}
	out, err := a.engine.Runner().Run(ctx, nil, args...)
	if err != nil {
		return nil, &xecore.AdapterUnavailableError{Target: a.target(""), Reason: err.Error()}
	}

	var infos []ContainerInfo
	for _, line := range strings.Split(strings.TrimSpace(out.Stdout), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			continue
		}
		infos = append(infos, ContainerInfo{
			Name:  fields[0],
			Image: fields[1],
			State: ContainerState(strings.ToLower(fields[2])),
		})
	}
	return infos, nil
}

// Inspect returns the engine's raw inspect JSON decoded into a generic map,
// since Docker's and Podman's inspect schemas diverge beyond the fields
// ContainerInfo models.
func (a *Adapter) Inspect(ctx context.Context, name string) (map[string]any, error) {
	out, err := a.engine.Runner().Run(ctx, nil, "inspect", name)
	if err != nil {
		return nil, &xecore.AdapterUnavailableError{Target: a.target(name), Reason: err.Error()}
	}
	if out.ExitCode != 0 {
		return nil, &xecore.TargetNotFoundError{Target: a.target(name)}
	}

	var docs []map[string]any
	if err := json.Unmarshal([]byte(out.Stdout), &docs); err != nil || len(docs) == 0 {
		return nil, &xecore.TargetNotFoundError{Target: a.target(name)}
	}
	return docs[0], nil
}

// Logs returns the container's full current log output.
func (a *Adapter) Logs(ctx context.Context, name string) (string, error) {
	out, err := a.engine.Runner().RunCombined(ctx, "logs", name)
	if err != nil {
		return "", &xecore.AdapterUnavailableError{Target: a.target(name), Reason: err.Error()}
	}
	return string(out), nil
}

// StreamLogs invokes onChunk for each line of the container's existing log
// output (non-blocking: equivalent to `logs` without -f).
func (a *Adapter) StreamLogs(ctx context.Context, name string, onChunk func(line string)) error {
	logs, err := a.Logs(ctx, name)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(logs, "\n") {
		if line != "" {
			onChunk(line)
		}
	}
	return nil
}

// Follow streams the container's log output as it is produced until ctx is
// canceled, invoking onChunk per line.
func (a *Adapter) Follow(ctx context.Context, name string, onChunk func(line string)) error {
	cmd := a.engine.Runner().CreateCommand(ctx, "logs", "-f", name)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &xecore.AdapterUnavailableError{Target: a.target(name), Reason: err.Error()}
	}
	if err := cmd.Start(); err != nil {
		return &xecore.AdapterUnavailableError{Target: a.target(name), Reason: err.Error()}
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		onChunk(scanner.Text())
	}
	_ = cmd.Wait()
	return nil
}

// CopyTo copies a local file or directory into the container.
func (a *Adapter) CopyTo(ctx context.Context, name, localPath, remotePath string) error {
	out, err := a.engine.Runner().Run(ctx, nil, "cp", localPath, name+":"+remotePath)
	if err != nil {
		return &xecore.AdapterUnavailableError{Target: a.target(name), Reason: err.Error()}
	}
	if out.ExitCode != 0 {
		return &xecore.TransferFailedError{Source: localPath, Dest: remotePath, Err: fmt.Errorf("%s", strings.TrimSpace(out.Stderr))}
	}
	return nil
}

// CopyFrom copies a file or directory out of the container to the local
// filesystem.
func (a *Adapter) CopyFrom(ctx context.Context, name, remotePath, localPath string) error {
	out, err := a.engine.Runner().Run(ctx, nil, "cp", name+":"+remotePath, localPath)
	if err != nil {
		return &xecore.AdapterUnavailableError{Target: a.target(name), Reason: err.Error()}
	}
	if out.ExitCode != 0 {
		return &xecore.TransferFailedError{Source: remotePath, Dest: localPath, Err: fmt.Errorf("%s", strings.TrimSpace(out.Stderr))}
	}
	return nil
}

// Stats returns a single resource-usage sample for the container.
func (a *Adapter) Stats(ctx context.Context, name string) (*Stats, error) {
	out, err := a.engine.Runner().Run(ctx, nil, "stats", "--no-stream", "--format",
		"{{.CPUPerc}}\t{{.MemUsage}}\t{{.NetIO}}", name)
	if err != nil {
		return nil, &xecore.AdapterUnavailableError{Target: a.target(name), Reason: err.Error()}
	}
	if out.ExitCode != 0 {
		return nil, &xecore.TargetNotFoundError{Target: a.target(name)}
	}
	return parseStatsLine(strings.TrimSpace(out.Stdout)), nil
}

// GetIPAddress returns the container's IP address on the named network (or
// the default bridge network when network is empty).
func (a *Adapter) GetIPAddress(ctx context.Context, name, network string) (string, error) {
	format := `{{.NetworkSettings.IPAddress}}`
	if network != "" {
		format = fmt.Sprintf(`{{(index .NetworkSettings.Networks %q).IPAddress}}`, network)
	}
	out, err := a.engine.Runner().Run(ctx, nil, "inspect", "--format", format, name)
	if err != nil {
		return "", &xecore.AdapterUnavailableError{Target: a.target(name), Reason: err.Error()}
	}
	if out.ExitCode != 0 {
		return "", &xecore.TargetNotFoundError{Target: a.target(name)}
	}
	return strings.TrimSpace(out.Stdout), nil
}

// WaitForHealthy polls the container's health status at a fixed cadence
// until it reports "healthy" or timeout elapses, raising
// HealthCheckTimeoutError in the latter case.
func (a *Adapter) WaitForHealthy(ctx context.Context, name string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(healthPollInterval)
	defer ticker.Stop()

	for {
		out, err := a.engine.Runner().Run(ctx, nil, "inspect", "--format", "{{.State.Health.Status}}", name)
		if err == nil && out.ExitCode == 0 && strings.TrimSpace(out.Stdout) == "healthy" {
			return nil
		}
		if time.Now().After(deadline) {
			return &xecore.HealthCheckTimeoutError{Container: name, Timeout: timeout}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func parseStatsLine(line string) *Stats {
	fields := strings.Split(line, "\t")
	s := &Stats{}
	if len(fields) > 0 {
		s.CPUPercent, _ = strconv.ParseFloat(strings.TrimSuffix(fields[0], "%"), 64)
	}
	return s
}
