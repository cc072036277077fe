// SPDX-License-Identifier: MPL-2.0

package xecore

import "time"

// Result is the immutable outcome of one execution. Every field is always
// populated (never nil/undefined): missing streams default to the empty
// string rather than being omitted.
type Result struct {
	ExitCode  int
	Stdout    string
	Stderr    string
	Signal    string // empty unless the process was terminated by a signal
	Duration  time.Duration
	StartedAt time.Time
	Adapter   AdapterTag
	Target    string // container name, "pod/namespace", "ssh@host:port", or "local"
	Command   string // echo of the dispatched command string
}

// Success reports whether the execution completed with exit code 0.
func (r *Result) Success() bool { return r.ExitCode == 0 }

// NewResult is the common constructor adapters use to stamp the fields
// every Result shares before execution starts. Callers set Duration to
// time.Since(StartedAt) once the underlying process finishes, and fill in
// ExitCode/Stdout/Stderr/Signal from the outcome.
func NewResult(adapter AdapterTag, target, command string, startedAt time.Time) *Result {
	return &Result{
		Adapter:   adapter,
		Target:    target,
		Command:   command,
		StartedAt: startedAt,
	}
}
