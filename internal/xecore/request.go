// SPDX-License-Identifier: MPL-2.0

package xecore

import "time"

// ShellSelection models the three-way shell field from the spec: direct
// exec (false), the target's default shell (true), or a specific
// interpreter path (string).
type ShellSelection struct {
	// Enabled is true when a shell should wrap Command (either the default
	// shell, when Path is empty, or the interpreter at Path).
	Enabled bool
	Path    string
}

// ShellDefault requests direct exec with no shell wrapping.
func ShellDefault() ShellSelection { return ShellSelection{} }

// ShellTrue requests the target's default shell.
func ShellTrue() ShellSelection { return ShellSelection{Enabled: true} }

// ShellPath requests a specific shell/interpreter binary.
func ShellPath(path string) ShellSelection { return ShellSelection{Enabled: true, Path: path} }

// Request is the immutable, fully-resolved description of one command
// execution. Built only by Builder; adapters never mutate a Request, only
// read it.
type Request struct {
	Command string
	Args    []string
	Shell   ShellSelection
	Env     map[string]string
	Cwd     string
	Stdin   StdinSource
	Timeout time.Duration // zero means no timeout
	Nothrow bool

	AdapterOptions AdapterOptions
	Retry          RetryPolicy

	MaxOutput int64 // zero uses DefaultMaxCapturedOutput
}

// DefaultMaxCapturedOutput bounds captured stdout/stderr per stream when a
// Request does not set MaxOutput.
const DefaultMaxCapturedOutput int64 = 10 << 20 // 10 MiB

// EffectiveMaxOutput returns r.MaxOutput, or DefaultMaxCapturedOutput if
// unset.
func (r *Request) EffectiveMaxOutput() int64 {
	if r.MaxOutput > 0 {
		return r.MaxOutput
	}
	return DefaultMaxCapturedOutput
}

// Validate checks the invariants that must hold before dispatch: a non-nil
// AdapterOptions, a non-empty command, and (per spec §3) env keys that are
// unique by construction (guaranteed by map[string]string, so nothing to
// check there beyond non-nil).
func (r *Request) Validate() error {
	if r.AdapterOptions == nil {
		return &InvalidRequestError{Reason: "adapter options must be set"}
	}
	if r.Command == "" {
		return &InvalidRequestError{Reason: "command must not be empty"}
	}
	if r.Timeout < 0 {
		return &InvalidRequestError{Reason: "timeout must not be negative"}
	}
	return nil
}
