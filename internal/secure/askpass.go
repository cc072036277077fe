// SPDX-License-Identifier: MPL-2.0

package secure

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RemoteFileWriter is the subset of an SFTP-capable transport the askpass
// session needs to materialise and destroy its helper script. Implemented
// by the SSH adapter's sftp client wrapper; kept minimal here so this
// package stays independent of any transport library.
type RemoteFileWriter interface {
	WriteFile(ctx context.Context, path string, content []byte, mode uint32) error
	Remove(ctx context.Context, path string) error
}

// Session is a single secure-askpass sudo invocation: the remote helper
// script, the environment variable name the script reads the password from,
// and the writer used to materialise/destroy the script. A Session is
// scoped to exactly one sudo-wrapped command.
type Session struct {
	ID                  string
	RemoteScriptPath    string
	PasswordEnvVarName  string
	CreatedAt           time.Time
	writer              RemoteFileWriter
	removed             bool
	mu                  sync.Mutex
}

// NewSession materialises a new askpass helper script on the target and
// returns a Session. The caller MUST call Cleanup, on both the success and
// failure paths, so the helper never outlives the command that created it.
func NewSession(ctx context.Context, writer RemoteFileWriter, password string) (*Session, error) {
	id := uuid.NewString()
	s := &Session{
		ID:                 id,
		RemoteScriptPath:   fmt.Sprintf("/tmp/askpass-%s.sh", id),
		PasswordEnvVarName: fmt.Sprintf("SUDO_ASKPASS_%s", envSafe(id)),
		CreatedAt:          time.Now(),
		writer:             writer,
	}

	script := fmt.Sprintf("#!/bin/sh\nexec printf '%%s\\n' \"$%s\"\n", s.PasswordEnvVarName)
	if err := writer.WriteFile(ctx, s.RemoteScriptPath, []byte(script), 0700); err != nil {
		return nil, fmt.Errorf("write askpass helper: %w", err)
	}

	return s, nil
}

// Cleanup removes the remote helper script. It is idempotent: calling it
// more than once is a no-op past the first successful removal, and a
// failed removal is attempted again on the next call.
func (s *Session) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removed {
		return nil
	}
	if err := s.writer.Remove(ctx, s.RemoteScriptPath); err != nil {
		return err
	}
	s.removed = true
	return nil
}

// envSafe replaces hyphens in a uuid so it is safe to splice into a shell
// environment-variable name.
func envSafe(id string) string {
	out := make([]byte, len(id))
	for i := 0; i < len(id); i++ {
		if id[i] == '-' {
			out[i] = '_'
		} else {
			out[i] = id[i]
		}
	}
	return string(out)
}

// Handler tracks every askpass Session it has created so Cleanup can be
// called unconditionally from Close/dispose paths even if individual
// command-level cleanups were skipped due to a panic recovery elsewhere.
// Scoped to one adapter instance (or one sudo invocation, at the caller's
// discretion).
type Handler struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewHandler creates an empty Handler.
func NewHandler() *Handler {
	return &Handler{sessions: make(map[string]*Session)}
}

// Open creates and tracks a new askpass Session.
func (h *Handler) Open(ctx context.Context, writer RemoteFileWriter, password string) (*Session, error) {
	s, err := NewSession(ctx, writer, password)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()
	return s, nil
}

// Close cleans up s and stops tracking it.
func (h *Handler) Close(ctx context.Context, s *Session) error {
	h.mu.Lock()
	delete(h.sessions, s.ID)
	h.mu.Unlock()
	return s.Cleanup(ctx)
}

// Cleanup removes every still-live helper script owned by this handler.
// Safe to call from Adapter.Dispose even if individual sessions were
// already cleaned up.
func (h *Handler) Cleanup(ctx context.Context) error {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	var firstErr error
	for _, s := range sessions {
		if err := s.Cleanup(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
