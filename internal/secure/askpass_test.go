// SPDX-License-Identifier: MPL-2.0

package secure

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memWriter is an in-memory RemoteFileWriter stand-in for a real SFTP
// transport, letting askpass tests assert the "no askpass-* file remains"
// invariant without a live SSH target.
type memWriter struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemWriter() *memWriter { return &memWriter{files: make(map[string][]byte)} }

func (w *memWriter) WriteFile(ctx context.Context, path string, content []byte, mode uint32) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[path] = content
	return nil
}

func (w *memWriter) Remove(ctx context.Context, path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, path)
	return nil
}

func (w *memWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.files)
}

func TestSession_CleanupRemovesHelperScript(t *testing.T) {
	w := newMemWriter()
	s, err := NewSession(context.Background(), w, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, 1, w.count())

	require.NoError(t, s.Cleanup(context.Background()))
	assert.Equal(t, 0, w.count())
}

func TestSession_CleanupIsIdempotent(t *testing.T) {
	w := newMemWriter()
	s, err := NewSession(context.Background(), w, "hunter2")
	require.NoError(t, err)

	require.NoError(t, s.Cleanup(context.Background()))
	require.NoError(t, s.Cleanup(context.Background()))
	assert.Equal(t, 0, w.count())
}

func TestHandler_CleanupRemovesAllLiveSessions(t *testing.T) {
	w := newMemWriter()
	h := NewHandler()

	_, err := h.Open(context.Background(), w, "pw1")
	require.NoError(t, err)
	_, err = h.Open(context.Background(), w, "pw2")
	require.NoError(t, err)
	assert.Equal(t, 2, w.count())

	require.NoError(t, h.Cleanup(context.Background()))
	assert.Equal(t, 0, w.count())
}

func TestHandler_CloseRemovesOneSession(t *testing.T) {
	w := newMemWriter()
	h := NewHandler()

	s1, err := h.Open(context.Background(), w, "pw1")
	require.NoError(t, err)
	_, err = h.Open(context.Background(), w, "pw2")
	require.NoError(t, err)

	require.NoError(t, h.Close(context.Background(), s1))
	assert.Equal(t, 1, w.count())
}
