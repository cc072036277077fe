// SPDX-License-Identifier: MPL-2.0

package adapterreg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xec-sh/xec/internal/xecore"
)

type stubAdapter struct{}

func (stubAdapter) Execute(ctx context.Context, req *xecore.Request) (*xecore.Result, error) {
	return nil, nil
}
func (stubAdapter) IsAvailable(ctx context.Context) bool { return true }
func (stubAdapter) Capabilities() xecore.Descriptor      { return xecore.Descriptor{Tag: xecore.TagLocal} }
func (stubAdapter) Dispose(ctx context.Context) error    { return nil }

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := New()
	r.Register(xecore.TagLocal, stubAdapter{})
	r.Freeze()

	a, ok := r.Get(xecore.TagLocal)
	require.True(t, ok)
	assert.NotNil(t, a)

	_, ok = r.Get(xecore.TagSSH)
	assert.False(t, ok)
}

func TestRegistry_RegisterAfterFreezePanics(t *testing.T) {
	r := New()
	r.Freeze()
	assert.Panics(t, func() { r.Register(xecore.TagLocal, stubAdapter{}) })
}

func TestRegistry_DuplicateRegisterPanics(t *testing.T) {
	r := New()
	r.Register(xecore.TagLocal, stubAdapter{})
	assert.Panics(t, func() { r.Register(xecore.TagLocal, stubAdapter{}) })
}

func TestRegistry_All(t *testing.T) {
	r := New()
	r.Register(xecore.TagLocal, stubAdapter{})
	r.Register(xecore.TagSSH, stubAdapter{})
	assert.Len(t, r.All(), 2)
}
