package app

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandoff_DeliversOnce(t *testing.T) {
	var h Handoff[int]

	_, ok, err := h.Poll()
	assert.False(t, ok)
	assert.NoError(t, err)

	release := make(chan struct{})
	require.NoError(t, h.Start(func() (int, error) {
		<-release
		return 42, nil
	}))
	assert.True(t, h.Busy())
	assert.ErrorIs(t, h.Start(func() (int, error) { return 0, nil }), ErrBusy)

	_, ok, _ = h.Poll()
	assert.False(t, ok, "result must not be visible before the task finishes")

	close(release)
	var got int
	assert.Eventually(t, func() bool {
		v, ok, err := h.Poll()
		if ok {
			got = v
			assert.NoError(t, err)
		}
		return ok
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 42, got)

	_, ok, _ = h.Poll()
	assert.False(t, ok, "a result is delivered exactly once")
	assert.False(t, h.Busy())
}

func TestHandoff_UncollectedResultBlocksStart(t *testing.T) {
	var h Handoff[string]
	boom := errors.New("boom")
	require.NoError(t, h.Start(func() (string, error) { return "", boom }))

	assert.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.ready
	}, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, h.Start(func() (string, error) { return "x", nil }), ErrBusy)

	_, ok, err := h.Poll()
	assert.True(t, ok)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, h.Start(func() (string, error) { return "x", nil }))
}
