package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrap(ErrNotFound, "batch B1")
	require.NotNil(t, err)

	assert.True(t, Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "batch B1")
	assert.Contains(t, err.Error(), "not found")
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(New("boom")))
	assert.True(t, IsNotFound(ErrNotFound))
	assert.True(t, IsNotFound(Wrap(ErrNotFound, "outer")))
	assert.True(t, IsNotFound(Wrap(Wrap(ErrNotFound, "inner"), "outer")))
}

func TestIsUnauthorized(t *testing.T) {
	assert.False(t, IsUnauthorized(nil))
	assert.False(t, IsUnauthorized(ErrNotFound))
	assert.True(t, IsUnauthorized(WrapUnauthorized(New("401 from QMIB"), "publish")))
}

func TestNewNotFoundf(t *testing.T) {
	err := NewNotFoundf("batch record %s not found", "B42")

	assert.True(t, Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "B42")
}

func TestNewInvariantf(t *testing.T) {
	err := NewInvariantf("batch %s has status %s, expected completed", "B1", "planned")

	assert.True(t, IsInvariant(err))
	assert.False(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "expected completed")
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrNotFound, ErrInvalidRequest, ErrUnauthorized, ErrInvariant, ErrServiceUnavailable}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, Is(a, b), "sentinel %v should not match %v", a, b)
		}
	}
}
