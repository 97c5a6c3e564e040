package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elinasafina23/EBR/errors"
)

func TestTransitionEffects(t *testing.T) {
	m := NewMachine()

	cases := []struct {
		target Status
		effect Effect
	}{
		{StatusPlanned, Effect{}},
		{StatusInProgress, Effect{SetStartedAt: true}},
		{StatusCompleted, Effect{SetCompletedAt: true, PublishRemote: true}},
		{StatusHalted, Effect{SetCompletedAt: true}},
		{StatusAborted, Effect{SetCompletedAt: true}},
	}

	for _, tc := range cases {
		t.Run(string(tc.target), func(t *testing.T) {
			effect, err := m.Transition(StatusPlanned, tc.target)
			require.NoError(t, err)
			assert.Equal(t, tc.effect, effect)
		})
	}
}

func TestPermissiveMachineAcceptsEveryPair(t *testing.T) {
	m := NewMachine()
	all := []Status{StatusPlanned, StatusInProgress, StatusCompleted, StatusHalted, StatusAborted}

	for _, from := range all {
		for _, to := range all {
			_, err := m.Transition(from, to)
			assert.NoError(t, err, "%s -> %s should be accepted in permissive mode", from, to)
		}
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	m := NewMachine()

	_, err := m.Transition(StatusPlanned, Status("bogus"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalidRequest(err))
}

func TestStrictMachineForwardOnly(t *testing.T) {
	m := NewStrictMachine()

	_, err := m.Transition(StatusPlanned, StatusInProgress)
	assert.NoError(t, err)

	_, err = m.Transition(StatusInProgress, StatusCompleted)
	assert.NoError(t, err)

	_, err = m.Transition(StatusInProgress, StatusHalted)
	assert.NoError(t, err)

	// Jumping straight to completed and re-opening are both rejected
	_, err = m.Transition(StatusPlanned, StatusCompleted)
	require.Error(t, err)
	assert.True(t, errors.IsInvariant(err))

	_, err = m.Transition(StatusCompleted, StatusInProgress)
	require.Error(t, err)
	assert.True(t, errors.IsInvariant(err))
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusHalted.Terminal())
	assert.True(t, StatusAborted.Terminal())
	assert.False(t, StatusPlanned.Terminal())
	assert.False(t, StatusInProgress.Terminal())

	assert.True(t, StatusPlanned.Valid())
	assert.False(t, Status("bogus").Valid())
}
