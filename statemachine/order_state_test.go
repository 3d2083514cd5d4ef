package statemachine

import (
	"testing"

	"food-ordering-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, Permissive, p)

	p, err = ParsePolicy(" STRICT ")
	require.NoError(t, err)
	assert.Equal(t, Strict, p)

	_, err = ParsePolicy("forward-only")
	assert.Error(t, err)
}

func TestPermissiveAcceptsAnyValidStatus(t *testing.T) {
	m := New(Permissive)

	assert.NoError(t, m.CanTransition(models.StatusCompleted, models.StatusPending))
	assert.NoError(t, m.CanTransition(models.StatusCancelled, models.StatusReady))
	assert.ErrorIs(t, m.CanTransition(models.StatusPending, "Shipped"), ErrInvalidTransition)
	assert.Empty(t, m.TerminalStates())
}

func TestStrictTransitions(t *testing.T) {
	m := New(Strict)

	tests := []struct {
		name    string
		from    models.OrderStatus
		to      models.OrderStatus
		allowed bool
	}{
		{"pending_to_preparing", models.StatusPending, models.StatusPreparing, true},
		{"pending_to_cancelled", models.StatusPending, models.StatusCancelled, true},
		{"preparing_to_ready", models.StatusPreparing, models.StatusReady, true},
		{"ready_to_completed", models.StatusReady, models.StatusCompleted, true},
		{"pending_to_ready", models.StatusPending, models.StatusReady, false},
		{"completed_to_pending", models.StatusCompleted, models.StatusPending, false},
		{"cancelled_to_preparing", models.StatusCancelled, models.StatusPreparing, false},
		{"same_state", models.StatusReady, models.StatusReady, false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			err := m.CanTransition(testCase.from, testCase.to)
			if testCase.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}

	assert.ElementsMatch(t,
		[]models.OrderStatus{models.StatusCompleted, models.StatusCancelled},
		m.TerminalStates())
}
