package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name   string
		from   Status
		to     Status
		expect bool
	}{
		// From inbox (clarification)
		{"inbox -> next", StatusInbox, StatusNext, true},
		{"inbox -> waiting", StatusInbox, StatusWaiting, true},
		{"inbox -> scheduled", StatusInbox, StatusScheduled, true},
		{"inbox -> someday", StatusInbox, StatusSomeday, true},
		{"inbox -> reference", StatusInbox, StatusReference, true},
		{"inbox -> done", StatusInbox, StatusDone, true},
		{"inbox -> deleted", StatusInbox, StatusDeleted, true},

		// Between clarified states
		{"next -> waiting", StatusNext, StatusWaiting, true},
		{"waiting -> next", StatusWaiting, StatusNext, true},
		{"someday -> scheduled", StatusSomeday, StatusScheduled, true},
		{"reference -> next", StatusReference, StatusNext, true},
		{"next -> inbox", StatusNext, StatusInbox, false},

		// Completion and soft delete
		{"next -> done", StatusNext, StatusDone, true},
		{"waiting -> deleted", StatusWaiting, StatusDeleted, true},
		{"done -> deleted", StatusDone, StatusDeleted, true},

		// Terminal states
		{"done -> next", StatusDone, StatusNext, false},
		{"done -> inbox", StatusDone, StatusInbox, false},
		{"deleted -> inbox", StatusDeleted, StatusInbox, false},
		{"deleted -> done", StatusDeleted, StatusDone, false},

		// Same status
		{"next -> next", StatusNext, StatusNext, true},
		{"deleted -> deleted", StatusDeleted, StatusDeleted, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatus_CanTransitionTo_UnknownStatus(t *testing.T) {
	assert.False(t, Status("archived").CanTransitionTo(StatusNext))
}

func TestStatus_RecoveryTarget(t *testing.T) {
	target, ok := StatusDone.RecoveryTarget()
	assert.True(t, ok)
	assert.Equal(t, StatusNext, target)

	target, ok = StatusDeleted.RecoveryTarget()
	assert.True(t, ok)
	assert.Equal(t, StatusInbox, target)

	_, ok = StatusNext.RecoveryTarget()
	assert.False(t, ok)
}

func TestStatus_IsTerminal(t *testing.T) {
	for _, s := range AllStatuses() {
		t.Run(string(s), func(t *testing.T) {
			want := s == StatusDone || s == StatusDeleted
			assert.Equal(t, want, s.IsTerminal())
		})
	}
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus(" Next ")
	require.NoError(t, err)
	assert.Equal(t, StatusNext, got)

	_, err = ParseStatus("archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.ErrorIs(t, err, ErrValidation)
}
