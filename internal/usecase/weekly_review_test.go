package usecase

import (
	"context"
	"testing"

	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeeklyReview_Execute(t *testing.T) {
	// Setup
	e := newEnv(t)
	today := domain.DateOf(testNow)

	fresh := project("p1", "Reviewed this week")
	fresh.LastReviewed = today.AddDays(-3)
	stale := project("p2", "Reviewed long ago")
	stale.LastReviewed = today.AddDays(-ReviewInterval)
	never := project("p3", "Never reviewed")
	closed := project("p4", "Finished")
	closed.Status = domain.StatusDone

	waiting := task("t2", "Hear back from Ann", domain.StatusWaiting)
	late := task("t3", "Late", domain.StatusNext)
	late.DueDate = today.AddDays(-1)

	e.seed(
		task("t1", "Capture", domain.StatusInbox),
		waiting,
		late,
		fresh, stale, never, closed,
		child(task("t4", "Step", domain.StatusNext), "p1"),
		child(task("t5", "Step", domain.StatusNext), "p2"),
	)
	uc := NewWeeklyReview(e.store, e.refs, e.clock)

	// Execute
	out, err := uc.Execute(context.Background(), WeeklyReviewInput{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, today, out.Today)
	assert.Equal(t, []string{"t1"}, ids(out.Inbox))
	assert.Equal(t, []string{"t2"}, ids(out.Waiting))
	assert.Equal(t, []string{"t3"}, ids(out.Overdue))
	assert.Equal(t, []string{"p2", "p3"}, ids(out.NeedsReview))
	assert.Empty(t, out.Stalled, "p3 has no children and p1, p2 have next actions")
	assert.NotEmpty(t, out.NextActions)
}

func TestWeeklyReview_StoreError(t *testing.T) {
	e := newEnv(t)
	e.rows.Missing = true

	_, err := NewWeeklyReview(e.store, nil, e.clock).Execute(context.Background(), WeeklyReviewInput{})

	assert.ErrorIs(t, err, domain.ErrNotInitialized)
}

func TestNeedsReview(t *testing.T) {
	today := domain.DateOf(testNow)
	tests := []struct {
		name     string
		reviewed domain.Date
		want     bool
	}{
		{"never", domain.Date{}, true},
		{"today", today, false},
		{"six days", today.AddDays(-6), false},
		{"seven days", today.AddDays(-7), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &domain.Item{LastReviewed: tt.reviewed}
			assert.Equal(t, tt.want, needsReview(item, today))
		})
	}
}

func TestMarkReviewed_Execute(t *testing.T) {
	// Setup
	e := newEnv(t)
	e.seed(project("p1", "Garden"))

	// Execute
	out, err := NewMarkReviewed(e.store).Execute(context.Background(), MarkReviewedInput{ID: "p1"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.DateOf(testNow), out.Item.LastReviewed)
	stored, err := e.store.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.DateOf(testNow), stored.LastReviewed)
}

func TestMarkReviewed_NotFound(t *testing.T) {
	e := newEnv(t)

	_, err := NewMarkReviewed(e.store).Execute(context.Background(), MarkReviewedInput{ID: "nope"})

	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}
