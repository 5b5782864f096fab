package usecase

import (
	"context"
	"testing"

	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewAnalyzer_StalledProjects(t *testing.T) {
	tests := []struct {
		name     string
		children []domain.Status
		want     bool
	}{
		{"only waiting and someday children", []domain.Status{domain.StatusWaiting, domain.StatusSomeday, domain.StatusWaiting}, true},
		{"one next child", []domain.Status{domain.StatusWaiting, domain.StatusNext}, false},
		{"no children", nil, false},
		{"only deleted children", []domain.Status{domain.StatusDeleted}, false},
		{"done children only", []domain.Status{domain.StatusDone}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			e := newEnv(t)
			items := []domain.Item{project("p1", "Renovate")}
			for i, s := range tt.children {
				items = append(items, child(task("c"+string(rune('a'+i)), "child", s), "p1"))
			}
			e.seed(items...)
			analyzer := NewReviewAnalyzer(e.store, e.refs, e.clock)

			// Execute
			stalled, err := analyzer.StalledProjects(context.Background())

			// Assert
			require.NoError(t, err)
			if tt.want {
				assert.Equal(t, []string{"p1"}, ids(stalled))
			} else {
				assert.Empty(t, stalled)
			}
		})
	}
}

func TestReviewAnalyzer_StalledProjects_SkipsClosedProjects(t *testing.T) {
	e := newEnv(t)
	done := project("p1", "Finished")
	done.Status = domain.StatusDone
	e.seed(done, child(task("t1", "w", domain.StatusWaiting), "p1"))
	analyzer := NewReviewAnalyzer(e.store, e.refs, e.clock)

	stalled, err := analyzer.StalledProjects(context.Background())

	require.NoError(t, err)
	assert.Empty(t, stalled)
}

func TestReviewAnalyzer_Subtasks(t *testing.T) {
	e := newEnv(t)
	e.seed(
		project("p1", "Trip"),
		child(task("t1", "Book", domain.StatusNext), "p1"),
		child(task("t2", "Pack", domain.StatusDeleted), "p1"),
		child(task("t3", "Visa", domain.StatusWaiting), "p1"),
		task("t4", "Other", domain.StatusNext),
	)
	analyzer := NewReviewAnalyzer(e.store, e.refs, e.clock)

	subtasks, err := analyzer.Subtasks(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t3"}, ids(subtasks))
}

func TestReviewAnalyzer_NextActionsByContext(t *testing.T) {
	// Setup
	e := newEnv(t)
	e.refs.Contexts["c1"] = domain.Context{ID: "c1", Name: "Office", SortOrder: 2}
	e.refs.Contexts["c2"] = domain.Context{ID: "c2", Name: "Home", SortOrder: 1}
	e.refs.Contexts["c3"] = domain.Context{ID: "c3", Name: "Empty", SortOrder: 0}
	withContext := func(item domain.Item, contextID string, priority float64) domain.Item {
		item.ContextID = contextID
		item.Priority = priority
		return item
	}
	e.seed(
		withContext(task("t1", "Email", domain.StatusNext), "c1", 100),
		withContext(task("t2", "Dishes", domain.StatusNext), "c2", 50),
		withContext(task("t3", "Report", domain.StatusNext), "c1", 300),
		withContext(task("t4", "Loose", domain.StatusNext), "", 10),
		withContext(task("t5", "Dangling", domain.StatusNext), "gone", 20),
		withContext(task("t6", "Waiting", domain.StatusWaiting), "c1", 999),
		withContext(task("t7", "Deleted", domain.StatusDeleted), "c1", 999),
	)
	analyzer := NewReviewAnalyzer(e.store, e.refs, e.clock)

	// Execute
	buckets, err := analyzer.NextActionsByContext(context.Background())

	// Assert
	require.NoError(t, err)
	require.Len(t, buckets, 3)
	assert.Equal(t, "Home", buckets[0].Label)
	assert.Equal(t, []string{"t2"}, ids(buckets[0].Items))
	assert.Equal(t, "Office", buckets[1].Label)
	require.NotNil(t, buckets[1].Context)
	assert.Equal(t, "c1", buckets[1].Context.ID)
	assert.Equal(t, []string{"t3", "t1"}, ids(buckets[1].Items))
	assert.Equal(t, NoContextLabel, buckets[2].Label)
	assert.Nil(t, buckets[2].Context)
	assert.Equal(t, []string{"t5", "t4"}, ids(buckets[2].Items))
}

func TestReviewAnalyzer_NextActionsByContext_WithoutReferences(t *testing.T) {
	e := newEnv(t)
	item := task("t1", "Anything", domain.StatusNext)
	item.ContextID = "c1"
	e.seed(item)
	analyzer := NewReviewAnalyzer(e.store, nil, e.clock)

	buckets, err := analyzer.NextActionsByContext(context.Background())

	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, NoContextLabel, buckets[0].Label)
}

func TestReviewAnalyzer_OverdueAndDueToday(t *testing.T) {
	// Setup: today is 2025-06-10
	e := newEnv(t)
	due := func(item domain.Item, d domain.Date, priority float64) domain.Item {
		item.DueDate = d
		item.Priority = priority
		return item
	}
	e.seed(
		due(task("t1", "Week late", domain.StatusNext), domain.NewDate(2025, 6, 3), 0),
		due(task("t2", "Day late", domain.StatusWaiting), domain.NewDate(2025, 6, 9), 0),
		due(task("t3", "Done late", domain.StatusDone), domain.NewDate(2025, 6, 1), 0),
		due(task("t4", "Today low", domain.StatusNext), domain.NewDate(2025, 6, 10), 100),
		due(task("t5", "Today high", domain.StatusInbox), domain.NewDate(2025, 6, 10), 900),
		due(task("t6", "Tomorrow", domain.StatusNext), domain.NewDate(2025, 6, 11), 0),
		task("t7", "No date", domain.StatusNext),
		due(task("t8", "Deleted late", domain.StatusDeleted), domain.NewDate(2025, 6, 2), 0),
	)
	analyzer := NewReviewAnalyzer(e.store, e.refs, e.clock)

	// Execute
	late, err := analyzer.Overdue(context.Background())
	require.NoError(t, err)
	today, err := analyzer.DueToday(context.Background())
	require.NoError(t, err)

	// Assert
	assert.Equal(t, []string{"t1", "t2"}, ids(late))
	assert.Equal(t, []string{"t5", "t4"}, ids(today))
}

func TestReviewAnalyzer_StoreError(t *testing.T) {
	e := newEnv(t)
	e.rows.ReadErr = domain.ErrExternalService
	analyzer := NewReviewAnalyzer(e.store, e.refs, e.clock)

	_, err := analyzer.Overdue(context.Background())
	assert.Error(t, err)
	_, err = analyzer.StalledProjects(context.Background())
	assert.Error(t, err)
}
