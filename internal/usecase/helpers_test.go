package usecase

import (
	"testing"
	"time"

	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/runoshun/gtdsheet/internal/itemstore"
	"github.com/runoshun/gtdsheet/internal/testutil"
)

// testNow is a Tuesday morning.
var testNow = time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)

// env wires a real item store over in-memory mocks.
type env struct {
	store    *itemstore.Store
	rows     *testutil.MockRowStore
	clock    *testutil.MockClock
	settings *testutil.MockSettingsStore
	refs     *testutil.MockReferenceRepository
	logger   *testutil.MockLogger
	codec    domain.Codec
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWithLayout(t, domain.CurrentLayout())
}

func newEnvWithLayout(t *testing.T, layout domain.Layout) *env {
	t.Helper()
	rows := testutil.NewMockRowStore(layout)
	e := &env{
		rows:     rows,
		clock:    &testutil.MockClock{NowTime: testNow},
		settings: testutil.NewMockSettingsStore(),
		refs:     testutil.NewMockReferenceRepository(),
		logger:   &testutil.MockLogger{},
		codec:    domain.NewCodec(layout),
	}
	e.store = itemstore.New(itemstore.Deps{
		Rows:        rows,
		Initializer: &testutil.MockStoreInitializer{Store: rows},
		Locker:      &testutil.MockLocker{},
		Scorer:      domain.NewScorer(domain.ScoringConfig{}),
		Settings:    e.settings,
		Clock:       e.clock,
		IDs:         &testutil.MockIDGenerator{},
		Logger:      e.logger,
		Location:    time.UTC,
		Layout:      layout,
	})
	return e
}

// seed appends items to the table as stored rows.
func (e *env) seed(items ...domain.Item) {
	for _, item := range items {
		e.rows.AddItem(e.codec, item)
	}
}

// task builds an open task with defaults.
func task(id, title string, status domain.Status) domain.Item {
	return domain.Item{
		ID:          id,
		Title:       title,
		Status:      status,
		Type:        domain.TypeTask,
		Energy:      domain.EnergyMedium,
		Importance:  domain.DefaultImportance,
		Urgency:     domain.DefaultUrgency,
		CreatedDate: testNow,
	}
}

// project builds an open project with defaults.
func project(id, title string) domain.Item {
	p := task(id, title, domain.StatusNext)
	p.Type = domain.TypeProject
	return p
}

func child(item domain.Item, parentID string) domain.Item {
	item.ParentID = parentID
	return item
}

func ids(items []*domain.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}
