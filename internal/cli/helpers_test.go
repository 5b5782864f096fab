package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/runoshun/gtdsheet/internal/app"
	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/runoshun/gtdsheet/internal/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// testNow is a Tuesday morning.
var testNow = time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)

// testEnv is a container over in-memory mocks.
type testEnv struct {
	c         *app.Container
	rows      *testutil.MockRowStore
	settings  *testutil.MockSettingsStore
	refs      *testutil.MockReferenceRepository
	snapshots *testutil.MockSnapshotter
	manager   *testutil.MockConfigManager
	init      *testutil.MockStoreInitializer
	codec     domain.Codec
}

func newTestEnv(t *testing.T, seed ...domain.Item) *testEnv {
	t.Helper()
	return newTestEnvWithLayout(t, domain.CurrentLayout(), seed...)
}

func newTestEnvWithLayout(t *testing.T, layout domain.Layout, seed ...domain.Item) *testEnv {
	t.Helper()
	rows := testutil.NewMockRowStore(layout)
	codec := domain.NewCodec(layout)
	for _, item := range seed {
		rows.AddItem(codec, item)
	}
	e := &testEnv{
		rows:      rows,
		settings:  testutil.NewMockSettingsStore(),
		refs:      testutil.NewMockReferenceRepository(),
		snapshots: &testutil.MockSnapshotter{},
		manager:   testutil.NewMockConfigManager(),
		init:      &testutil.MockStoreInitializer{Store: rows},
		codec:     codec,
	}
	e.c = app.NewWithDeps(context.Background(), app.Deps{
		Rows:          rows,
		Settings:      e.settings,
		Refs:          e.refs,
		IDs:           &testutil.MockIDGenerator{},
		Clock:         &testutil.MockClock{NowTime: testNow},
		Logger:        &testutil.MockLogger{},
		ConfigLoader:  testutil.NewMockConfigLoader(),
		ConfigManager: e.manager,
		Snapshots:     e.snapshots,
		Initializers:  []domain.StoreInitializer{e.init},
		Config:        app.Config{DataDir: t.TempDir()},
	})
	return e
}

// item reads an item back through the store.
func (e *testEnv) item(t *testing.T, id string) *domain.Item {
	t.Helper()
	item, err := e.c.Items.GetByID(context.Background(), id)
	require.NoError(t, err)
	return item
}

// run executes cmd with args and returns stdout.
func run(cmd *cobra.Command, args ...string) (string, error) {
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
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

// project builds an open project.
func project(id, title string) domain.Item {
	p := task(id, title, domain.StatusNext)
	p.Type = domain.TypeProject
	return p
}

// child sets the parent of an item.
func child(item domain.Item, parentID string) domain.Item {
	item.ParentID = parentID
	return item
}

// runRoot executes a fresh root command. Flag values stick to a command
// after it runs, so every invocation gets its own tree.
func (e *testEnv) runRoot(args ...string) (string, error) {
	return run(NewRootCommand(e.c, "test"), args...)
}
