// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/runoshun/gtdsheet/internal/infra/config"
	"github.com/runoshun/gtdsheet/internal/infra/ids"
	"github.com/runoshun/gtdsheet/internal/infra/logging"
	"github.com/runoshun/gtdsheet/internal/infra/refstore"
	"github.com/runoshun/gtdsheet/internal/infra/settings"
	"github.com/runoshun/gtdsheet/internal/infra/sheet"
	"github.com/runoshun/gtdsheet/internal/infra/snapshot"
	"github.com/runoshun/gtdsheet/internal/itemstore"
	"github.com/runoshun/gtdsheet/internal/usecase"
)

// LocksDirName is the directory of per-item lock files inside the data dir.
const LocksDirName = "locks"

// Config holds the resolved data paths.
type Config struct {
	DataDir       string // Root data directory
	TablePath     string // Item table (CSV)
	SettingsPath  string // Settings (YAML)
	ReferencePath string // Contexts and areas (SQLite)
	SnapshotDir   string // Bare git repository for migration snapshots
	LockDir       string // Per-item lock files
}

// newConfig resolves the data paths from the loaded configuration.
func newConfig(dataDir string, appConfig *domain.Config) Config {
	return Config{
		DataDir:       dataDir,
		TablePath:     domain.ResolvePath(dataDir, appConfig.Store.Table),
		SettingsPath:  domain.ResolvePath(dataDir, appConfig.Store.Settings),
		ReferencePath: domain.ResolvePath(dataDir, appConfig.Store.Reference),
		SnapshotDir:   filepath.Join(dataDir, domain.GitDirName),
		LockDir:       filepath.Join(dataDir, LocksDirName),
	}
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Rows          domain.RowStore
	Settings      domain.SettingsStore
	Refs          domain.ReferenceRepository
	IDs           domain.IDGenerator
	Clock         domain.Clock
	Logger        domain.Logger
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager

	// openSnapshots opens the snapshot repository on first use.
	openSnapshots func() (domain.SnapshotCatalog, error)

	// Pointer fields
	Items     *itemstore.Store
	AppConfig *domain.Config

	// initializers create the table, the settings file and the reference DB.
	initializers []domain.StoreInitializer
	closers      []func() error

	// Configuration
	Config Config
}

// New creates a new Container for the data directory (empty = default).
// The table layout is resolved once here and handed to the item store.
func New(ctx context.Context, dataDir string) (*Container, error) {
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}

	configLoader := config.NewLoader(dataDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := newConfig(dataDir, appConfig)

	logger := logging.New(dataDir, logging.ParseLevel(appConfig.Log.Level))
	for _, w := range appConfig.Warnings {
		logger.Warn("", "config", w)
	}

	loc := appConfig.Location()
	table := sheet.New(cfg.TablePath, loc)
	settingsStore := settings.New(cfg.SettingsPath)
	refs := refstore.New(cfg.ReferencePath)
	clock := domain.RealClock{Location: loc}
	idGen := ids.Generator{}

	layout := itemstore.ResolveLayout(ctx, table, logger)
	if table.IsInitialized() {
		header, err := table.ReadHeader(ctx)
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		if err := itemstore.CheckHeader(header, layout); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.TablePath, err)
		}
	}

	items := itemstore.New(itemstore.Deps{
		Rows:        table,
		Initializer: table,
		Locker:      sheet.NewFileLocker(cfg.LockDir, appConfig.Store.LockTimeout),
		Scorer:      domain.NewScorer(appConfig.Scoring),
		Settings:    settingsStore,
		Clock:       clock,
		IDs:         idGen,
		Logger:      logger,
		Location:    loc,
		Layout:      layout,
	})

	snapshotDir := cfg.SnapshotDir
	openSnapshots := sync.OnceValues(func() (domain.SnapshotCatalog, error) {
		return snapshot.Open(snapshotDir)
	})

	return &Container{
		Rows:          table,
		Settings:      settingsStore,
		Refs:          refs,
		IDs:           idGen,
		Clock:         clock,
		Logger:        logger,
		ConfigLoader:  configLoader,
		ConfigManager: config.NewManager(dataDir),
		openSnapshots: openSnapshots,
		Items:         items,
		AppConfig:     appConfig,
		initializers:  []domain.StoreInitializer{table, settingsStore, refs},
		closers:       []func() error{refs.Close, logger.Close},
		Config:        cfg,
	}, nil
}

// Deps holds the collaborators of a test container.
// Fields are ordered to minimize memory padding.
type Deps struct {
	Rows          domain.RowStore
	Settings      domain.SettingsStore
	Refs          domain.ReferenceRepository
	IDs           domain.IDGenerator
	Clock         domain.Clock
	Logger        domain.Logger
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager
	Snapshots     domain.SnapshotCatalog // nil = snapshots unavailable
	AppConfig     *domain.Config         // nil = defaults
	Initializers  []domain.StoreInitializer
	Config        Config
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(ctx context.Context, d Deps) *Container {
	appConfig := d.AppConfig
	if appConfig == nil {
		appConfig = domain.NewDefaultConfig()
	}
	logger := d.Logger
	if logger == nil {
		logger = domain.NopLogger{}
	}
	layout := itemstore.ResolveLayout(ctx, d.Rows, logger)
	items := itemstore.New(itemstore.Deps{
		Rows:     d.Rows,
		Locker:   itemstore.NewMemLocker(appConfig.Store.LockTimeout),
		Scorer:   domain.NewScorer(appConfig.Scoring),
		Settings: d.Settings,
		Clock:    d.Clock,
		IDs:      d.IDs,
		Logger:   logger,
		Layout:   layout,
	})
	snapshots := d.Snapshots
	return &Container{
		Rows:          d.Rows,
		Settings:      d.Settings,
		Refs:          d.Refs,
		IDs:           d.IDs,
		Clock:         d.Clock,
		Logger:        logger,
		ConfigLoader:  d.ConfigLoader,
		ConfigManager: d.ConfigManager,
		openSnapshots: func() (domain.SnapshotCatalog, error) {
			if snapshots == nil {
				return nil, errors.New("snapshots unavailable")
			}
			return snapshots, nil
		},
		Items:        items,
		AppConfig:    appConfig,
		initializers: d.Initializers,
		Config:       d.Config,
	}
}

// Close releases the reference database and the log file.
func (c *Container) Close() error {
	var errs []error
	for _, closeFn := range c.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

// BatchOptions returns the configured batch bounds resuming at cursor.
func (c *Container) BatchOptions(cursor int) domain.BatchOptions {
	return domain.BatchOptions{
		Cursor:    cursor,
		ChunkSize: c.AppConfig.Batch.ChunkSize,
		Budget:    c.AppConfig.Batch.Budget,
	}
}

// UseCase factory methods

// InitStoreUseCase returns a new InitStore use case.
func (c *Container) InitStoreUseCase() *usecase.InitStore {
	return usecase.NewInitStore(c.Logger, c.initializers...)
}

// CreateItemUseCase returns a new CreateItem use case.
func (c *Container) CreateItemUseCase() *usecase.CreateItem {
	return usecase.NewCreateItem(c.Items, c.Refs)
}

// UpdateItemUseCase returns a new UpdateItem use case.
func (c *Container) UpdateItemUseCase() *usecase.UpdateItem {
	return usecase.NewUpdateItem(c.Items, c.Refs)
}

// CompleteItemUseCase returns a new CompleteItem use case.
func (c *Container) CompleteItemUseCase() *usecase.CompleteItem {
	return usecase.NewCompleteItem(c.Items)
}

// DeleteItemUseCase returns a new DeleteItem use case.
func (c *Container) DeleteItemUseCase() *usecase.DeleteItem {
	return usecase.NewDeleteItem(c.Items, c.Logger)
}

// ConvertItemUseCase returns a new ConvertItem use case.
func (c *Container) ConvertItemUseCase() *usecase.ConvertItem {
	return usecase.NewConvertItem(c.Items)
}

// ReopenItemUseCase returns a new ReopenItem use case.
func (c *Container) ReopenItemUseCase() *usecase.ReopenItem {
	return usecase.NewReopenItem(c.Items)
}

// RestoreItemUseCase returns a new RestoreItem use case.
func (c *Container) RestoreItemUseCase() *usecase.RestoreItem {
	return usecase.NewRestoreItem(c.Items)
}

// ShowItemUseCase returns a new ShowItem use case.
func (c *Container) ShowItemUseCase() *usecase.ShowItem {
	return usecase.NewShowItem(c.Items, c.Refs, c.Settings, c.Items.Scorer(), c.Clock)
}

// ListItemsUseCase returns a new ListItems use case.
func (c *Container) ListItemsUseCase() *usecase.ListItems {
	return usecase.NewListItems(c.Items)
}

// RecomputePrioritiesUseCase returns a new RecomputePriorities use case.
func (c *Container) RecomputePrioritiesUseCase() *usecase.RecomputePriorities {
	return usecase.NewRecomputePriorities(c.Items, c.Settings)
}

// SetFocusUseCase returns a new SetFocus use case.
func (c *Container) SetFocusUseCase() *usecase.SetFocus {
	return usecase.NewSetFocus(c.Items, c.Settings, c.Refs, c.Logger)
}

// ReviewAnalyzer returns a new ReviewAnalyzer.
func (c *Container) ReviewAnalyzer() *usecase.ReviewAnalyzer {
	return usecase.NewReviewAnalyzer(c.Items, c.Refs, c.Clock)
}

// WeeklyReviewUseCase returns a new WeeklyReview use case.
func (c *Container) WeeklyReviewUseCase() *usecase.WeeklyReview {
	return usecase.NewWeeklyReview(c.Items, c.Refs, c.Clock)
}

// MarkReviewedUseCase returns a new MarkReviewed use case.
func (c *Container) MarkReviewedUseCase() *usecase.MarkReviewed {
	return usecase.NewMarkReviewed(c.Items)
}

// MigrateLayoutUseCase returns a new MigrateLayout use case. The snapshot
// repository is opened only when snapshots are enabled.
func (c *Container) MigrateLayoutUseCase() (*usecase.MigrateLayout, error) {
	if !c.AppConfig.Migration.Snapshot {
		return usecase.NewMigrateLayout(c.Rows, nil, c.Clock, c.Logger, false), nil
	}
	snaps, err := c.openSnapshots()
	if err != nil {
		return nil, err
	}
	return usecase.NewMigrateLayout(c.Rows, snaps, c.Clock, c.Logger, true), nil
}

// SnapshotsUseCase returns a new Snapshots use case.
func (c *Container) SnapshotsUseCase() (*usecase.Snapshots, error) {
	snaps, err := c.openSnapshots()
	if err != nil {
		return nil, err
	}
	return usecase.NewSnapshots(snaps), nil
}

// ExportDoneUseCase returns a new ExportDone use case.
func (c *Container) ExportDoneUseCase() *usecase.ExportDone {
	return usecase.NewExportDone(c.Items)
}

// ImportMLOUseCase returns a new ImportMLO use case.
func (c *Container) ImportMLOUseCase() *usecase.ImportMLO {
	return usecase.NewImportMLO(c.Items, c.Clock, c.Logger)
}

// CompactMLOUseCase returns a new CompactMLO use case.
func (c *Container) CompactMLOUseCase() *usecase.CompactMLO {
	return usecase.NewCompactMLO()
}

// ManageContextsUseCase returns a new ManageContexts use case.
func (c *Container) ManageContextsUseCase() *usecase.ManageContexts {
	return usecase.NewManageContexts(c.Refs, c.Items, c.IDs)
}

// ManageAreasUseCase returns a new ManageAreas use case.
func (c *Container) ManageAreasUseCase() *usecase.ManageAreas {
	return usecase.NewManageAreas(c.Refs, c.Items, c.IDs)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.ConfigLoader)
}

// ShowConfigTemplateUseCase returns a new ShowConfigTemplate use case.
func (c *Container) ShowConfigTemplateUseCase() *usecase.ShowConfigTemplate {
	return usecase.NewShowConfigTemplate()
}

// ShowLogsUseCase returns a new ShowLogs use case.
func (c *Container) ShowLogsUseCase() *usecase.ShowLogs {
	return usecase.NewShowLogs(c.Config.DataDir)
}
