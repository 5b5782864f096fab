package domain

import (
	_ "embed"
	"path/filepath"
	"time"
)

//go:embed config_template.toml
var configTemplateContent string

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings  []string        `toml:"-"`
	Store     StoreConfig     `toml:"store"`
	Scoring   ScoringConfig   `toml:"scoring"`
	Batch     BatchConfig     `toml:"batch"`
	Log       LogConfig       `toml:"log"`
	Migration MigrationConfig `toml:"migration"`
}

// StoreConfig holds storage settings from [store] section.
// Relative paths are resolved against the data directory.
type StoreConfig struct {
	Table       string        `toml:"table,omitempty"`     // Item table file (default: items.csv)
	Settings    string        `toml:"settings,omitempty"`  // Settings file (default: settings.yaml)
	Reference   string        `toml:"reference,omitempty"` // Context/area database (default: reference.db)
	Timezone    string        `toml:"timezone,omitempty"`  // IANA zone for dates and timestamps (default: Local)
	LockTimeout time.Duration `toml:"lock_timeout,omitempty"`
}

// ScoringScheme selects the priority algorithm.
type ScoringScheme string

const (
	SchemeMultiplicative ScoringScheme = "multiplicative"
	SchemeAdditive       ScoringScheme = "additive"
)

// IsValid returns true if the scheme is a known value.
func (s ScoringScheme) IsValid() bool {
	return s == SchemeMultiplicative || s == SchemeAdditive
}

// ScoringConfig holds priority engine settings from [scoring] section.
type ScoringConfig struct {
	Scheme         ScoringScheme         `toml:"scheme,omitempty"`
	Labels         LabelThresholds       `toml:"labels"` // zero = scheme default
	Multiplicative MultiplicativeWeights `toml:"multiplicative"`
	Additive       AdditiveWeights       `toml:"additive"`
}

// MultiplicativeWeights are the constants of the multiplicative scheme.
type MultiplicativeWeights struct {
	StarBonus          float64 `toml:"star_bonus,omitempty"`
	ContextBonus       float64 `toml:"context_bonus,omitempty"`
	EnergyBonus        float64 `toml:"energy_bonus,omitempty"`
	PartialEnergyBonus float64 `toml:"partial_energy_bonus,omitempty"`
	AgePerDay          float64 `toml:"age_per_day,omitempty"`
	AgeCap             float64 `toml:"age_cap,omitempty"`
}

// AdditiveWeights are the maximum points of each factor of the additive scheme.
// The defaults sum to 100.
type AdditiveWeights struct {
	Due               float64 `toml:"due,omitempty"`
	ProjectImportance float64 `toml:"project_importance,omitempty"`
	Context           float64 `toml:"context,omitempty"`
	Energy            float64 `toml:"energy,omitempty"`
	TimeFit           float64 `toml:"time_fit,omitempty"`
	Age               float64 `toml:"age,omitempty"`
	FanOut            float64 `toml:"fan_out,omitempty"`
}

// LabelThresholds are the lower bounds of each priority label.
type LabelThresholds struct {
	Critical float64 `toml:"critical,omitempty"`
	High     float64 `toml:"high,omitempty"`
	Medium   float64 `toml:"medium,omitempty"`
}

// IsZero returns true if no threshold is set.
func (l LabelThresholds) IsZero() bool {
	return l == LabelThresholds{}
}

// BatchConfig holds batch processing settings from [batch] section.
type BatchConfig struct {
	ChunkSize int           `toml:"chunk_size,omitempty"` // Rows written per flush
	Budget    time.Duration `toml:"budget,omitempty"`     // Wall-clock budget per invocation
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // Log level: debug, info, warn, error
}

// MigrationConfig holds layout migration settings from [migration] section.
type MigrationConfig struct {
	Snapshot    bool `toml:"snapshot"` // Snapshot the table before Clear and Delete
	SnapshotSet bool `toml:"-"`        // True if Snapshot was explicitly set in config
}

// Default configuration values.
const (
	DefaultLogLevel    = "info"
	DefaultTableFile   = "items.csv"
	DefaultSettings    = "settings.yaml"
	DefaultReference   = "reference.db"
	DefaultLockTimeout = 2 * time.Second
	DefaultChunkSize   = 50
	DefaultBatchBudget = 25 * time.Second
)

// Default multiplicative constants.
const (
	DefaultStarBonus          = 50.0
	DefaultContextBonus       = 30.0
	DefaultEnergyBonus        = 20.0
	DefaultPartialEnergyBonus = 10.0
	DefaultAgePerDay          = 0.5
	DefaultAgeCap             = 15.0
)

// Directory and file names for gtdsheet.
const (
	AppDirName     = "gtdsheet"    // Directory name under XDG homes
	ConfigFileName = "config.toml" // Config file name
	LogsDirName    = "logs"        // Log directory inside the data dir
	LogFileName    = "gtd.log"     // Log file inside the logs dir
	GitDirName     = "snapshots"   // Snapshot repository inside the data dir
)

// GlobalConfigDir returns the global config directory.
// configHome is typically XDG_CONFIG_HOME or ~/.config (resolved by caller).
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, AppDirName)
}

// GlobalConfigPath returns the global config path.
func GlobalConfigPath(configHome string) string {
	return filepath.Join(GlobalConfigDir(configHome), ConfigFileName)
}

// DataDir returns the default data directory.
// dataHome is typically XDG_DATA_HOME or ~/.local/share (resolved by caller).
func DataDir(dataHome string) string {
	return filepath.Join(dataHome, AppDirName)
}

// DataConfigPath returns the data-dir config path.
func DataConfigPath(dataDir string) string {
	return filepath.Join(dataDir, ConfigFileName)
}

// LogPath returns the log file path for a data directory.
func LogPath(dataDir string) string {
	return filepath.Join(dataDir, LogsDirName, LogFileName)
}

// ResolvePath resolves p against dataDir unless it is absolute.
func ResolvePath(dataDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dataDir, p)
}

// DefaultMultiplicativeWeights returns the canonical constants.
func DefaultMultiplicativeWeights() MultiplicativeWeights {
	return MultiplicativeWeights{
		StarBonus:          DefaultStarBonus,
		ContextBonus:       DefaultContextBonus,
		EnergyBonus:        DefaultEnergyBonus,
		PartialEnergyBonus: DefaultPartialEnergyBonus,
		AgePerDay:          DefaultAgePerDay,
		AgeCap:             DefaultAgeCap,
	}
}

// DefaultAdditiveWeights returns weights that sum to 100.
func DefaultAdditiveWeights() AdditiveWeights {
	return AdditiveWeights{
		Due:               30,
		ProjectImportance: 15,
		Context:           15,
		Energy:            10,
		TimeFit:           10,
		Age:               10,
		FanOut:            10,
	}
}

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Table:       DefaultTableFile,
			Settings:    DefaultSettings,
			Reference:   DefaultReference,
			LockTimeout: DefaultLockTimeout,
		},
		Scoring: ScoringConfig{
			Scheme:         SchemeMultiplicative,
			Multiplicative: DefaultMultiplicativeWeights(),
			Additive:       DefaultAdditiveWeights(),
		},
		Batch: BatchConfig{
			ChunkSize: DefaultChunkSize,
			Budget:    DefaultBatchBudget,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		Migration: MigrationConfig{
			Snapshot: true,
		},
	}
}

// Location returns the configured time zone, falling back to Local.
func (c *Config) Location() *time.Location {
	if c.Store.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Store.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ConfigInfo describes a config file on disk.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}

// ConfigManager inspects and creates config files.
type ConfigManager interface {
	GetGlobalConfigInfo() ConfigInfo
	GetDataConfigInfo() ConfigInfo
	InitGlobalConfig() error
	InitDataConfig() error
}

// ConfigTemplate returns the commented default config written by init.
func ConfigTemplate() string {
	return configTemplateContent
}
