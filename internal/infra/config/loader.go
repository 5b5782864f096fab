// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/gtdsheet/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	dataDir       string // Path to the data directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/gtdsheet)
}

// NewLoader creates a new Loader.
func NewLoader(dataDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(dataDir, globalConfDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// DefaultDataDir returns $GTD_DATA_DIR, or the gtdsheet directory under
// XDG_DATA_HOME (default ~/.local/share).
func DefaultDataDir() string {
	if dir := os.Getenv("GTD_DATA_DIR"); dir != "" {
		return dir
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return domain.DataDir(dataHome)
}

// Load returns the merged configuration (data dir + global).
// The data dir config takes precedence over the global config.
func (l *Loader) Load() (*domain.Config, error) {
	global, err := l.LoadGlobal()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	local, err := l.LoadData()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	// Merge: default <- global <- data dir (later takes precedence)
	base := domain.NewDefaultConfig()
	if global != nil {
		base = mergeConfigs(base, global)
	}
	if local != nil {
		base = mergeConfigs(base, local)
	}
	return base, nil
}

// LoadGlobal returns only the global configuration.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(filepath.Join(l.globalConfDir, domain.ConfigFileName))
}

// LoadData returns only the data directory configuration.
func (l *Loader) LoadData() (*domain.Config, error) {
	if l.dataDir == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(domain.DataConfigPath(l.dataDir))
}

// loadFile loads a configuration from a file.
func (l *Loader) loadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return convertRawToDomainConfig(raw), nil
}

// section walks one table of the raw config, collecting warnings for
// unknown keys and values of the wrong type.
type section struct {
	values   map[string]any
	name     string
	warnings *[]string
}

func (s section) warn(format string, args ...any) {
	*s.warnings = append(*s.warnings, fmt.Sprintf(format, args...))
}

func (s section) each(fn func(key string, v any) bool) {
	for k, v := range s.values {
		if !fn(k, v) {
			s.warn("unknown key in [%s]: %s", s.name, k)
		}
	}
}

func (s section) str(k string, v any, dst *string) {
	if str, ok := v.(string); ok {
		*dst = str
		return
	}
	s.warn("invalid value for %s in [%s]: expected string", k, s.name)
}

func (s section) number(k string, v any, dst *float64) {
	switch n := v.(type) {
	case int64:
		*dst = float64(n)
	case float64:
		*dst = n
	default:
		s.warn("invalid value for %s in [%s]: expected number", k, s.name)
	}
}

func (s section) integer(k string, v any, dst *int) {
	if n, ok := v.(int64); ok {
		*dst = int(n)
		return
	}
	s.warn("invalid value for %s in [%s]: expected integer", k, s.name)
}

func (s section) duration(k string, v any, dst *time.Duration) {
	if str, ok := v.(string); ok {
		if d, err := time.ParseDuration(str); err == nil {
			*dst = d
			return
		}
	}
	s.warn("invalid value for %s in [%s]: expected duration like \"2s\"", k, s.name)
}

func (s section) sub(k string, v any) (section, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return section{}, false
	}
	return section{values: m, name: s.name + "." + k, warnings: s.warnings}, true
}

// convertRawToDomainConfig converts the raw map to domain config and collects warnings.
func convertRawToDomainConfig(raw map[string]any) *domain.Config {
	res := &domain.Config{}
	var warnings []string

	for name, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", name))
			continue
		}
		s := section{values: m, name: name, warnings: &warnings}
		switch name {
		case "store":
			parseStore(s, &res.Store)
		case "scoring":
			parseScoring(s, &res.Scoring)
		case "batch":
			s.each(func(k string, v any) bool {
				switch k {
				case "chunk_size":
					s.integer(k, v, &res.Batch.ChunkSize)
				case "budget":
					s.duration(k, v, &res.Batch.Budget)
				default:
					return false
				}
				return true
			})
		case "log":
			s.each(func(k string, v any) bool {
				if k != "level" {
					return false
				}
				s.str(k, v, &res.Log.Level)
				return true
			})
		case "migration":
			s.each(func(k string, v any) bool {
				if k != "snapshot" {
					return false
				}
				if b, ok := v.(bool); ok {
					res.Migration.Snapshot = b
					res.Migration.SnapshotSet = true
				} else {
					s.warn("invalid value for %s in [%s]: expected boolean", k, s.name)
				}
				return true
			})
		default:
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", name))
		}
	}

	sort.Strings(warnings)
	res.Warnings = warnings
	return res
}

func parseStore(s section, dst *domain.StoreConfig) {
	s.each(func(k string, v any) bool {
		switch k {
		case "table":
			s.str(k, v, &dst.Table)
		case "settings":
			s.str(k, v, &dst.Settings)
		case "reference":
			s.str(k, v, &dst.Reference)
		case "timezone":
			s.str(k, v, &dst.Timezone)
			if _, err := time.LoadLocation(dst.Timezone); err != nil {
				s.warn("invalid timezone in [%s]: %s", s.name, dst.Timezone)
				dst.Timezone = ""
			}
		case "lock_timeout":
			s.duration(k, v, &dst.LockTimeout)
		default:
			return false
		}
		return true
	})
}

func parseScoring(s section, dst *domain.ScoringConfig) {
	s.each(func(k string, v any) bool {
		switch k {
		case "scheme":
			var scheme string
			s.str(k, v, &scheme)
			if domain.ScoringScheme(scheme).IsValid() {
				dst.Scheme = domain.ScoringScheme(scheme)
			} else {
				s.warn("invalid scheme in [%s]: %s", s.name, scheme)
			}
		case "labels":
			sub, ok := s.sub(k, v)
			if !ok {
				return false
			}
			sub.each(func(k string, v any) bool {
				switch k {
				case "critical":
					sub.number(k, v, &dst.Labels.Critical)
				case "high":
					sub.number(k, v, &dst.Labels.High)
				case "medium":
					sub.number(k, v, &dst.Labels.Medium)
				default:
					return false
				}
				return true
			})
		case "multiplicative":
			sub, ok := s.sub(k, v)
			if !ok {
				return false
			}
			w := &dst.Multiplicative
			sub.each(func(k string, v any) bool {
				switch k {
				case "star_bonus":
					sub.number(k, v, &w.StarBonus)
				case "context_bonus":
					sub.number(k, v, &w.ContextBonus)
				case "energy_bonus":
					sub.number(k, v, &w.EnergyBonus)
				case "partial_energy_bonus":
					sub.number(k, v, &w.PartialEnergyBonus)
				case "age_per_day":
					sub.number(k, v, &w.AgePerDay)
				case "age_cap":
					sub.number(k, v, &w.AgeCap)
				default:
					return false
				}
				return true
			})
		case "additive":
			sub, ok := s.sub(k, v)
			if !ok {
				return false
			}
			w := &dst.Additive
			sub.each(func(k string, v any) bool {
				switch k {
				case "due":
					sub.number(k, v, &w.Due)
				case "project_importance":
					sub.number(k, v, &w.ProjectImportance)
				case "context":
					sub.number(k, v, &w.Context)
				case "energy":
					sub.number(k, v, &w.Energy)
				case "time_fit":
					sub.number(k, v, &w.TimeFit)
				case "age":
					sub.number(k, v, &w.Age)
				case "fan_out":
					sub.number(k, v, &w.FanOut)
				default:
					return false
				}
				return true
			})
		default:
			return false
		}
		return true
	})
}

// mergeConfigs merges two configs, with override taking precedence.
// Zero values in override leave the base value in place.
func mergeConfigs(base, override *domain.Config) *domain.Config {
	result := *base
	result.Warnings = append(append([]string{}, base.Warnings...), override.Warnings...)

	mergeString(&result.Store.Table, override.Store.Table)
	mergeString(&result.Store.Settings, override.Store.Settings)
	mergeString(&result.Store.Reference, override.Store.Reference)
	mergeString(&result.Store.Timezone, override.Store.Timezone)
	if override.Store.LockTimeout > 0 {
		result.Store.LockTimeout = override.Store.LockTimeout
	}

	if override.Scoring.Scheme != "" {
		result.Scoring.Scheme = override.Scoring.Scheme
	}
	mergeFloat(&result.Scoring.Labels.Critical, override.Scoring.Labels.Critical)
	mergeFloat(&result.Scoring.Labels.High, override.Scoring.Labels.High)
	mergeFloat(&result.Scoring.Labels.Medium, override.Scoring.Labels.Medium)

	m, om := &result.Scoring.Multiplicative, override.Scoring.Multiplicative
	mergeFloat(&m.StarBonus, om.StarBonus)
	mergeFloat(&m.ContextBonus, om.ContextBonus)
	mergeFloat(&m.EnergyBonus, om.EnergyBonus)
	mergeFloat(&m.PartialEnergyBonus, om.PartialEnergyBonus)
	mergeFloat(&m.AgePerDay, om.AgePerDay)
	mergeFloat(&m.AgeCap, om.AgeCap)

	a, oa := &result.Scoring.Additive, override.Scoring.Additive
	mergeFloat(&a.Due, oa.Due)
	mergeFloat(&a.ProjectImportance, oa.ProjectImportance)
	mergeFloat(&a.Context, oa.Context)
	mergeFloat(&a.Energy, oa.Energy)
	mergeFloat(&a.TimeFit, oa.TimeFit)
	mergeFloat(&a.Age, oa.Age)
	mergeFloat(&a.FanOut, oa.FanOut)

	if override.Batch.ChunkSize > 0 {
		result.Batch.ChunkSize = override.Batch.ChunkSize
	}
	if override.Batch.Budget > 0 {
		result.Batch.Budget = override.Batch.Budget
	}
	mergeString(&result.Log.Level, override.Log.Level)
	if override.Migration.SnapshotSet {
		result.Migration = override.Migration
	}
	return &result
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}
