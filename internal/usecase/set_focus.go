package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// SetFocusInput contains the settings to change. Nil fields are left as
// they are; a pointer to "" clears the setting.
type SetFocusInput struct {
	Context *string // Context id or name
	Energy  *string // low, medium or high
	Minutes *string // Available minutes
	Batch   domain.BatchOptions
	// SkipRecompute leaves cached priorities stale.
	SkipRecompute bool
}

// SetFocusOutput contains the new settings and the recompute report.
type SetFocusOutput struct {
	Report   *domain.BatchReport // nil when the recompute was skipped
	Settings domain.Settings
}

// SetFocus is the use case for changing the current context, energy and
// time window. Every cached score depends on them, so a change triggers a
// recompute of all priorities.
type SetFocus struct {
	items    domain.ItemRepository
	settings domain.SettingsStore
	refs     domain.ReferenceRepository
	logger   domain.Logger
}

// NewSetFocus creates a new SetFocus use case.
func NewSetFocus(items domain.ItemRepository, settings domain.SettingsStore, refs domain.ReferenceRepository, logger domain.Logger) *SetFocus {
	return &SetFocus{
		items:    items,
		settings: settings,
		refs:     refs,
		logger:   logger,
	}
}

// Execute validates and stores the settings, then recomputes.
func (uc *SetFocus) Execute(ctx context.Context, in SetFocusInput) (*SetFocusOutput, error) {
	updates := make(map[string]string)
	if in.Context != nil {
		id, err := uc.resolveContext(ctx, strings.TrimSpace(*in.Context))
		if err != nil {
			return nil, err
		}
		updates[domain.SettingCurrentContext] = id
	}
	if in.Energy != nil {
		updates[domain.SettingCurrentEnergy] = strings.ToLower(strings.TrimSpace(*in.Energy))
	}
	if in.Minutes != nil {
		updates[domain.SettingAvailableMinutes] = strings.TrimSpace(*in.Minutes)
	}
	// Validate everything before writing anything.
	for _, key := range domain.SettingKeys() {
		value, ok := updates[key]
		if !ok {
			continue
		}
		if err := domain.ValidateSetting(key, value); err != nil {
			return nil, err
		}
	}

	for _, key := range domain.SettingKeys() {
		value, ok := updates[key]
		if !ok {
			continue
		}
		if err := uc.settings.Set(ctx, key, value); err != nil {
			return nil, fmt.Errorf("set %s: %w", key, err)
		}
		if uc.logger != nil {
			uc.logger.Info("", "focus", fmt.Sprintf("%s = %q", key, value))
		}
	}

	settings, err := domain.LoadSettings(ctx, uc.settings)
	if err != nil {
		return nil, err
	}
	out := &SetFocusOutput{Settings: settings}
	if in.SkipRecompute || len(updates) == 0 {
		return out, nil
	}
	report, err := uc.items.RecomputeAllPriorities(ctx, settings, in.Batch)
	if err != nil {
		return nil, fmt.Errorf("recompute priorities: %w", err)
	}
	out.Report = &report
	return out, nil
}

// resolveContext accepts a context id or a case-insensitive name.
func (uc *SetFocus) resolveContext(ctx context.Context, ref string) (string, error) {
	if ref == "" || uc.refs == nil {
		return ref, nil
	}
	if c, err := uc.refs.GetContext(ctx, ref); err == nil {
		return c.ID, nil
	}
	contexts, err := uc.refs.ListContexts(ctx)
	if err != nil {
		return "", fmt.Errorf("list contexts: %w", err)
	}
	for _, c := range contexts {
		if strings.EqualFold(c.Name, ref) {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrContextNotFound, ref)
}
