package domain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Setting keys shared with the settings store.
const (
	SettingCurrentContext   = "currentContext"
	SettingCurrentEnergy    = "currentEnergyLevel"
	SettingAvailableMinutes = "availableMinutes"
)

// SettingKeys returns the known setting keys.
func SettingKeys() []string {
	return []string{SettingCurrentContext, SettingCurrentEnergy, SettingAvailableMinutes}
}

// Settings is the user's current focus, an ambient input of the priority engine.
type Settings struct {
	CurrentContext   string // Context id (empty = any)
	CurrentEnergy    Energy // Empty = unknown
	AvailableMinutes int    // 0 = unknown
}

// LoadSettings reads all focus settings from the store.
// Unknown or malformed values are treated as unset.
func LoadSettings(ctx context.Context, store SettingsStore) (Settings, error) {
	var s Settings
	v, err := store.Get(ctx, SettingCurrentContext)
	if err != nil {
		return s, fmt.Errorf("get %s: %w", SettingCurrentContext, err)
	}
	s.CurrentContext = strings.TrimSpace(v)

	v, err = store.Get(ctx, SettingCurrentEnergy)
	if err != nil {
		return s, fmt.Errorf("get %s: %w", SettingCurrentEnergy, err)
	}
	if e, perr := ParseEnergy(v); perr == nil {
		s.CurrentEnergy = e
	}

	v, err = store.Get(ctx, SettingAvailableMinutes)
	if err != nil {
		return s, fmt.Errorf("get %s: %w", SettingAvailableMinutes, err)
	}
	if n, perr := strconv.Atoi(strings.TrimSpace(v)); perr == nil && n > 0 {
		s.AvailableMinutes = n
	}
	return s, nil
}

// ValidateSetting checks a raw value for a setting key.
func ValidateSetting(key, value string) error {
	switch key {
	case SettingCurrentContext:
		return nil
	case SettingCurrentEnergy:
		if strings.TrimSpace(value) == "" {
			return nil
		}
		_, err := ParseEnergy(value)
		return err
	case SettingAvailableMinutes:
		if strings.TrimSpace(value) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return invalid(ErrInvalidSetting, key+"="+value)
		}
		return nil
	default:
		return invalid(ErrInvalidSetting, key)
	}
}
