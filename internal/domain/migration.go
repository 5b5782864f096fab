package domain

import "strings"

// MigrationPhase is one step of the legacy to current layout migration.
type MigrationPhase string

// Migration phases, in order.
const (
	PhaseCopy   MigrationPhase = "copy"   // parentId <- projectId
	PhaseClear  MigrationPhase = "clear"  // blank projectId values
	PhaseDelete MigrationPhase = "delete" // remove the projectId column
)

// AllPhases returns the phases in execution order.
func AllPhases() []MigrationPhase {
	return []MigrationPhase{PhaseCopy, PhaseClear, PhaseDelete}
}

// IsValid returns true if p is a known phase.
func (p MigrationPhase) IsValid() bool {
	switch p {
	case PhaseCopy, PhaseClear, PhaseDelete:
		return true
	}
	return false
}

// ParseMigrationPhase parses a phase name.
func ParseMigrationPhase(s string) (MigrationPhase, error) {
	p := MigrationPhase(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", invalid(ErrInvalidPhase, s)
	}
	return p, nil
}

// CopyTarget returns the parentId value the copy phase writes for a row
// with the given legacy and current values. The legacy value wins when
// both are set; a blank legacy value never overwrites.
func CopyTarget(legacy, current string) (string, bool) {
	if legacy == "" || legacy == current {
		return "", false
	}
	return legacy, true
}
