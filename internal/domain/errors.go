package domain

import (
	"errors"
	"fmt"
)

// Error categories. Specific errors wrap one of these so callers can
// branch with errors.Is on either level.
var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	ErrSchema              = errors.New("schema error")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrExternalService     = errors.New("external service error")
)

// Domain errors.
var (
	ErrItemNotFound        = fmt.Errorf("item %w", ErrNotFound)
	ErrContextNotFound     = fmt.Errorf("context %w", ErrNotFound)
	ErrAreaNotFound        = fmt.Errorf("area %w", ErrNotFound)
	ErrEmptyTitle          = fmt.Errorf("%w: title cannot be empty", ErrValidation)
	ErrInvalidStatus       = fmt.Errorf("%w: invalid status", ErrValidation)
	ErrInvalidType         = fmt.Errorf("%w: invalid item type", ErrValidation)
	ErrInvalidEnergy       = fmt.Errorf("%w: invalid energy level", ErrValidation)
	ErrInvalidImportance   = fmt.Errorf("%w: importance must be between 1 and 5", ErrValidation)
	ErrInvalidUrgency      = fmt.Errorf("%w: urgency must be between 1 and 5", ErrValidation)
	ErrInvalidTimeEstimate = fmt.Errorf("%w: time estimate cannot be negative", ErrValidation)
	ErrInvalidTransition   = fmt.Errorf("%w: invalid status transition", ErrValidation)
	ErrParentNotFound      = fmt.Errorf("%w: parent item not found", ErrValidation)
	ErrCycle               = fmt.Errorf("%w: parent assignment would create a cycle", ErrValidation)
	ErrTerminalConversion  = fmt.Errorf("%w: cannot change the type of a done or deleted item", ErrValidation)
	ErrNotRecoverable      = fmt.Errorf("%w: item is not done or deleted", ErrValidation)
	ErrNoFieldsToUpdate    = fmt.Errorf("%w: no fields to update", ErrValidation)
	ErrInvalidSetting      = fmt.Errorf("%w: invalid setting", ErrValidation)
	ErrInvalidPhase        = fmt.Errorf("%w: invalid migration phase", ErrValidation)
	ErrPhaseOrder          = fmt.Errorf("%w: previous migration phase is not complete", ErrValidation)
	ErrMissingHeader       = fmt.Errorf("%w: table header is missing", ErrSchema)
	ErrMissingColumn       = fmt.Errorf("%w: expected column is missing", ErrSchema)
	ErrLegacyParent        = fmt.Errorf("%w: parent is pinned by the legacy projectId column (run 'gtd migrate copy' and 'gtd migrate clear' first)", ErrSchema)
	ErrNotInitialized      = fmt.Errorf("%w: table not initialized (run 'gtd init' first)", ErrStoreUnavailable)
	ErrAlreadyInitialized  = errors.New("store already initialized")
	ErrConfigExists        = errors.New("config file already exists")
	ErrBusy                = fmt.Errorf("%w: item is locked by another operation", ErrConcurrencyConflict)
	ErrRowShapeChanged     = fmt.Errorf("%w: row changed during update", ErrConcurrencyConflict)
)

func invalid(base error, value string) error {
	return fmt.Errorf("%w: %q", base, value)
}

func invalidInt(base error, value int) error {
	return fmt.Errorf("%w: got %d", base, value)
}

// Result is the outcome of a mutating operation as rendered to callers.
// Error carries the message verbatim.
type Result struct {
	Error   string `json:"error,omitempty"`
	Success bool   `json:"success"`
}

// ResultOf converts an error into a Result.
func ResultOf(err error) Result {
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	return Result{Success: true}
}
