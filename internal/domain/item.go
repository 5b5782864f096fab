// Package domain contains core business entities and interfaces.
package domain

import (
	"strings"
	"time"
)

// Item is the single entity behind tasks, projects and folders.
// Fields are ordered to minimize memory padding.
type Item struct {
	CompletedDate time.Time // When the item entered done (zero = not completed)
	CreatedDate   time.Time // Creation time
	ModifiedDate  time.Time // Last mutation time
	ID            string    // Opaque unique ID, assigned once
	Title         string
	Notes         string
	Status        Status
	Type          ItemType
	ParentID      string // Parent item (empty = root)
	ContextID     string // Reference into the contexts table (empty = none)
	AreaID        string // Reference into the areas table (empty = none)
	Energy        Energy // Energy required
	EmailID       string // External correlation key (empty = none)
	EmailThreadID string // External correlation key (empty = none)
	WaitingFor    string // Who/what the item is waiting on
	Priority      float64
	DueDate       Date
	ScheduledDate Date
	LastReviewed  Date
	TimeEstimate  int // Minutes (0 = unknown)
	Importance    int // 1-5
	Urgency       int // 1-5
	SortOrder     int
	IsStarred     bool
}

// IsDeleted returns true if the item has been soft-deleted.
func (i *Item) IsDeleted() bool {
	return i.Status == StatusDeleted
}

// IsActive returns true if the item is neither done nor deleted.
func (i *Item) IsActive() bool {
	return !i.Status.IsTerminal()
}

// IsRoot returns true if the item has no parent.
func (i *Item) IsRoot() bool {
	return i.ParentID == ""
}

// Clone returns a shallow copy of the item.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	cloned := *i
	return &cloned
}

// ItemType distinguishes tasks, projects and folders.
type ItemType string

const (
	TypeTask    ItemType = "task"
	TypeProject ItemType = "project"
	TypeFolder  ItemType = "folder"
)

// AllItemTypes returns all valid item types.
func AllItemTypes() []ItemType {
	return []ItemType{TypeTask, TypeProject, TypeFolder}
}

// IsValid returns true if the type is a known value.
func (t ItemType) IsValid() bool {
	switch t {
	case TypeTask, TypeProject, TypeFolder:
		return true
	default:
		return false
	}
}

// ParseItemType normalizes and validates a type string.
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", invalid(ErrInvalidType, s)
	}
	return t, nil
}

// Energy is the energy level a task requires or the user currently has.
type Energy string

const (
	EnergyLow    Energy = "low"
	EnergyMedium Energy = "medium"
	EnergyHigh   Energy = "high"
)

// IsValid returns true if the energy is a known value.
func (e Energy) IsValid() bool {
	switch e {
	case EnergyLow, EnergyMedium, EnergyHigh:
		return true
	default:
		return false
	}
}

// ParseEnergy normalizes and validates an energy string.
func ParseEnergy(s string) (Energy, error) {
	e := Energy(strings.ToLower(strings.TrimSpace(s)))
	if !e.IsValid() {
		return "", invalid(ErrInvalidEnergy, s)
	}
	return e, nil
}

// Importance and urgency bounds.
const (
	DefaultImportance = 2
	DefaultUrgency    = 2
	MinRating         = 1
	MaxRating         = 5
)

// ItemPatch carries a partial set of item fields.
// Nil pointers mean "don't touch this field".
type ItemPatch struct {
	Title         *string
	Notes         *string
	Status        *Status
	Type          *ItemType
	ParentID      *string
	ContextID     *string
	AreaID        *string
	Energy        *Energy
	EmailID       *string
	EmailThreadID *string
	WaitingFor    *string
	DueDate       *Date
	ScheduledDate *Date
	LastReviewed  *Date
	CompletedDate *time.Time
	TimeEstimate  *int
	Importance    *int
	Urgency       *int
	IsStarred     *bool
}

// IsEmpty returns true if the patch sets no field.
func (p ItemPatch) IsEmpty() bool {
	return p == ItemPatch{}
}

// Validate checks the structurally checkable fields of the patch.
func (p ItemPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrEmptyTitle
	}
	if p.Status != nil && !p.Status.IsValid() {
		return invalid(ErrInvalidStatus, string(*p.Status))
	}
	if p.Type != nil && !p.Type.IsValid() {
		return invalid(ErrInvalidType, string(*p.Type))
	}
	if p.Energy != nil && !p.Energy.IsValid() {
		return invalid(ErrInvalidEnergy, string(*p.Energy))
	}
	if p.Importance != nil && !validRating(*p.Importance) {
		return invalidInt(ErrInvalidImportance, *p.Importance)
	}
	if p.Urgency != nil && !validRating(*p.Urgency) {
		return invalidInt(ErrInvalidUrgency, *p.Urgency)
	}
	if p.TimeEstimate != nil && *p.TimeEstimate < 0 {
		return invalidInt(ErrInvalidTimeEstimate, *p.TimeEstimate)
	}
	return nil
}

// Apply merges the patch over the item (shallow merge).
func (p ItemPatch) Apply(item *Item) {
	if p.Title != nil {
		item.Title = strings.TrimSpace(*p.Title)
	}
	if p.Notes != nil {
		item.Notes = *p.Notes
	}
	if p.Status != nil {
		item.Status = *p.Status
	}
	if p.Type != nil {
		item.Type = *p.Type
	}
	if p.ParentID != nil {
		item.ParentID = *p.ParentID
	}
	if p.ContextID != nil {
		item.ContextID = *p.ContextID
	}
	if p.AreaID != nil {
		item.AreaID = *p.AreaID
	}
	if p.Energy != nil {
		item.Energy = *p.Energy
	}
	if p.EmailID != nil {
		item.EmailID = *p.EmailID
	}
	if p.EmailThreadID != nil {
		item.EmailThreadID = *p.EmailThreadID
	}
	if p.WaitingFor != nil {
		item.WaitingFor = *p.WaitingFor
	}
	if p.DueDate != nil {
		item.DueDate = *p.DueDate
	}
	if p.ScheduledDate != nil {
		item.ScheduledDate = *p.ScheduledDate
	}
	if p.LastReviewed != nil {
		item.LastReviewed = *p.LastReviewed
	}
	if p.CompletedDate != nil {
		item.CompletedDate = p.CompletedDate.Truncate(time.Second)
	}
	if p.TimeEstimate != nil {
		item.TimeEstimate = *p.TimeEstimate
	}
	if p.Importance != nil {
		item.Importance = *p.Importance
	}
	if p.Urgency != nil {
		item.Urgency = *p.Urgency
	}
	if p.IsStarred != nil {
		item.IsStarred = *p.IsStarred
	}
}

func validRating(v int) bool {
	return v >= MinRating && v <= MaxRating
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}

// Context tags where or with what a task can be done.
type Context struct {
	ID        string
	Name      string
	Icon      string
	SortOrder int
}

// Area is a broad life domain used to group projects.
type Area struct {
	ID        string
	Name      string
	Icon      string
	SortOrder int
}
