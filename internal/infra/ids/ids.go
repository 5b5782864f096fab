// Package ids provides the random id generator for items, contexts and areas.
package ids

import (
	"github.com/google/uuid"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// Ensure Generator implements domain.IDGenerator.
var _ domain.IDGenerator = Generator{}

// Generator issues UUIDv4 ids.
type Generator struct{}

// NewID returns a new random id.
func (Generator) NewID() string {
	return uuid.NewString()
}
