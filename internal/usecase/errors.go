package usecase

import (
	"fmt"

	"github.com/runoshun/gtdsheet/internal/domain"
)

func notFound(id string) error {
	return fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
}
