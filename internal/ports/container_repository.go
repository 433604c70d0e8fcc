package ports

import (
	"collection-route-service/internal/domain"
	"context"
)

// Port: a boundary for reading the container registry.
type ContainerRepository interface {
	// Active containers whose fill level is at or above threshold,
	// fullest first.
	ListNeedingCollection(ctx context.Context, threshold float64) ([]domain.Container, error)
	// Containers with the given ids, in no particular order. Unknown ids
	// are skipped.
	ListByIDs(ctx context.Context, ids []int) ([]domain.Container, error)
}
