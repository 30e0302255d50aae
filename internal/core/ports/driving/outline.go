package driving

import (
	"context"

	"github.com/custodia-labs/managed-outline/internal/core/domain"
)

// OutlineService applies the managed outline to one workspace.
type OutlineService interface {
	// Run outlines the text belonging to target. It returns false with a nil
	// error when there is nothing to do, and a taxonomy error on failure.
	Run(ctx context.Context, target domain.NodeID) (bool, error)

	// Prepare produces or repairs the managed group without rendering.
	Prepare(ctx context.Context, target domain.NodeID) (*domain.ManagedGroup, error)

	// Inspect reports how a run would see target, without mutating.
	Inspect(ctx context.Context, target domain.NodeID) (*domain.Inspection, error)
}
