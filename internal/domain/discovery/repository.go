package discovery

import "context"

// ListFilter narrows run listings.
type ListFilter struct {
	Status RunStatus
	Limit  int
	Offset int
}

// Repository persists discovery runs and their diagnostics.
type Repository interface {
	Create(ctx context.Context, run *Run) error
	Update(ctx context.Context, run *Run) error
	GetByID(ctx context.Context, id string) (*Run, error)
	List(ctx context.Context, filter ListFilter) ([]*Run, error)
}
