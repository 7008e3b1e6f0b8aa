package clinics

import (
	"context"

	"github.com/google/uuid"
)

type ListFilter struct {
	Range DateRange
}

type Repository interface {
	CreateProvider(ctx context.Context, p Provider) error
	CreateSetting(ctx context.Context, s Setting) error
	Create(ctx context.Context, c Clinic) error
	CreateSlots(ctx context.Context, slots []Slot) error

	// GetByID loads the clinic with its setting.
	GetByID(ctx context.Context, id uuid.UUID) (Clinic, error)
	GetSlot(ctx context.Context, id uuid.UUID) (Slot, error)
	// List returns clinics ordered by start time, each with its setting.
	List(ctx context.Context, f ListFilter) ([]Clinic, error)
	Count(ctx context.Context, f ListFilter) (int, error)
	// CountSlots returns slot counts keyed by clinic id. Missing ids count zero.
	CountSlots(ctx context.Context, clinicIDs []uuid.UUID) (map[uuid.UUID]int, error)

	// StatusesFor returns every status of the given clinics in one query.
	StatusesFor(ctx context.Context, clinicIDs []uuid.UUID) (map[uuid.UUID][]Status, error)
	AppendStatus(ctx context.Context, s Status) (Status, error)
}
