package appointments

import (
	"context"

	"github.com/google/uuid"
)

// Repository loads appointments as fully materialised Listings. Status
// history is never loaded per row: callers batch it through StatusesFor.
type Repository interface {
	Create(ctx context.Context, a Appointment) error
	CreateMany(ctx context.Context, as []Appointment) error
	Update(ctx context.Context, a Appointment) error

	GetListing(ctx context.Context, id uuid.UUID) (Listing, error)
	// List returns the appointments matching q ordered by slot start. The
	// state restriction applies to the current status, with history-less
	// appointments treated as CONFIRMED.
	List(ctx context.Context, q Query) ([]Listing, error)
	Count(ctx context.Context, q Query) (int, error)

	// StatusesFor returns every status of the given appointments in one query.
	StatusesFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]Status, error)
	AppendStatus(ctx context.Context, s Status) (Status, error)
	AppendStatuses(ctx context.Context, ss []Status) ([]Status, error)
}
