package participants

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p Participant) error
	CreateMany(ctx context.Context, ps []Participant) error
	// GetByID loads the participant with its address, if any.
	GetByID(ctx context.Context, id uuid.UUID) (Participant, error)
	Update(ctx context.Context, p Participant) error

	// SaveAddress inserts or replaces the participant's single address.
	SaveAddress(ctx context.Context, a Address) error
	DeleteAddress(ctx context.Context, id uuid.UUID) error

	CreateEpisode(ctx context.Context, e ScreeningEpisode) error
	CreateEpisodes(ctx context.Context, es []ScreeningEpisode) error
	GetEpisode(ctx context.Context, id uuid.UUID) (ScreeningEpisode, error)
	// ListEpisodes returns a participant's episodes, newest first.
	ListEpisodes(ctx context.Context, participantID uuid.UUID) ([]ScreeningEpisode, error)
}
