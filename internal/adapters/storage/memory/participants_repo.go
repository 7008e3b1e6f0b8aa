package memory

import (
	"context"
	"errors"
	"sort"

	"manage-breast-screening/internal/domain/participants"

	"github.com/google/uuid"
)

var ErrDuplicateID = errors.New("id already exists")

type ParticipantsRepo struct {
	s *Store
}

func (r *ParticipantsRepo) Create(ctx context.Context, p participants.Participant) error {
	return r.CreateMany(ctx, []participants.Participant{p})
}

func (r *ParticipantsRepo) CreateMany(ctx context.Context, ps []participants.Participant) error {
	defer r.s.lockForWrite(ctx)()

	for _, p := range ps {
		if p.ID == uuid.Nil {
			return errors.New("participant id required")
		}
		if _, exists := r.s.st.participants[p.ID]; exists {
			return ErrDuplicateID
		}
	}
	for _, p := range ps {
		p.Address = nil
		r.s.st.participants[p.ID] = p
	}
	return nil
}

func (r *ParticipantsRepo) GetByID(ctx context.Context, id uuid.UUID) (participants.Participant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.participant(id)
}

// participant assumes mu is held.
func (s *Store) participant(id uuid.UUID) (participants.Participant, error) {
	p, ok := s.st.participants[id]
	if !ok {
		return participants.Participant{}, participants.ErrNotFound
	}
	if a, ok := s.st.addresses[id]; ok {
		p.Address = &a
	}
	return p, nil
}

func (r *ParticipantsRepo) Update(ctx context.Context, p participants.Participant) error {
	defer r.s.lockForWrite(ctx)()

	cur, ok := r.s.st.participants[p.ID]
	if !ok {
		return participants.ErrNotFound
	}
	p.Address = nil
	p.CreatedAt = cur.CreatedAt
	r.s.st.participants[p.ID] = p
	return nil
}

func (r *ParticipantsRepo) SaveAddress(ctx context.Context, a participants.Address) error {
	defer r.s.lockForWrite(ctx)()

	if _, ok := r.s.st.participants[a.ParticipantID]; !ok {
		return participants.ErrNotFound
	}
	if cur, ok := r.s.st.addresses[a.ParticipantID]; ok {
		a.ID = cur.ID
	}
	r.s.st.addresses[a.ParticipantID] = a
	return nil
}

func (r *ParticipantsRepo) DeleteAddress(ctx context.Context, id uuid.UUID) error {
	defer r.s.lockForWrite(ctx)()

	for pid, a := range r.s.st.addresses {
		if a.ID == id {
			delete(r.s.st.addresses, pid)
			return nil
		}
	}
	return participants.ErrNotFound
}

func (r *ParticipantsRepo) CreateEpisode(ctx context.Context, e participants.ScreeningEpisode) error {
	return r.CreateEpisodes(ctx, []participants.ScreeningEpisode{e})
}

func (r *ParticipantsRepo) CreateEpisodes(ctx context.Context, es []participants.ScreeningEpisode) error {
	defer r.s.lockForWrite(ctx)()

	for _, e := range es {
		if _, ok := r.s.st.participants[e.ParticipantID]; !ok {
			return participants.ErrNotFound
		}
		if _, exists := r.s.st.episodes[e.ID]; exists {
			return ErrDuplicateID
		}
	}
	for _, e := range es {
		r.s.st.episodes[e.ID] = e
	}
	return nil
}

func (r *ParticipantsRepo) GetEpisode(ctx context.Context, id uuid.UUID) (participants.ScreeningEpisode, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.st.episodes[id]
	if !ok {
		return participants.ScreeningEpisode{}, participants.ErrNotFound
	}
	return e, nil
}

func (r *ParticipantsRepo) ListEpisodes(ctx context.Context, participantID uuid.UUID) ([]participants.ScreeningEpisode, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]participants.ScreeningEpisode, 0)
	for _, e := range r.s.st.episodes {
		if e.ParticipantID == participantID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
