package memory

import (
	"context"
	"sort"

	"manage-breast-screening/internal/domain/appointments"

	"github.com/google/uuid"
)

type AppointmentsRepo struct {
	s *Store
}

func (r *AppointmentsRepo) Create(ctx context.Context, a appointments.Appointment) error {
	return r.CreateMany(ctx, []appointments.Appointment{a})
}

func (r *AppointmentsRepo) CreateMany(ctx context.Context, as []appointments.Appointment) error {
	defer r.s.lockForWrite(ctx)()

	for _, a := range as {
		if _, exists := r.s.st.appointments[a.ID]; exists {
			return ErrDuplicateID
		}
		if _, ok := r.s.st.episodes[a.ScreeningEpisodeID]; !ok {
			return appointments.ErrNotFound
		}
		if _, ok := r.s.st.slots[a.ClinicSlotID]; !ok {
			return appointments.ErrNotFound
		}
	}
	for _, a := range as {
		r.s.st.appointments[a.ID] = a
	}
	return nil
}

func (r *AppointmentsRepo) Update(ctx context.Context, a appointments.Appointment) error {
	defer r.s.lockForWrite(ctx)()

	cur, ok := r.s.st.appointments[a.ID]
	if !ok {
		return appointments.ErrNotFound
	}
	cur.Reinvite = a.Reinvite
	cur.StoppedReasons = append([]string(nil), a.StoppedReasons...)
	cur.UpdatedAt = a.UpdatedAt
	r.s.st.appointments[a.ID] = cur
	return nil
}

// listing joins one appointment to its participant, slot and clinic.
// Assumes mu is held.
func (s *Store) listing(a appointments.Appointment) (appointments.Listing, bool) {
	ep, ok := s.st.episodes[a.ScreeningEpisodeID]
	if !ok {
		return appointments.Listing{}, false
	}
	p, err := s.participant(ep.ParticipantID)
	if err != nil {
		return appointments.Listing{}, false
	}
	p.Address = nil
	slot, ok := s.st.slots[a.ClinicSlotID]
	if !ok {
		return appointments.Listing{}, false
	}
	c, ok := s.clinic(slot.ClinicID)
	if !ok {
		return appointments.Listing{}, false
	}
	return appointments.Listing{Appointment: a, Participant: p, Slot: slot, Clinic: c}, true
}

func (r *AppointmentsRepo) GetListing(ctx context.Context, id uuid.UUID) (appointments.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.st.appointments[id]
	if !ok {
		return appointments.Listing{}, appointments.ErrNotFound
	}
	l, ok := r.s.listing(a)
	if !ok {
		return appointments.Listing{}, appointments.ErrNotFound
	}
	return l, nil
}

// matching assumes mu is held. The current state is read the same way the
// service presents it.
func (s *Store) matching(q appointments.Query) []appointments.Listing {
	out := make([]appointments.Listing, 0)
	for _, a := range s.st.appointments {
		l, ok := s.listing(a)
		if !ok {
			continue
		}
		if q.Scope.ClinicID != uuid.Nil && l.Slot.ClinicID != q.Scope.ClinicID {
			continue
		}
		if q.Scope.ParticipantID != uuid.Nil && l.Participant.ID != q.Scope.ParticipantID {
			continue
		}
		current, _ := appointments.CurrentOrDefault(a.ID, s.st.apptStatuses[a.ID])
		if !q.Matches(current.State) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (r *AppointmentsRepo) List(ctx context.Context, q appointments.Query) ([]appointments.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := r.s.matching(q)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Slot.StartsAt.Equal(out[j].Slot.StartsAt) {
			return out[i].Slot.StartsAt.Before(out[j].Slot.StartsAt)
		}
		return out[i].Appointment.ID.String() < out[j].Appointment.ID.String()
	})
	return out, nil
}

func (r *AppointmentsRepo) Count(ctx context.Context, q appointments.Query) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return len(r.s.matching(q)), nil
}

func (r *AppointmentsRepo) StatusesFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]appointments.Status, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[uuid.UUID][]appointments.Status, len(ids))
	for _, id := range ids {
		if ss := r.s.st.apptStatuses[id]; len(ss) > 0 {
			out[id] = append([]appointments.Status(nil), ss...)
		}
	}
	return out, nil
}

func (r *AppointmentsRepo) AppendStatus(ctx context.Context, s appointments.Status) (appointments.Status, error) {
	out, err := r.AppendStatuses(ctx, []appointments.Status{s})
	if err != nil {
		return appointments.Status{}, err
	}
	return out[0], nil
}

func (r *AppointmentsRepo) AppendStatuses(ctx context.Context, ss []appointments.Status) ([]appointments.Status, error) {
	defer r.s.lockForWrite(ctx)()

	for _, s := range ss {
		if _, ok := r.s.st.appointments[s.AppointmentID]; !ok {
			return nil, appointments.ErrNotFound
		}
	}
	out := make([]appointments.Status, len(ss))
	for i, s := range ss {
		s.Seq = r.s.nextSeq()
		r.s.st.apptStatuses[s.AppointmentID] = append(r.s.st.apptStatuses[s.AppointmentID], s)
		out[i] = s
	}
	return out, nil
}
