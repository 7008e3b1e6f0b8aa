package memory

import (
	"context"
	"sort"

	"manage-breast-screening/internal/domain/clinics"

	"github.com/google/uuid"
)

type ClinicsRepo struct {
	s *Store
}

func (r *ClinicsRepo) CreateProvider(ctx context.Context, p clinics.Provider) error {
	defer r.s.lockForWrite(ctx)()

	if _, exists := r.s.st.providers[p.ID]; exists {
		return ErrDuplicateID
	}
	r.s.st.providers[p.ID] = p
	return nil
}

func (r *ClinicsRepo) CreateSetting(ctx context.Context, s clinics.Setting) error {
	defer r.s.lockForWrite(ctx)()

	if _, exists := r.s.st.settings[s.ID]; exists {
		return ErrDuplicateID
	}
	if _, ok := r.s.st.providers[s.ProviderID]; !ok {
		return clinics.ErrNotFound
	}
	r.s.st.settings[s.ID] = s
	return nil
}

func (r *ClinicsRepo) Create(ctx context.Context, c clinics.Clinic) error {
	defer r.s.lockForWrite(ctx)()

	if _, exists := r.s.st.clinics[c.ID]; exists {
		return ErrDuplicateID
	}
	if _, ok := r.s.st.settings[c.SettingID]; !ok {
		return clinics.ErrNotFound
	}
	c.Setting = clinics.Setting{}
	r.s.st.clinics[c.ID] = c
	return nil
}

func (r *ClinicsRepo) CreateSlots(ctx context.Context, slots []clinics.Slot) error {
	defer r.s.lockForWrite(ctx)()

	for _, sl := range slots {
		if _, exists := r.s.st.slots[sl.ID]; exists {
			return ErrDuplicateID
		}
		if _, ok := r.s.st.clinics[sl.ClinicID]; !ok {
			return clinics.ErrNotFound
		}
	}
	for _, sl := range slots {
		r.s.st.slots[sl.ID] = sl
	}
	return nil
}

// clinic assumes mu is held.
func (s *Store) clinic(id uuid.UUID) (clinics.Clinic, bool) {
	c, ok := s.st.clinics[id]
	if !ok {
		return clinics.Clinic{}, false
	}
	c.Setting = s.st.settings[c.SettingID]
	return c, true
}

func (r *ClinicsRepo) GetByID(ctx context.Context, id uuid.UUID) (clinics.Clinic, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.clinic(id)
	if !ok {
		return clinics.Clinic{}, clinics.ErrNotFound
	}
	return c, nil
}

func (r *ClinicsRepo) GetSlot(ctx context.Context, id uuid.UUID) (clinics.Slot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sl, ok := r.s.st.slots[id]
	if !ok {
		return clinics.Slot{}, clinics.ErrNotFound
	}
	return sl, nil
}

func inRange(rng clinics.DateRange, c clinics.Clinic) bool {
	if !rng.From.IsZero() && c.StartsAt.Before(rng.From) {
		return false
	}
	if !rng.To.IsZero() && !c.StartsAt.Before(rng.To) {
		return false
	}
	return true
}

func (r *ClinicsRepo) List(ctx context.Context, f clinics.ListFilter) ([]clinics.Clinic, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]clinics.Clinic, 0)
	for id := range r.s.st.clinics {
		c, _ := r.s.clinic(id)
		if inRange(f.Range, c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].StartsAt.Before(out[j].StartsAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *ClinicsRepo) Count(ctx context.Context, f clinics.ListFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, c := range r.s.st.clinics {
		if inRange(f.Range, c) {
			n++
		}
	}
	return n, nil
}

func (r *ClinicsRepo) CountSlots(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	want := idSet(ids)
	out := make(map[uuid.UUID]int, len(ids))
	for _, sl := range r.s.st.slots {
		if _, ok := want[sl.ClinicID]; ok {
			out[sl.ClinicID]++
		}
	}
	return out, nil
}

func (r *ClinicsRepo) StatusesFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]clinics.Status, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[uuid.UUID][]clinics.Status, len(ids))
	for _, id := range ids {
		if ss := r.s.st.clinicStatuses[id]; len(ss) > 0 {
			out[id] = append([]clinics.Status(nil), ss...)
		}
	}
	return out, nil
}

func (r *ClinicsRepo) AppendStatus(ctx context.Context, s clinics.Status) (clinics.Status, error) {
	defer r.s.lockForWrite(ctx)()

	if _, ok := r.s.st.clinics[s.ClinicID]; !ok {
		return clinics.Status{}, clinics.ErrNotFound
	}
	s.Seq = r.s.nextSeq()
	r.s.st.clinicStatuses[s.ClinicID] = append(r.s.st.clinicStatuses[s.ClinicID], s)
	return s, nil
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
