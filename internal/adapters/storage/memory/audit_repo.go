package memory

import (
	"context"
	"fmt"
	"sort"

	"manage-breast-screening/internal/domain/appointments"
	"manage-breast-screening/internal/domain/audit"
	"manage-breast-screening/internal/domain/clinics"
	"manage-breast-screening/internal/domain/participants"

	"github.com/google/uuid"
)

// AuditRepo is append-only: writing an id twice fails with
// audit.ErrImmutableAuditLog, mirroring the database trigger.
type AuditRepo struct {
	s *Store
}

func (r *AuditRepo) Insert(ctx context.Context, logs []audit.Log) error {
	defer r.s.lockForWrite(ctx)()

	seen := make(map[uuid.UUID]struct{}, len(logs))
	for _, l := range logs {
		if _, exists := r.s.st.auditIDs[l.ID]; exists {
			return audit.ErrImmutableAuditLog
		}
		if _, dup := seen[l.ID]; dup {
			return audit.ErrImmutableAuditLog
		}
		seen[l.ID] = struct{}{}
	}
	for _, l := range logs {
		r.s.st.auditIDs[l.ID] = struct{}{}
		r.s.st.auditLogs = append(r.s.st.auditLogs, l)
	}
	return nil
}

func (r *AuditRepo) ListForObject(ctx context.Context, contentType string, objectID uuid.UUID) ([]audit.Log, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	type indexed struct {
		log audit.Log
		pos int
	}
	matches := make([]indexed, 0)
	for i, l := range r.s.st.auditLogs {
		if l.ContentType == contentType && l.ObjectID == objectID {
			matches = append(matches, indexed{log: l, pos: i})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].log.CreatedAt.Equal(matches[j].log.CreatedAt) {
			return matches[i].log.CreatedAt.After(matches[j].log.CreatedAt)
		}
		return matches[i].pos > matches[j].pos
	})

	out := make([]audit.Log, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.log)
	}
	return out, nil
}

type Locator struct {
	s *Store
}

func (l *Locator) Exists(ctx context.Context, contentType string, id uuid.UUID) (bool, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()

	st := l.s.st
	switch contentType {
	case participants.ContentTypeParticipant:
		_, ok := st.participants[id]
		return ok, nil
	case participants.ContentTypeAddress:
		for _, a := range st.addresses {
			if a.ID == id {
				return true, nil
			}
		}
		return false, nil
	case participants.ContentTypeEpisode:
		_, ok := st.episodes[id]
		return ok, nil
	case clinics.ContentTypeProvider:
		_, ok := st.providers[id]
		return ok, nil
	case clinics.ContentTypeSetting:
		_, ok := st.settings[id]
		return ok, nil
	case clinics.ContentTypeClinic:
		_, ok := st.clinics[id]
		return ok, nil
	case clinics.ContentTypeSlot:
		_, ok := st.slots[id]
		return ok, nil
	case clinics.ContentTypeStatus:
		for _, ss := range st.clinicStatuses {
			for _, s := range ss {
				if s.ID == id {
					return true, nil
				}
			}
		}
		return false, nil
	case appointments.ContentTypeAppointment:
		_, ok := st.appointments[id]
		return ok, nil
	case appointments.ContentTypeStatus:
		for _, ss := range st.apptStatuses {
			for _, s := range ss {
				if s.ID == id {
					return true, nil
				}
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("%w: unknown content type %q", audit.ErrInvalidInput, contentType)
}
