package memory

import (
	"context"
	"maps"
	"sync"

	"manage-breast-screening/internal/domain/appointments"
	"manage-breast-screening/internal/domain/audit"
	"manage-breast-screening/internal/domain/clinics"
	"manage-breast-screening/internal/domain/participants"

	"github.com/google/uuid"
)

// state holds every table of the store. Participants are kept without their
// address; addresses are keyed by participant id.
type state struct {
	participants map[uuid.UUID]participants.Participant
	addresses    map[uuid.UUID]participants.Address
	episodes     map[uuid.UUID]participants.ScreeningEpisode

	providers      map[uuid.UUID]clinics.Provider
	settings       map[uuid.UUID]clinics.Setting
	clinics        map[uuid.UUID]clinics.Clinic
	slots          map[uuid.UUID]clinics.Slot
	clinicStatuses map[uuid.UUID][]clinics.Status

	appointments map[uuid.UUID]appointments.Appointment
	apptStatuses map[uuid.UUID][]appointments.Status

	auditLogs []audit.Log
	auditIDs  map[uuid.UUID]struct{}

	seq int64
}

func newState() state {
	return state{
		participants:   make(map[uuid.UUID]participants.Participant),
		addresses:      make(map[uuid.UUID]participants.Address),
		episodes:       make(map[uuid.UUID]participants.ScreeningEpisode),
		providers:      make(map[uuid.UUID]clinics.Provider),
		settings:       make(map[uuid.UUID]clinics.Setting),
		clinics:        make(map[uuid.UUID]clinics.Clinic),
		slots:          make(map[uuid.UUID]clinics.Slot),
		clinicStatuses: make(map[uuid.UUID][]clinics.Status),
		appointments:   make(map[uuid.UUID]appointments.Appointment),
		apptStatuses:   make(map[uuid.UUID][]appointments.Status),
		auditIDs:       make(map[uuid.UUID]struct{}),
	}
}

// clone copies every map and history slice. Struct values are copied by
// value; their inner slices are never mutated in place by the repos.
func (st state) clone() state {
	out := state{
		participants:   maps.Clone(st.participants),
		addresses:      maps.Clone(st.addresses),
		episodes:       maps.Clone(st.episodes),
		providers:      maps.Clone(st.providers),
		settings:       maps.Clone(st.settings),
		clinics:        maps.Clone(st.clinics),
		slots:          maps.Clone(st.slots),
		clinicStatuses: make(map[uuid.UUID][]clinics.Status, len(st.clinicStatuses)),
		appointments:   maps.Clone(st.appointments),
		apptStatuses:   make(map[uuid.UUID][]appointments.Status, len(st.apptStatuses)),
		auditLogs:      append([]audit.Log(nil), st.auditLogs...),
		auditIDs:       maps.Clone(st.auditIDs),
		seq:            st.seq,
	}
	for k, v := range st.clinicStatuses {
		out.clinicStatuses[k] = append([]clinics.Status(nil), v...)
	}
	for k, v := range st.apptStatuses {
		out.apptStatuses[k] = append([]appointments.Status(nil), v...)
	}
	return out
}

// Store is an in-process database used in dev mode and end-to-end tests.
// Transactions are serialised and roll back by restoring a snapshot. Writes
// outside a transaction wait for the running one; reads do not, so they can
// see uncommitted rows.
type Store struct {
	txMu sync.Mutex

	mu sync.RWMutex
	st state
}

func NewStore() *Store {
	return &Store{st: newState()}
}

type txKey struct{}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	saved := s.st.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.st = saved
		s.mu.Unlock()
		return err
	}
	return nil
}

// lockForWrite takes the write lock. Outside a transaction it also holds
// txMu so a rollback cannot discard the write.
func (s *Store) lockForWrite(ctx context.Context) (unlock func()) {
	inTx := ctx.Value(txKey{}) != nil
	if !inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !inTx {
			s.txMu.Unlock()
		}
	}
}

func (s *Store) nextSeq() int64 {
	s.st.seq++
	return s.st.seq
}

func (s *Store) Participants() *ParticipantsRepo { return &ParticipantsRepo{s: s} }
func (s *Store) Clinics() *ClinicsRepo           { return &ClinicsRepo{s: s} }
func (s *Store) Appointments() *AppointmentsRepo { return &AppointmentsRepo{s: s} }
func (s *Store) Audit() *AuditRepo               { return &AuditRepo{s: s} }
func (s *Store) Locator() *Locator               { return &Locator{s: s} }
