package clinics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"manage-breast-screening/internal/domain/audit"
	"manage-breast-screening/internal/platform/history"
	"manage-breast-screening/internal/platform/logger"
	"manage-breast-screening/internal/platform/metrics"
	"manage-breast-screening/internal/ports/tx"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("clinic not found")
)

// Summary is a clinic with the data its list row needs.
type Summary struct {
	Clinic        Clinic
	CurrentStatus *Status
	NumberOfSlots int
}

type Service struct {
	repo    Repository
	tx      tx.Runner
	audits  *audit.Factory
	log     logger.Logger
	metrics *metrics.Metrics
	loc     *time.Location
	now     func() time.Time
}

type Option func(*Service)

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo Repository, txr tx.Runner, audits *audit.Factory, log logger.Logger, opts ...Option) *Service {
	if txr == nil {
		txr = tx.Passthrough
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		repo:   repo,
		tx:     txr,
		audits: audits,
		log:    log,
		loc:    time.UTC,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Now() time.Time { return s.now() }

func (s *Service) Location() *time.Location { return s.loc }

// List returns the clinics matching f, with statuses and slot counts
// fetched once for the whole page.
func (s *Service) List(ctx context.Context, f Filter) ([]Summary, error) {
	clinics, err := s.repo.List(ctx, ListFilter{Range: f.Range(s.now(), s.loc)})
	if err != nil {
		return nil, err
	}
	return s.summarise(ctx, clinics)
}

func (s *Service) Get(ctx context.Context, id string) (Summary, error) {
	cid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return Summary{}, ErrNotFound
	}
	c, err := s.repo.GetByID(ctx, cid)
	if err != nil {
		return Summary{}, err
	}
	out, err := s.summarise(ctx, []Clinic{c})
	if err != nil {
		return Summary{}, err
	}
	return out[0], nil
}

// GetSlot is used by appointment presenters.
func (s *Service) GetSlot(ctx context.Context, id uuid.UUID) (Slot, error) {
	return s.repo.GetSlot(ctx, id)
}

func (s *Service) summarise(ctx context.Context, clinics []Clinic) ([]Summary, error) {
	out := make([]Summary, 0, len(clinics))
	if len(clinics) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, len(clinics))
	for i, c := range clinics {
		ids[i] = c.ID
	}
	statuses, err := s.repo.StatusesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	slots, err := s.repo.CountSlots(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, c := range clinics {
		sum := Summary{Clinic: c, NumberOfSlots: slots[c.ID]}
		if st, ok := history.Latest(statuses[c.ID]); ok {
			sum.CurrentStatus = &st
		}
		out = append(out, sum)
	}
	return out, nil
}

// FilterCounts counts clinics for every filter.
func (s *Service) FilterCounts(ctx context.Context) (map[Filter]int, error) {
	now := s.now()
	out := make(map[Filter]int, len(Filters()))
	for _, f := range Filters() {
		n, err := s.repo.Count(ctx, ListFilter{Range: f.Range(now, s.loc)})
		if err != nil {
			return nil, fmt.Errorf("count %s clinics: %w", f, err)
		}
		out[f] = n
	}
	return out, nil
}

// UpdateStatus appends a status record. The clinic's history is never rewritten.
func (s *Service) UpdateStatus(ctx context.Context, src audit.Source, id string, state State) (Status, error) {
	if !state.Valid() {
		return Status{}, fmt.Errorf("%w: unknown clinic state %q", ErrInvalidInput, state)
	}
	cid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return Status{}, ErrNotFound
	}

	auditor, err := s.audits.For(src)
	if err != nil {
		return Status{}, err
	}

	var out Status
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, cid); err != nil {
			return err
		}
		st, err := s.repo.AppendStatus(ctx, Status{
			ID:        uuid.New(),
			ClinicID:  cid,
			State:     state,
			CreatedAt: s.now(),
		})
		if err != nil {
			return err
		}
		if _, err := auditor.Create(ctx, st); err != nil {
			return err
		}
		out = st
		return nil
	})
	if err != nil {
		return Status{}, err
	}

	s.metrics.ObserveStatusAppend("clinic", string(state))
	s.log.Info("clinic status appended", map[string]any{
		"clinic_id": cid.String(),
		"state":     string(state),
	})
	return out, nil
}
