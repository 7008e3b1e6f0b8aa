package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"manage-breast-screening/internal/domain/audit"
	"manage-breast-screening/internal/domain/clinics"
	"manage-breast-screening/internal/domain/participants"
	"manage-breast-screening/internal/platform/logger"
	"manage-breast-screening/internal/platform/metrics"
	"manage-breast-screening/internal/ports/tx"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("appointment not found")
	// ErrInvalidDecision is returned when a screening step gets no usable answer.
	ErrInvalidDecision = fmt.Errorf("%w: There is a problem", ErrInvalidInput)
)

// ClinicFinder loads the clinic a clinic-scoped list belongs to.
type ClinicFinder interface {
	Get(ctx context.Context, id string) (clinics.Summary, error)
}

// EpisodeFinder resolves the last known screening before an episode.
type EpisodeFinder interface {
	PreviousEpisode(ctx context.Context, episodeID uuid.UUID) (participants.ScreeningEpisode, bool, error)
}

// ParticipantFinder loads the participant a participant-scoped list belongs to.
type ParticipantFinder interface {
	GetByID(ctx context.Context, id string) (participants.Participant, error)
}

type Service struct {
	repo         Repository
	clinics      ClinicFinder
	episodes     EpisodeFinder
	participants ParticipantFinder
	tx       tx.Runner
	audits   *audit.Factory
	log      logger.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	loc      *time.Location
	now      func() time.Time
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

func WithEpisodes(e EpisodeFinder) Option {
	return func(s *Service) { s.episodes = e }
}

func WithParticipants(p ParticipantFinder) Option {
	return func(s *Service) { s.participants = p }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func NewService(repo Repository, cf ClinicFinder, txr tx.Runner, audits *audit.Factory, log logger.Logger, opts ...Option) *Service {
	if txr == nil {
		txr = tx.Passthrough
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		repo:    repo,
		clinics: cf,
		tx:      txr,
		audits:  audits,
		log:     log,
		tracer:  otel.Tracer("manage-breast-screening/internal/domain/appointments"),
		loc:     time.UTC,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Now() time.Time { return s.now() }

func (s *Service) Location() *time.Location { return s.loc }

// CurrentStatus is the newest status in history. Without history it falls
// back to an unsaved CONFIRMED record and logs a warning.
func (s *Service) CurrentStatus(appointmentID uuid.UUID, statuses []Status) Status {
	st, found := CurrentOrDefault(appointmentID, statuses)
	if !found {
		s.metrics.ObserveMissingStatus()
		s.log.Warn("appointment has no status history", map[string]any{
			"appointment_id": appointmentID.String(),
			"default_state":  string(StateConfirmed),
		})
	}
	return st
}

// List returns one page of appointments. Status history for the page is
// fetched with a single StatusesFor call.
func (s *Service) List(ctx context.Context, scope Scope, f Filter) ([]Item, error) {
	ctx, span := s.tracer.Start(ctx, "appointments.list")
	defer span.End()
	span.SetAttributes(attribute.String("appointments.filter", string(f)))

	if _, ok := filterStates[f]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, f)
	}

	listings, err := s.repo.List(ctx, f.Query(scope))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("appointments.count", len(listings)))
	return s.resolve(ctx, listings)
}

func (s *Service) resolve(ctx context.Context, listings []Listing) ([]Item, error) {
	out := make([]Item, 0, len(listings))
	if len(listings) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, len(listings))
	for i, l := range listings {
		ids[i] = l.Appointment.ID
	}
	statuses, err := s.repo.StatusesFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, l := range listings {
		h := statuses[l.Appointment.ID]
		out = append(out, Item{
			Listing:       l,
			Statuses:      h,
			CurrentStatus: s.CurrentStatus(l.Appointment.ID, h),
		})
	}
	return out, nil
}

// FilterCounts counts appointments in scope for every filter with the same
// predicate List uses.
func (s *Service) FilterCounts(ctx context.Context, scope Scope) (map[Filter]int, error) {
	ctx, span := s.tracer.Start(ctx, "appointments.filter_counts")
	defer span.End()

	out := make(map[Filter]int, len(filterStates))
	for _, f := range Filters() {
		n, err := s.repo.Count(ctx, f.Query(scope))
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("count %s appointments: %w", f, err)
		}
		out[f] = n
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Item, error) {
	aid, err := parseID(id)
	if err != nil {
		return Item{}, err
	}
	l, err := s.repo.GetListing(ctx, aid)
	if err != nil {
		return Item{}, err
	}
	items, err := s.resolve(ctx, []Listing{l})
	if err != nil {
		return Item{}, err
	}
	return items[0], nil
}

// Detail is an appointment with the participant's last known screening.
type Detail struct {
	Item
	LastKnownScreening *participants.ScreeningEpisode
}

func (s *Service) Show(ctx context.Context, id string) (Detail, error) {
	it, err := s.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	d := Detail{Item: it}
	if s.episodes == nil {
		return d, nil
	}

	prev, ok, err := s.episodes.PreviousEpisode(ctx, it.Appointment.ScreeningEpisodeID)
	if err != nil && !errors.Is(err, participants.ErrNotFound) {
		return Detail{}, err
	}
	if ok {
		d.LastKnownScreening = &prev
	}
	return d, nil
}

// ClinicView is the clinic page: the clinic, one filtered page of its
// appointments and the counts for every tab.
type ClinicView struct {
	Clinic       clinics.Summary
	Filter       Filter
	Appointments []Item
	Counts       map[Filter]int
}

func (s *Service) ForClinic(ctx context.Context, clinicID string, f Filter) (ClinicView, error) {
	c, err := s.clinics.Get(ctx, clinicID)
	if err != nil {
		return ClinicView{}, err
	}
	scope := ClinicScope(c.Clinic.ID)

	items, err := s.List(ctx, scope, f)
	if err != nil {
		return ClinicView{}, err
	}
	counts, err := s.FilterCounts(ctx, scope)
	if err != nil {
		return ClinicView{}, err
	}
	return ClinicView{Clinic: c, Filter: f, Appointments: items, Counts: counts}, nil
}

// ParticipantView is one participant's appointments under a filter, with
// the counts for every filter.
type ParticipantView struct {
	Participant  participants.Participant
	Filter       Filter
	Appointments []Item
	Counts       map[Filter]int
}

// ForParticipant fails with participants.ErrNotFound when a participant
// finder is wired and does not know participantID.
func (s *Service) ForParticipant(ctx context.Context, participantID string, f Filter) (ParticipantView, error) {
	pid, err := uuid.Parse(strings.TrimSpace(participantID))
	if err != nil {
		return ParticipantView{}, participants.ErrNotFound
	}
	var p participants.Participant
	if s.participants != nil {
		if p, err = s.participants.GetByID(ctx, pid.String()); err != nil {
			return ParticipantView{}, err
		}
	}
	scope := ParticipantScope(pid)

	items, err := s.List(ctx, scope, f)
	if err != nil {
		return ParticipantView{}, err
	}
	counts, err := s.FilterCounts(ctx, scope)
	if err != nil {
		return ParticipantView{}, err
	}
	return ParticipantView{Participant: p, Filter: f, Appointments: items, Counts: counts}, nil
}

// CheckIn appends CHECKED_IN.
func (s *Service) CheckIn(ctx context.Context, src audit.Source, id string) (Status, error) {
	return s.RecordOutcome(ctx, src, id, StateCheckedIn)
}

// CheckInAtClinic is CheckIn for an appointment that must belong to clinicID.
func (s *Service) CheckInAtClinic(ctx context.Context, src audit.Source, clinicID, id string) (Status, error) {
	cid, err := uuid.Parse(strings.TrimSpace(clinicID))
	if err != nil {
		return Status{}, clinics.ErrNotFound
	}
	return s.transition(ctx, src, id, StateCheckedIn, func(it Item) error {
		if it.Clinic.ID != cid {
			return ErrNotFound
		}
		return nil
	})
}

// RecordOutcome appends to, provided the transition table allows it from
// the current state.
func (s *Service) RecordOutcome(ctx context.Context, src audit.Source, id string, to State) (Status, error) {
	return s.transition(ctx, src, id, to, nil)
}

func (s *Service) transition(ctx context.Context, src audit.Source, id string, to State, check func(Item) error) (Status, error) {
	ctx, span := s.tracer.Start(ctx, "appointments.transition")
	defer span.End()
	span.SetAttributes(attribute.String("appointments.state", string(to)))

	if !to.Valid() {
		return Status{}, fmt.Errorf("%w: unknown appointment state %q", ErrInvalidInput, to)
	}
	auditor, err := s.audits.For(src)
	if err != nil {
		return Status{}, err
	}

	var out Status
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		it, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(it); err != nil {
				return err
			}
		}
		if err := checkTransition(it.CurrentStatus.State, to); err != nil {
			return err
		}

		st, err := s.appendStatus(ctx, auditor, it.Appointment.ID, to)
		if err != nil {
			return err
		}
		out = st
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return Status{}, err
	}

	s.metrics.ObserveStatusAppend("appointment", string(to))
	s.log.Info("appointment status appended", map[string]any{
		"appointment_id": out.AppointmentID.String(),
		"state":          string(to),
	})
	return out, nil
}

func (s *Service) appendStatus(ctx context.Context, auditor *audit.Auditor, appointmentID uuid.UUID, state State) (Status, error) {
	st, err := s.repo.AppendStatus(ctx, Status{
		ID:            uuid.New(),
		AppointmentID: appointmentID,
		State:         state,
		CreatedAt:     s.now(),
	})
	if err != nil {
		return Status{}, err
	}
	if _, err := auditor.Create(ctx, st); err != nil {
		return Status{}, err
	}
	return st, nil
}

// Next steps of the screening flow, relative to /appointments/{id}/.
const (
	StepAskForMedicalInformation = "ask-for-medical-information"
	StepRecordMedicalInformation = "record-medical-information"
	StepAwaitingImages           = "awaiting-images"
	StepCannotGoAhead            = "cannot-go-ahead"
	StepStartScreening           = "start-screening"
)

// StartScreening routes the clinician after the appointment details page.
func (s *Service) StartScreening(ctx context.Context, id, decision string) (string, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return "", err
	}
	switch strings.TrimSpace(decision) {
	case "continue":
		return StepAskForMedicalInformation, nil
	case "dropout":
		return StepCannotGoAhead, nil
	}
	return "", ErrInvalidDecision
}

// AskForMedicalInformation routes on whether the participant has medical
// information to record before imaging.
func (s *Service) AskForMedicalInformation(ctx context.Context, id, decision string) (string, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return "", err
	}
	switch strings.TrimSpace(decision) {
	case "yes":
		return StepRecordMedicalInformation, nil
	case "no":
		return StepAwaitingImages, nil
	}
	return "", ErrInvalidDecision
}

type CannotGoAheadInput struct {
	StoppedReasons []string
	Reinvite       bool
}

// CannotGoAhead records why screening stopped and appends
// ATTENDED_NOT_SCREENED, auditing both in the same transaction.
func (s *Service) CannotGoAhead(ctx context.Context, src audit.Source, id string, in CannotGoAheadInput) (Item, error) {
	reasons := make([]string, 0, len(in.StoppedReasons))
	for _, r := range in.StoppedReasons {
		if r = strings.TrimSpace(r); r != "" {
			reasons = append(reasons, r)
		}
	}
	if len(reasons) == 0 {
		return Item{}, fmt.Errorf("%w: select a reason why this appointment cannot continue", ErrInvalidInput)
	}

	auditor, err := s.audits.For(src)
	if err != nil {
		return Item{}, err
	}

	var out Item
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		it, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := checkTransition(it.CurrentStatus.State, StateAttendedNotScreened); err != nil {
			return err
		}

		a := it.Appointment
		a.StoppedReasons = reasons
		a.Reinvite = in.Reinvite
		a.UpdatedAt = s.now()
		if err := s.repo.Update(ctx, a); err != nil {
			return err
		}
		if _, err := auditor.Update(ctx, a); err != nil {
			return err
		}

		st, err := s.appendStatus(ctx, auditor, a.ID, StateAttendedNotScreened)
		if err != nil {
			return err
		}

		it.Appointment = a
		it.Statuses = append(it.Statuses, st)
		it.CurrentStatus = st
		out = it
		return nil
	})
	if err != nil {
		return Item{}, err
	}

	s.metrics.ObserveStatusAppend("appointment", string(StateAttendedNotScreened))
	s.log.Info("appointment cannot go ahead", map[string]any{
		"appointment_id": out.Appointment.ID.String(),
		"reinvite":       out.Appointment.Reinvite,
		"reasons":        len(out.Appointment.StoppedReasons),
	})
	return out, nil
}

func parseID(id string) (uuid.UUID, error) {
	aid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	return aid, nil
}
