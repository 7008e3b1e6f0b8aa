// Package seed loads a demo data set: one provider with a setting, clinics
// yesterday, today and tomorrow, and participants booked into them. Every
// row is audited under a system update id.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"manage-breast-screening/internal/domain/appointments"
	"manage-breast-screening/internal/domain/audit"
	"manage-breast-screening/internal/domain/clinics"
	"manage-breast-screening/internal/domain/participants"
	"manage-breast-screening/internal/platform/format"
	"manage-breast-screening/internal/platform/logger"
	"manage-breast-screening/internal/ports/tx"

	"github.com/google/uuid"
)

const DefaultSystemUpdateID = "seed"

type Repos struct {
	Tx           tx.Runner
	Participants participants.Repository
	Clinics      clinics.Repository
	Appointments appointments.Repository
}

type Options struct {
	Now            time.Time
	Location       *time.Location
	SystemUpdateID string
	Log            logger.Logger
}

// Result holds what was created, for callers that want to print ids.
type Result struct {
	Clinics      []clinics.Clinic
	Participants []participants.Participant
	Appointments []appointments.Appointment
}

type person struct {
	first, last, nhs, background string
	dob                          string
	previousYears                int // 0 = first screening
}

var people = []person{
	{"Janet", "Williams", "9990090082", "english_welsh_scottish_ni_british", "1955-01-01", 3},
	{"Priya", "Sharma", "9990090104", "indian", "1968-07-14", 3},
	{"Grace", "Okafor", "9990090120", "african", "1971-03-02", 0},
	{"Mary", "O'Brien", "9990090147", "irish", "1962-11-23", 6},
	{"Helen", "Taylor", "9990090163", "", "1959-05-30", 3},
	{"Li", "Wei", "9990090180", "chinese", "1974-09-09", 0},
}

// slot plan per clinic: offset from clinic start and state history.
type booking struct {
	offset  time.Duration
	history []appointments.State
}

var (
	todayBookings = []booking{
		{0, []appointments.State{appointments.StateConfirmed, appointments.StateCheckedIn, appointments.StateScreened}},
		{30 * time.Minute, []appointments.State{appointments.StateConfirmed, appointments.StateCheckedIn}},
		{60 * time.Minute, []appointments.State{appointments.StateConfirmed}},
		{90 * time.Minute, []appointments.State{appointments.StateConfirmed, appointments.StateCancelled}},
	}
	yesterdayBookings = []booking{
		{0, []appointments.State{appointments.StateConfirmed, appointments.StateCheckedIn, appointments.StateScreened}},
		{30 * time.Minute, []appointments.State{appointments.StateConfirmed, appointments.StateDidNotAttend}},
	}
	tomorrowBookings = []booking{
		{0, []appointments.State{appointments.StateConfirmed}},
		{30 * time.Minute, []appointments.State{appointments.StateConfirmed}},
	}
)

const slotsPerClinic = 8

// Run writes the data set inside one transaction. The audit rows of each
// entity group are written as one batch.
func Run(ctx context.Context, repos Repos, factory *audit.Factory, opts Options) (Result, error) {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.SystemUpdateID == "" {
		opts.SystemUpdateID = DefaultSystemUpdateID
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if repos.Tx == nil {
		repos.Tx = tx.Passthrough
	}

	auditor, err := factory.ForSystemUpdate(opts.SystemUpdateID)
	if err != nil {
		return Result{}, err
	}

	b := newBuilder(opts.Now, opts.Location)
	b.build()

	err = repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		return b.write(ctx, repos, auditor)
	})
	if err != nil {
		return Result{}, fmt.Errorf("seed: %w", err)
	}

	opts.Log.Info("seed data loaded", map[string]any{
		"system_update_id": opts.SystemUpdateID,
		"clinics":          len(b.clinics),
		"participants":     len(b.participants),
		"appointments":     len(b.appointments),
	})
	return Result{
		Clinics:      b.clinics,
		Participants: b.participants,
		Appointments: b.appointments,
	}, nil
}

type builder struct {
	now time.Time
	loc *time.Location

	provider     clinics.Provider
	setting      clinics.Setting
	clinics      []clinics.Clinic
	slots        []clinics.Slot
	clinicStatus []clinics.Status

	participants []participants.Participant
	episodes     []participants.ScreeningEpisode
	current      map[uuid.UUID]participants.ScreeningEpisode

	appointments []appointments.Appointment
	apptStatus   []appointments.Status
}

func newBuilder(now time.Time, loc *time.Location) *builder {
	return &builder{now: now, loc: loc, current: make(map[uuid.UUID]participants.ScreeningEpisode)}
}

func (b *builder) build() {
	b.provider = clinics.Provider{ID: uuid.New(), Name: "West of England Breast Screening Service", CreatedAt: b.now, UpdatedAt: b.now}
	b.setting = clinics.Setting{ID: uuid.New(), Name: "West of England Mobile Unit", ProviderID: b.provider.ID, CreatedAt: b.now, UpdatedAt: b.now}

	for _, p := range people {
		dob, _ := time.Parse("2006-01-02", p.dob)
		pt := participants.Participant{
			ID:                 uuid.New(),
			FirstName:          p.first,
			LastName:           p.last,
			Gender:             "Female",
			NHSNumber:          p.nhs,
			Phone:              "07700900000",
			Email:              fmt.Sprintf("%s.%s@example.com", emailPart(p.first), emailPart(p.last)),
			DateOfBirth:        dob,
			EthnicBackgroundID: p.background,
			RiskLevel:          "Routine",
			CreatedAt:          b.now,
			UpdatedAt:          b.now,
		}
		b.participants = append(b.participants, pt)

		if p.previousYears > 0 {
			at := b.now.AddDate(-p.previousYears, 0, 0)
			b.episodes = append(b.episodes, participants.ScreeningEpisode{ID: uuid.New(), ParticipantID: pt.ID, CreatedAt: at, UpdatedAt: at})
		}
		ep := participants.ScreeningEpisode{ID: uuid.New(), ParticipantID: pt.ID, CreatedAt: b.now, UpdatedAt: b.now}
		b.episodes = append(b.episodes, ep)
		b.current[pt.ID] = ep
	}

	today := format.StartOfDay(b.now, b.loc)
	b.addClinic(today.AddDate(0, 0, -1).Add(9*time.Hour), clinics.RiskTypeRoutine, clinics.StateClosed, yesterdayBookings)
	b.addClinic(today.Add(9*time.Hour), clinics.RiskTypeMobile, clinics.StateInProgress, todayBookings)
	b.addClinic(today.AddDate(0, 0, 1).Add(13*time.Hour), clinics.RiskTypeMixed, clinics.StateScheduled, tomorrowBookings)
}

func (b *builder) addClinic(start time.Time, risk clinics.RiskType, state clinics.State, bookings []booking) {
	c := clinics.Clinic{
		ID:        uuid.New(),
		SettingID: b.setting.ID,
		Setting:   b.setting,
		StartsAt:  start,
		EndsAt:    start.Add(slotsPerClinic * 30 * time.Minute),
		Type:      clinics.TypeScreening,
		RiskType:  risk,
		CreatedAt: b.now,
		UpdatedAt: b.now,
	}
	b.clinics = append(b.clinics, c)
	b.clinicStatus = append(b.clinicStatus, clinics.Status{ID: uuid.New(), ClinicID: c.ID, State: state, CreatedAt: b.now})

	slotAt := make(map[time.Duration]clinics.Slot, slotsPerClinic)
	for i := 0; i < slotsPerClinic; i++ {
		offset := time.Duration(i) * 30 * time.Minute
		s := clinics.Slot{ID: uuid.New(), ClinicID: c.ID, StartsAt: start.Add(offset), DurationInMinutes: 30, CreatedAt: b.now, UpdatedAt: b.now}
		b.slots = append(b.slots, s)
		slotAt[offset] = s
	}

	for i, bk := range bookings {
		pt := b.participants[(len(b.clinics)+i)%len(b.participants)]
		a := appointments.Appointment{
			ID:                 uuid.New(),
			ScreeningEpisodeID: b.current[pt.ID].ID,
			ClinicSlotID:       slotAt[bk.offset].ID,
			CreatedAt:          b.now,
			UpdatedAt:          b.now,
		}
		b.appointments = append(b.appointments, a)
		for j, st := range bk.history {
			at := b.now.Add(time.Duration(j-len(bk.history)) * time.Minute)
			b.apptStatus = append(b.apptStatus, appointments.Status{ID: uuid.New(), AppointmentID: a.ID, State: st, CreatedAt: at})
		}
	}
}

func (b *builder) write(ctx context.Context, repos Repos, auditor *audit.Auditor) error {
	if err := repos.Clinics.CreateProvider(ctx, b.provider); err != nil {
		return err
	}
	if err := repos.Clinics.CreateSetting(ctx, b.setting); err != nil {
		return err
	}
	for _, c := range b.clinics {
		if err := repos.Clinics.Create(ctx, c); err != nil {
			return err
		}
	}
	if err := repos.Clinics.CreateSlots(ctx, b.slots); err != nil {
		return err
	}
	for i, s := range b.clinicStatus {
		saved, err := repos.Clinics.AppendStatus(ctx, s)
		if err != nil {
			return err
		}
		b.clinicStatus[i] = saved
	}
	if err := repos.Participants.CreateMany(ctx, b.participants); err != nil {
		return err
	}
	if err := repos.Participants.CreateEpisodes(ctx, b.episodes); err != nil {
		return err
	}
	if err := repos.Appointments.CreateMany(ctx, b.appointments); err != nil {
		return err
	}
	saved, err := repos.Appointments.AppendStatuses(ctx, b.apptStatus)
	if err != nil {
		return err
	}
	b.apptStatus = saved

	groups := [][]audit.Auditable{
		{b.provider, b.setting},
		audit.Auditables(b.clinics),
		audit.Auditables(b.slots),
		audit.Auditables(b.clinicStatus),
		audit.Auditables(b.participants),
		audit.Auditables(b.episodes),
		audit.Auditables(b.appointments),
		audit.Auditables(b.apptStatus),
	}
	for _, g := range groups {
		if _, err := auditor.BulkCreate(ctx, g); err != nil {
			return err
		}
	}
	return nil
}

func emailPart(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "'", "")
}
