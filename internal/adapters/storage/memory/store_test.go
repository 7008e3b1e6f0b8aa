package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"manage-breast-screening/internal/domain/appointments"
	"manage-breast-screening/internal/domain/audit"
	"manage-breast-screening/internal/domain/clinics"
	"manage-breast-screening/internal/domain/participants"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store    *Store
	clinic   clinics.Clinic
	slot     clinics.Slot
	person   participants.Participant
	episode  participants.ScreeningEpisode
	apptID   uuid.UUID
	otherApp uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	s := NewStore()

	f := fixture{store: s}
	provider := clinics.Provider{ID: uuid.New(), Name: "West of England BSS"}
	setting := clinics.Setting{ID: uuid.New(), Name: "Bristol Mobile Unit", ProviderID: provider.ID}
	f.clinic = clinics.Clinic{ID: uuid.New(), SettingID: setting.ID, StartsAt: t0, EndsAt: t0.Add(6 * time.Hour), Type: clinics.TypeScreening, RiskType: clinics.RiskTypeRoutine}
	f.slot = clinics.Slot{ID: uuid.New(), ClinicID: f.clinic.ID, StartsAt: t0, DurationInMinutes: 30}
	later := clinics.Slot{ID: uuid.New(), ClinicID: f.clinic.ID, StartsAt: t0.Add(time.Hour), DurationInMinutes: 30}

	f.person = participants.Participant{ID: uuid.New(), FirstName: "Janet", LastName: "Williams", CreatedAt: t0}
	f.episode = participants.ScreeningEpisode{ID: uuid.New(), ParticipantID: f.person.ID, CreatedAt: t0}

	f.apptID, f.otherApp = uuid.New(), uuid.New()

	require.NoError(t, s.Clinics().CreateProvider(ctx, provider))
	require.NoError(t, s.Clinics().CreateSetting(ctx, setting))
	require.NoError(t, s.Clinics().Create(ctx, f.clinic))
	require.NoError(t, s.Clinics().CreateSlots(ctx, []clinics.Slot{later, f.slot}))
	require.NoError(t, s.Participants().Create(ctx, f.person))
	require.NoError(t, s.Participants().CreateEpisode(ctx, f.episode))
	require.NoError(t, s.Appointments().CreateMany(ctx, []appointments.Appointment{
		{ID: f.otherApp, ScreeningEpisodeID: f.episode.ID, ClinicSlotID: later.ID},
		{ID: f.apptID, ScreeningEpisodeID: f.episode.ID, ClinicSlotID: f.slot.ID},
	}))
	return f
}

func TestStore_ListOrdersBySlotAndFiltersOnCurrentState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := f.store.Appointments()

	_, err := repo.AppendStatuses(ctx, []appointments.Status{
		{ID: uuid.New(), AppointmentID: f.otherApp, State: appointments.StateConfirmed, CreatedAt: t0},
		{ID: uuid.New(), AppointmentID: f.otherApp, State: appointments.StateCheckedIn, CreatedAt: t0},
	})
	require.NoError(t, err)

	all, err := repo.List(ctx, appointments.FilterAll.Query(appointments.ClinicScope(f.clinic.ID)))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, f.apptID, all[0].Appointment.ID)
	assert.Equal(t, "Bristol Mobile Unit", all[0].Clinic.Setting.Name)

	checkedIn, err := repo.Count(ctx, appointments.FilterCheckedIn.Query(appointments.ClinicScope(f.clinic.ID)))
	require.NoError(t, err)
	assert.Equal(t, 1, checkedIn)

	// no history counts as confirmed
	remaining, err := repo.Count(ctx, appointments.FilterRemaining.Query(appointments.ParticipantScope(f.person.ID)))
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
}

func TestStore_AppendStatusesAssignsIncreasingSeq(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.store.Appointments().AppendStatuses(ctx, []appointments.Status{
		{ID: uuid.New(), AppointmentID: f.apptID, State: appointments.StateCheckedIn, CreatedAt: t0},
		{ID: uuid.New(), AppointmentID: f.apptID, State: appointments.StateScreened, CreatedAt: t0},
	})
	require.NoError(t, err)
	assert.Less(t, got[0].Seq, got[1].Seq)

	history, err := f.store.Appointments().StatusesFor(ctx, []uuid.UUID{f.apptID})
	require.NoError(t, err)
	latest, _ := appointments.Latest(history[f.apptID])
	assert.Equal(t, appointments.StateScreened, latest.State)
}

func TestStore_WithinTxRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := f.store.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := f.store.Appointments().AppendStatus(ctx, appointments.Status{ID: uuid.New(), AppointmentID: f.apptID, State: appointments.StateCheckedIn, CreatedAt: t0}); err != nil {
			return err
		}
		if err := f.store.Audit().Insert(ctx, []audit.Log{{ID: uuid.New(), ContentType: appointments.ContentTypeStatus}}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	history, err := f.store.Appointments().StatusesFor(ctx, []uuid.UUID{f.apptID})
	require.NoError(t, err)
	assert.Empty(t, history[f.apptID])
	assert.Empty(t, f.store.st.auditLogs)
}

func TestStore_WriteOutsideTxSurvivesRollback(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p := participants.Participant{ID: uuid.New(), FirstName: "Li", LastName: "Wei"}
	boom := errors.New("boom")

	written := make(chan error, 1)
	err := s.WithinTx(ctx, func(context.Context) error {
		go func() { written <- s.Participants().Create(ctx, p) }()
		time.Sleep(20 * time.Millisecond)
		assert.Empty(t, written, "write ran inside the transaction")
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, <-written)

	got, err := s.Participants().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Li", got.FirstName)
}

func TestStore_NestedTxJoinsOuter(t *testing.T) {
	s := NewStore()
	calls := 0
	err := s.WithinTx(context.Background(), func(ctx context.Context) error {
		return s.WithinTx(ctx, func(context.Context) error {
			calls++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestAuditRepo_RefusesRewrite(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	log := audit.Log{ID: uuid.New(), ContentType: participants.ContentTypeParticipant, ObjectID: uuid.New(), CreatedAt: t0}

	require.NoError(t, s.Audit().Insert(ctx, []audit.Log{log}))
	log.Operation = audit.OperationDelete
	assert.ErrorIs(t, s.Audit().Insert(ctx, []audit.Log{log}), audit.ErrImmutableAuditLog)

	got, err := s.Audit().ListForObject(ctx, log.ContentType, log.ObjectID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Operation)
}

func TestParticipantsService_AddressLifecycleIsAudited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	factory := audit.NewFactory(f.store.Audit(), audit.WithLocator(f.store.Locator()))
	svc := participants.NewService(f.store.Participants(), f.store, factory, nil)
	src := audit.Source{ActorID: "user-1"}

	p, err := svc.SetAddress(ctx, src, f.person.ID.String(), participants.AddressInput{Lines: []string{"1 High Street", "Bristol"}, Postcode: "BS1 1AA"})
	require.NoError(t, err)
	require.NotNil(t, p.Address)
	addrID := p.Address.ID

	p, err = svc.SetAddress(ctx, src, f.person.ID.String(), participants.AddressInput{Lines: []string{"2 High Street"}, Postcode: "BS1 1AA"})
	require.NoError(t, err)
	assert.Equal(t, addrID, p.Address.ID)

	require.NoError(t, svc.RemoveAddress(ctx, src, f.person.ID.String()))

	trail, err := f.store.Audit().ListForObject(ctx, participants.ContentTypeAddress, addrID)
	require.NoError(t, err)
	require.Len(t, trail, 3)
	assert.Equal(t, audit.OperationDelete, trail[0].Operation)
	assert.Equal(t, audit.OperationUpdate, trail[1].Operation)
	assert.Equal(t, audit.OperationCreate, trail[2].Operation)

	ok, err := f.store.Locator().Exists(ctx, participants.ContentTypeAddress, addrID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocator_UnknownContentType(t *testing.T) {
	_, err := NewStore().Locator().Exists(context.Background(), "unknown.thing", uuid.New())
	assert.ErrorIs(t, err, audit.ErrInvalidInput)
}
