package seed

import (
	"context"
	"errors"
	"testing"
	"time"

	"manage-breast-screening/internal/adapters/storage/memory"
	"manage-breast-screening/internal/domain/appointments"
	"manage-breast-screening/internal/domain/audit"
	"manage-breast-screening/internal/domain/clinics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_LoadsAuditedDataSet(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := Repos{
		Tx:           store,
		Participants: store.Participants(),
		Clinics:      store.Clinics(),
		Appointments: store.Appointments(),
	}
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	res, err := Run(ctx, repos, audit.NewFactory(store.Audit()), Options{Now: now})
	require.NoError(t, err)
	require.Len(t, res.Clinics, 3)
	assert.Len(t, res.Participants, len(people))
	assert.Len(t, res.Appointments, len(yesterdayBookings)+len(todayBookings)+len(tomorrowBookings))

	todays, err := store.Clinics().List(ctx, clinics.ListFilter{Range: clinics.FilterToday.Range(now, time.UTC)})
	require.NoError(t, err)
	require.Len(t, todays, 1)

	scope := appointments.ClinicScope(todays[0].ID)
	for f, want := range map[appointments.Filter]int{
		appointments.FilterRemaining: 2,
		appointments.FilterCheckedIn: 1,
		appointments.FilterComplete:  2,
		appointments.FilterAll:       4,
	} {
		n, err := store.Appointments().Count(ctx, f.Query(scope))
		require.NoError(t, err)
		assert.Equal(t, want, n, f)
	}

	trail, err := store.Audit().ListForObject(ctx, appointments.ContentTypeAppointment, res.Appointments[0].ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, audit.OperationCreate, trail[0].Operation)
	require.NotNil(t, trail[0].SystemUpdateID)
	assert.Equal(t, DefaultSystemUpdateID, *trail[0].SystemUpdateID)
	assert.Nil(t, trail[0].ActorID)
}

type failingAudit struct{ audit.Repository }

func (failingAudit) Insert(context.Context, []audit.Log) error { return errors.New("audit store down") }

func TestRun_RollsBackWhenAuditFails(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := Repos{
		Tx:           store,
		Participants: store.Participants(),
		Clinics:      store.Clinics(),
		Appointments: store.Appointments(),
	}

	_, err := Run(ctx, repos, audit.NewFactory(failingAudit{store.Audit()}), Options{})
	require.Error(t, err)

	n, err := store.Clinics().Count(ctx, clinics.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRun_RequiresSystemUpdateID(t *testing.T) {
	store := memory.NewStore()
	_, err := Run(context.Background(), Repos{Clinics: store.Clinics()}, audit.NewFactory(store.Audit()), Options{SystemUpdateID: " "})
	assert.ErrorIs(t, err, audit.ErrAnonymousAudit)
}
