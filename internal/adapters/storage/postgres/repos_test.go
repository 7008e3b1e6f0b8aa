package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"manage-breast-screening/internal/domain/appointments"
	"manage-breast-screening/internal/domain/clinics"
	"manage-breast-screening/internal/domain/participants"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantsRepo_GetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery("FROM participants p").WithArgs(id).WillReturnError(sql.ErrNoRows)

	_, err = NewParticipantsRepo(db).GetByID(context.Background(), id)
	assert.ErrorIs(t, err, participants.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantsRepo_UpdateMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE participants").WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewParticipantsRepo(db).Update(context.Background(), participants.Participant{ID: uuid.New()})
	assert.ErrorIs(t, err, participants.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantsRepo_CreateManyIsOneStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("($15,")).WillReturnResult(sqlmock.NewResult(0, 2))

	err = NewParticipantsRepo(db).CreateMany(context.Background(), []participants.Participant{
		{ID: uuid.New(), FirstName: "Janet"},
		{ID: uuid.New(), FirstName: "Ada"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClinicsRepo_CountSlotsAndStatuses(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	a, b := uuid.New(), uuid.New()
	at := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM clinic_slots").
		WillReturnRows(sqlmock.NewRows([]string{"clinic_id", "count"}).AddRow(a.String(), 12))
	mock.ExpectQuery("FROM clinic_statuses").
		WillReturnRows(sqlmock.NewRows([]string{"id", "clinic_id", "state", "created_at", "seq"}).
			AddRow(uuid.NewString(), a.String(), "IN_PROGRESS", at, 2).
			AddRow(uuid.NewString(), a.String(), "SCHEDULED", at, 1))

	repo := NewClinicsRepo(db)
	counts, err := repo.CountSlots(context.Background(), []uuid.UUID{a, b})
	require.NoError(t, err)
	assert.Equal(t, 12, counts[a])
	assert.Equal(t, 0, counts[b])

	statuses, err := repo.StatusesFor(context.Background(), []uuid.UUID{a, b})
	require.NoError(t, err)
	require.Len(t, statuses[a], 2)
	assert.Equal(t, clinics.StateInProgress, statuses[a][0].State)
	assert.Equal(t, int64(2), statuses[a][0].Seq)
	assert.Empty(t, statuses[b])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClinicsRepo_ListUsesHalfOpenRange(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.starts_at >= $1 AND c.starts_at < $2")).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows(nil))

	got, err := NewClinicsRepo(db).List(context.Background(), clinics.ListFilter{Range: clinics.DateRange{From: from, To: to}})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClinicsRepo_GetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM clinics c").WillReturnError(sql.ErrNoRows)

	_, err = NewClinicsRepo(db).GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, clinics.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryClause(t *testing.T) {
	clinicID := uuid.New()

	where, args := queryClause(appointments.FilterRemaining.Query(appointments.ClinicScope(clinicID)))
	assert.Contains(t, where, "cs.clinic_id = $1")
	assert.Contains(t, where, "'CONFIRMED')")
	assert.Contains(t, where, "= ANY($2::text[])")
	assert.Len(t, args, 2)

	where, args = queryClause(appointments.FilterAll.Query(appointments.Scope{}))
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestAppointmentsRepo_CountFiltersOnCurrentState(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	clinicID := uuid.New()
	mock.ExpectQuery(`SELECT COUNT\(\*\)(.|\n)*COALESCE\(`).
		WithArgs(clinicID, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := NewAppointmentsRepo(db).Count(context.Background(),
		appointments.FilterCheckedIn.Query(appointments.ClinicScope(clinicID)))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentsRepo_AppendStatusesReturnsSeq(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	apptID := uuid.New()
	at := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	first := appointments.Status{ID: uuid.New(), AppointmentID: apptID, State: appointments.StateCheckedIn, CreatedAt: at}
	second := appointments.Status{ID: uuid.New(), AppointmentID: apptID, State: appointments.StateScreened, CreatedAt: at}

	mock.ExpectQuery("INSERT INTO appointment_statuses").
		WillReturnRows(sqlmock.NewRows([]string{"id", "seq"}).
			AddRow(second.ID.String(), 8).
			AddRow(first.ID.String(), 7))

	got, err := NewAppointmentsRepo(db).AppendStatuses(context.Background(), []appointments.Status{first, second})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, int64(7), got[0].Seq)
	assert.Equal(t, int64(8), got[1].Seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentsRepo_GetListingNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM appointments a").WillReturnError(sql.ErrNoRows)

	_, err = NewAppointmentsRepo(db).GetListing(context.Background(), uuid.New())
	assert.ErrorIs(t, err, appointments.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
