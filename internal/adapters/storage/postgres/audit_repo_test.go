package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"manage-breast-screening/internal/domain/audit"
	"manage-breast-screening/internal/domain/participants"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRepo_InsertIsOneStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	actor := "user-1"
	at := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	logs := []audit.Log{
		{ID: uuid.New(), ContentType: "participants.participant", ObjectID: uuid.New(), Operation: audit.OperationCreate, Snapshot: map[string]any{"first_name": "Jo"}, ActorID: &actor, CreatedAt: at},
		{ID: uuid.New(), ContentType: "participants.participant", ObjectID: uuid.New(), Operation: audit.OperationCreate, Snapshot: map[string]any{"first_name": "Al"}, ActorID: &actor, CreatedAt: at},
	}

	mock.ExpectExec(regexp.QuoteMeta("VALUES ($1,$2,$3,$4,$5,$6,$7,$8),($9,$10,$11,$12,$13,$14,$15,$16)")).
		WithArgs(
			logs[0].ID, logs[0].ContentType, logs[0].ObjectID, "create", `{"first_name":"Jo"}`, actor, nil, at,
			logs[1].ID, logs[1].ContentType, logs[1].ObjectID, "create", `{"first_name":"Al"}`, actor, nil, at,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, NewAuditRepo(db).Insert(context.Background(), logs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepo_InsertNothing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, NewAuditRepo(db).Insert(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepo_ListForObject(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	objectID := uuid.New()
	logID := uuid.New()
	at := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "content_type", "object_id", "operation", "snapshot", "actor_id", "system_update_id", "created_at"}).
		AddRow(logID.String(), "participants.participant", objectID.String(), "update", []byte(`{"age":70}`), nil, "seed", at)
	mock.ExpectQuery("FROM audit_logs").
		WithArgs("participants.participant", objectID).
		WillReturnRows(rows)

	got, err := NewAuditRepo(db).ListForObject(context.Background(), "participants.participant", objectID)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, logID, got[0].ID)
	assert.Equal(t, audit.OperationUpdate, got[0].Operation)
	assert.Nil(t, got[0].ActorID)
	require.NotNil(t, got[0].SystemUpdateID)
	assert.Equal(t, "seed", *got[0].SystemUpdateID)
	assert.Equal(t, "70", got[0].Snapshot["age"].(interface{ String() string }).String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocator_Exists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM participant_addresses WHERE id = $1)")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := NewLocator(db).Exists(context.Background(), participants.ContentTypeAddress, id)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = NewLocator(db).Exists(context.Background(), "unknown.thing", id)
	assert.ErrorIs(t, err, audit.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}
