package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"manage-breast-screening/internal/domain/appointments"
	"manage-breast-screening/internal/domain/audit"
	"manage-breast-screening/internal/domain/clinics"
	"manage-breast-screening/internal/domain/participants"

	"github.com/google/uuid"
)

const auditLogColumns = 8

type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Insert writes every log with one multi-row INSERT.
func (r *AuditRepo) Insert(ctx context.Context, logs []audit.Log) error {
	if len(logs) == 0 {
		return nil
	}

	args := make([]any, 0, len(logs)*auditLogColumns)
	for _, l := range logs {
		snapshot, err := json.Marshal(l.Snapshot)
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		args = append(args,
			l.ID,
			l.ContentType,
			l.ObjectID,
			string(l.Operation),
			string(snapshot),
			toNullStringPtr(l.ActorID),
			toNullStringPtr(l.SystemUpdateID),
			l.CreatedAt,
		)
	}

	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO audit_logs (
			id, content_type, object_id, operation,
			snapshot, actor_id, system_update_id, created_at
		) VALUES `+placeholders(len(logs), auditLogColumns), args...)
	return err
}

func (r *AuditRepo) ListForObject(ctx context.Context, contentType string, objectID uuid.UUID) ([]audit.Log, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `
		SELECT
			id, content_type, object_id, operation,
			snapshot, actor_id, system_update_id, created_at
		FROM audit_logs
		WHERE content_type = $1 AND object_id = $2
		ORDER BY created_at DESC, seq DESC
	`, contentType, objectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]audit.Log, 0)
	for rows.Next() {
		var (
			l               audit.Log
			op              string
			snapshot        []byte
			actor, sysUpdID sql.NullString
		)
		if err := rows.Scan(
			&l.ID,
			&l.ContentType,
			&l.ObjectID,
			&op,
			&snapshot,
			&actor,
			&sysUpdID,
			&l.CreatedAt,
		); err != nil {
			return nil, err
		}

		l.Operation = audit.Operation(op)
		l.ActorID = fromNullStringPtr(actor)
		l.SystemUpdateID = fromNullStringPtr(sysUpdID)
		if l.Snapshot, err = audit.DecodeSnapshot(snapshot); err != nil {
			return nil, err
		}
		out = append(out, l)
	}

	return out, rows.Err()
}

var auditedTables = map[string]string{
	participants.ContentTypeParticipant: "participants",
	participants.ContentTypeAddress:     "participant_addresses",
	participants.ContentTypeEpisode:     "screening_episodes",
	clinics.ContentTypeProvider:         "providers",
	clinics.ContentTypeSetting:          "settings",
	clinics.ContentTypeClinic:           "clinics",
	clinics.ContentTypeSlot:             "clinic_slots",
	clinics.ContentTypeStatus:           "clinic_statuses",
	appointments.ContentTypeAppointment: "appointments",
	appointments.ContentTypeStatus:      "appointment_statuses",
}

// Locator answers whether an audited row still exists.
type Locator struct {
	db *sql.DB
}

func NewLocator(db *sql.DB) *Locator {
	return &Locator{db: db}
}

func (l *Locator) Exists(ctx context.Context, contentType string, id uuid.UUID) (bool, error) {
	table, ok := auditedTables[contentType]
	if !ok {
		return false, fmt.Errorf("%w: unknown content type %q", audit.ErrInvalidInput, contentType)
	}

	var exists bool
	err := conn(ctx, l.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
