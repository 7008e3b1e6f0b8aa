package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"manage-breast-screening/internal/domain/clinics"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ClinicsRepo struct {
	db *sql.DB
}

func NewClinicsRepo(db *sql.DB) *ClinicsRepo {
	return &ClinicsRepo{db: db}
}

func (r *ClinicsRepo) CreateProvider(ctx context.Context, p clinics.Provider) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO providers (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`, p.ID, p.Name, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *ClinicsRepo) CreateSetting(ctx context.Context, s clinics.Setting) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO settings (id, name, provider_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, s.ID, s.Name, s.ProviderID, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *ClinicsRepo) Create(ctx context.Context, c clinics.Clinic) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO clinics (
			id, setting_id, starts_at, ends_at,
			type, risk_type, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		c.ID,
		c.SettingID,
		c.StartsAt,
		c.EndsAt,
		string(c.Type),
		string(c.RiskType),
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *ClinicsRepo) CreateSlots(ctx context.Context, slots []clinics.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	args := make([]any, 0, len(slots)*6)
	for _, s := range slots {
		args = append(args, s.ID, s.ClinicID, s.StartsAt, s.DurationInMinutes, s.CreatedAt, s.UpdatedAt)
	}
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO clinic_slots (
			id, clinic_id, starts_at, duration_in_minutes, created_at, updated_at
		) VALUES `+placeholders(len(slots), 6), args...)
	return err
}

const selectClinics = `
	SELECT
		c.id, c.setting_id, c.starts_at, c.ends_at,
		c.type, c.risk_type, c.created_at, c.updated_at,
		s.id, s.name, s.provider_id, s.created_at, s.updated_at
	FROM clinics c
	JOIN settings s ON s.id = c.setting_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClinic(row rowScanner) (clinics.Clinic, error) {
	var (
		c             clinics.Clinic
		typ, riskType string
	)
	if err := row.Scan(
		&c.ID,
		&c.SettingID,
		&c.StartsAt,
		&c.EndsAt,
		&typ,
		&riskType,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.Setting.ID,
		&c.Setting.Name,
		&c.Setting.ProviderID,
		&c.Setting.CreatedAt,
		&c.Setting.UpdatedAt,
	); err != nil {
		return clinics.Clinic{}, err
	}
	c.Type = clinics.Type(typ)
	c.RiskType = clinics.RiskType(riskType)
	return c, nil
}

func (r *ClinicsRepo) GetByID(ctx context.Context, id uuid.UUID) (clinics.Clinic, error) {
	c, err := scanClinic(conn(ctx, r.db).QueryRowContext(ctx, selectClinics+` WHERE c.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return clinics.Clinic{}, clinics.ErrNotFound
	}
	return c, err
}

func (r *ClinicsRepo) GetSlot(ctx context.Context, id uuid.UUID) (clinics.Slot, error) {
	var s clinics.Slot
	err := conn(ctx, r.db).QueryRowContext(ctx, `
		SELECT id, clinic_id, starts_at, duration_in_minutes, created_at, updated_at
		FROM clinic_slots
		WHERE id = $1
	`, id).Scan(&s.ID, &s.ClinicID, &s.StartsAt, &s.DurationInMinutes, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return clinics.Slot{}, clinics.ErrNotFound
	}
	return s, err
}

// rangeClause builds the WHERE fragment for a start-time range.
func rangeClause(rng clinics.DateRange) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if !rng.From.IsZero() {
		args = append(args, rng.From)
		conds = append(conds, fmt.Sprintf("c.starts_at >= $%d", len(args)))
	}
	if !rng.To.IsZero() {
		args = append(args, rng.To)
		conds = append(conds, fmt.Sprintf("c.starts_at < $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *ClinicsRepo) List(ctx context.Context, f clinics.ListFilter) ([]clinics.Clinic, error) {
	where, args := rangeClause(f.Range)

	rows, err := conn(ctx, r.db).QueryContext(ctx, selectClinics+where+` ORDER BY c.starts_at ASC, c.id ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]clinics.Clinic, 0)
	for rows.Next() {
		c, err := scanClinic(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ClinicsRepo) Count(ctx context.Context, f clinics.ListFilter) (int, error) {
	where, args := rangeClause(f.Range)

	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM clinics c`+where, args...).Scan(&n)
	return n, err
}

func (r *ClinicsRepo) CountSlots(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, `
		SELECT clinic_id, COUNT(*)
		FROM clinic_slots
		WHERE clinic_id = ANY($1::uuid[])
		GROUP BY clinic_id
	`, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id uuid.UUID
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

func (r *ClinicsRepo) StatusesFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]clinics.Status, error) {
	out := make(map[uuid.UUID][]clinics.Status, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, `
		SELECT id, clinic_id, state, created_at, seq
		FROM clinic_statuses
		WHERE clinic_id = ANY($1::uuid[])
		ORDER BY created_at DESC, seq DESC
	`, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s     clinics.Status
			state string
		)
		if err := rows.Scan(&s.ID, &s.ClinicID, &state, &s.CreatedAt, &s.Seq); err != nil {
			return nil, err
		}
		s.State = clinics.State(state)
		out[s.ClinicID] = append(out[s.ClinicID], s)
	}
	return out, rows.Err()
}

func (r *ClinicsRepo) AppendStatus(ctx context.Context, s clinics.Status) (clinics.Status, error) {
	err := conn(ctx, r.db).QueryRowContext(ctx, `
		INSERT INTO clinic_statuses (id, clinic_id, state, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING seq
	`, s.ID, s.ClinicID, string(s.State), s.CreatedAt).Scan(&s.Seq)
	if err != nil {
		return clinics.Status{}, err
	}
	return s, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
