package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"manage-breast-screening/internal/domain/participants"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ParticipantsRepo struct {
	db *sql.DB
}

func NewParticipantsRepo(db *sql.DB) *ParticipantsRepo {
	return &ParticipantsRepo{db: db}
}

const participantColumns = 14

func participantArgs(p participants.Participant) []any {
	return []any{
		p.ID,
		p.FirstName,
		p.LastName,
		p.Gender,
		p.NHSNumber,
		p.Phone,
		p.Email,
		toNullDate(p.DateOfBirth),
		toNullString(p.EthnicBackgroundID),
		p.EthnicBackgroundDetails,
		p.RiskLevel,
		pq.Array(p.ExtraNeeds),
		p.CreatedAt,
		p.UpdatedAt,
	}
}

const insertParticipants = `
	INSERT INTO participants (
		id, first_name, last_name, gender,
		nhs_number, phone, email, date_of_birth,
		ethnic_background_id, ethnic_background_details,
		risk_level, extra_needs,
		created_at, updated_at
	) VALUES `

func (r *ParticipantsRepo) Create(ctx context.Context, p participants.Participant) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, insertParticipants+placeholders(1, participantColumns), participantArgs(p)...)
	return err
}

func (r *ParticipantsRepo) CreateMany(ctx context.Context, ps []participants.Participant) error {
	if len(ps) == 0 {
		return nil
	}
	args := make([]any, 0, len(ps)*participantColumns)
	for _, p := range ps {
		args = append(args, participantArgs(p)...)
	}
	_, err := conn(ctx, r.db).ExecContext(ctx, insertParticipants+placeholders(len(ps), participantColumns), args...)
	return err
}

func (r *ParticipantsRepo) GetByID(ctx context.Context, id uuid.UUID) (participants.Participant, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `
		SELECT
			p.id, p.first_name, p.last_name, p.gender,
			p.nhs_number, p.phone, p.email, p.date_of_birth,
			p.ethnic_background_id, p.ethnic_background_details,
			p.risk_level, p.extra_needs,
			p.created_at, p.updated_at,
			a.id, a.lines, a.postcode
		FROM participants p
		LEFT JOIN participant_addresses a ON a.participant_id = p.id
		WHERE p.id = $1
	`, id)

	var (
		p        participants.Participant
		dob      sql.NullTime
		bg       sql.NullString
		addrID   uuid.NullUUID
		lines    []string
		postcode sql.NullString
	)
	if err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.Gender,
		&p.NHSNumber,
		&p.Phone,
		&p.Email,
		&dob,
		&bg,
		&p.EthnicBackgroundDetails,
		&p.RiskLevel,
		pq.Array(&p.ExtraNeeds),
		&p.CreatedAt,
		&p.UpdatedAt,
		&addrID,
		pq.Array(&lines),
		&postcode,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return participants.Participant{}, participants.ErrNotFound
		}
		return participants.Participant{}, err
	}

	if dob.Valid {
		p.DateOfBirth = dob.Time
	}
	p.EthnicBackgroundID = bg.String
	if addrID.Valid {
		p.Address = &participants.Address{
			ID:            addrID.UUID,
			ParticipantID: p.ID,
			Lines:         lines,
			Postcode:      postcode.String,
		}
	}
	return p, nil
}

func (r *ParticipantsRepo) Update(ctx context.Context, p participants.Participant) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE participants
		SET
			first_name = $2,
			last_name = $3,
			gender = $4,
			nhs_number = $5,
			phone = $6,
			email = $7,
			date_of_birth = $8,
			ethnic_background_id = $9,
			ethnic_background_details = $10,
			risk_level = $11,
			extra_needs = $12,
			updated_at = $13
		WHERE id = $1
	`,
		p.ID,
		p.FirstName,
		p.LastName,
		p.Gender,
		p.NHSNumber,
		p.Phone,
		p.Email,
		toNullDate(p.DateOfBirth),
		toNullString(p.EthnicBackgroundID),
		p.EthnicBackgroundDetails,
		p.RiskLevel,
		pq.Array(p.ExtraNeeds),
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return participants.ErrNotFound
	}
	return nil
}

func (r *ParticipantsRepo) SaveAddress(ctx context.Context, a participants.Address) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO participant_addresses (id, participant_id, lines, postcode)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (participant_id) DO UPDATE
		SET lines = EXCLUDED.lines, postcode = EXCLUDED.postcode
	`, a.ID, a.ParticipantID, pq.Array(a.Lines), a.Postcode)
	return err
}

func (r *ParticipantsRepo) DeleteAddress(ctx context.Context, id uuid.UUID) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM participant_addresses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return participants.ErrNotFound
	}
	return nil
}

func (r *ParticipantsRepo) CreateEpisode(ctx context.Context, e participants.ScreeningEpisode) error {
	return r.CreateEpisodes(ctx, []participants.ScreeningEpisode{e})
}

func (r *ParticipantsRepo) CreateEpisodes(ctx context.Context, es []participants.ScreeningEpisode) error {
	if len(es) == 0 {
		return nil
	}
	args := make([]any, 0, len(es)*4)
	for _, e := range es {
		args = append(args, e.ID, e.ParticipantID, e.CreatedAt, e.UpdatedAt)
	}
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO screening_episodes (id, participant_id, created_at, updated_at)
		VALUES `+placeholders(len(es), 4), args...)
	return err
}

func (r *ParticipantsRepo) GetEpisode(ctx context.Context, id uuid.UUID) (participants.ScreeningEpisode, error) {
	var e participants.ScreeningEpisode
	err := conn(ctx, r.db).QueryRowContext(ctx, `
		SELECT id, participant_id, created_at, updated_at
		FROM screening_episodes
		WHERE id = $1
	`, id).Scan(&e.ID, &e.ParticipantID, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return participants.ScreeningEpisode{}, participants.ErrNotFound
	}
	return e, err
}

func (r *ParticipantsRepo) ListEpisodes(ctx context.Context, participantID uuid.UUID) ([]participants.ScreeningEpisode, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `
		SELECT id, participant_id, created_at, updated_at
		FROM screening_episodes
		WHERE participant_id = $1
		ORDER BY created_at DESC
	`, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]participants.ScreeningEpisode, 0)
	for rows.Next() {
		var e participants.ScreeningEpisode
		if err := rows.Scan(&e.ID, &e.ParticipantID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func toNullDate(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
