package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"manage-breast-screening/internal/domain/appointments"
	"manage-breast-screening/internal/domain/clinics"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type AppointmentsRepo struct {
	db *sql.DB
}

func NewAppointmentsRepo(db *sql.DB) *AppointmentsRepo {
	return &AppointmentsRepo{db: db}
}

// currentStateExpr is the state of the newest status row of appointment a.
// Appointments without history count as CONFIRMED, as they are presented.
const currentStateExpr = `COALESCE((
		SELECT st.state
		FROM appointment_statuses st
		WHERE st.appointment_id = a.id
		ORDER BY st.created_at DESC, st.seq DESC
		LIMIT 1
	), 'CONFIRMED')`

const appointmentJoins = `
	FROM appointments a
	JOIN screening_episodes e ON e.id = a.screening_episode_id
	JOIN participants p ON p.id = e.participant_id
	JOIN clinic_slots cs ON cs.id = a.clinic_slot_id
	JOIN clinics c ON c.id = cs.clinic_id
	JOIN settings s ON s.id = c.setting_id
`

const selectListings = `
	SELECT
		a.id, a.screening_episode_id, a.clinic_slot_id,
		a.reinvite, a.stopped_reasons, a.created_at, a.updated_at,
		p.id, p.first_name, p.last_name, p.gender,
		p.nhs_number, p.phone, p.email, p.date_of_birth,
		p.ethnic_background_id, p.ethnic_background_details,
		p.risk_level, p.extra_needs, p.created_at, p.updated_at,
		cs.id, cs.clinic_id, cs.starts_at, cs.duration_in_minutes, cs.created_at, cs.updated_at,
		c.id, c.setting_id, c.starts_at, c.ends_at,
		c.type, c.risk_type, c.created_at, c.updated_at,
		s.id, s.name, s.provider_id, s.created_at, s.updated_at
` + appointmentJoins

func (r *AppointmentsRepo) Create(ctx context.Context, a appointments.Appointment) error {
	return r.CreateMany(ctx, []appointments.Appointment{a})
}

func (r *AppointmentsRepo) CreateMany(ctx context.Context, as []appointments.Appointment) error {
	if len(as) == 0 {
		return nil
	}
	args := make([]any, 0, len(as)*7)
	for _, a := range as {
		args = append(args,
			a.ID,
			a.ScreeningEpisodeID,
			a.ClinicSlotID,
			a.Reinvite,
			pq.Array(a.StoppedReasons),
			a.CreatedAt,
			a.UpdatedAt,
		)
	}
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO appointments (
			id, screening_episode_id, clinic_slot_id,
			reinvite, stopped_reasons, created_at, updated_at
		) VALUES `+placeholders(len(as), 7), args...)
	return err
}

func (r *AppointmentsRepo) Update(ctx context.Context, a appointments.Appointment) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE appointments
		SET
			reinvite = $2,
			stopped_reasons = $3,
			updated_at = $4
		WHERE id = $1
	`, a.ID, a.Reinvite, pq.Array(a.StoppedReasons), a.UpdatedAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return appointments.ErrNotFound
	}
	return nil
}

func scanListing(row rowScanner) (appointments.Listing, error) {
	var (
		l             appointments.Listing
		dob           sql.NullTime
		bg            sql.NullString
		typ, riskType string
	)
	if err := row.Scan(
		&l.Appointment.ID,
		&l.Appointment.ScreeningEpisodeID,
		&l.Appointment.ClinicSlotID,
		&l.Appointment.Reinvite,
		pq.Array(&l.Appointment.StoppedReasons),
		&l.Appointment.CreatedAt,
		&l.Appointment.UpdatedAt,
		&l.Participant.ID,
		&l.Participant.FirstName,
		&l.Participant.LastName,
		&l.Participant.Gender,
		&l.Participant.NHSNumber,
		&l.Participant.Phone,
		&l.Participant.Email,
		&dob,
		&bg,
		&l.Participant.EthnicBackgroundDetails,
		&l.Participant.RiskLevel,
		pq.Array(&l.Participant.ExtraNeeds),
		&l.Participant.CreatedAt,
		&l.Participant.UpdatedAt,
		&l.Slot.ID,
		&l.Slot.ClinicID,
		&l.Slot.StartsAt,
		&l.Slot.DurationInMinutes,
		&l.Slot.CreatedAt,
		&l.Slot.UpdatedAt,
		&l.Clinic.ID,
		&l.Clinic.SettingID,
		&l.Clinic.StartsAt,
		&l.Clinic.EndsAt,
		&typ,
		&riskType,
		&l.Clinic.CreatedAt,
		&l.Clinic.UpdatedAt,
		&l.Clinic.Setting.ID,
		&l.Clinic.Setting.Name,
		&l.Clinic.Setting.ProviderID,
		&l.Clinic.Setting.CreatedAt,
		&l.Clinic.Setting.UpdatedAt,
	); err != nil {
		return appointments.Listing{}, err
	}

	if dob.Valid {
		l.Participant.DateOfBirth = dob.Time
	}
	l.Participant.EthnicBackgroundID = bg.String
	l.Clinic.Type = clinics.Type(typ)
	l.Clinic.RiskType = clinics.RiskType(riskType)
	return l, nil
}

func (r *AppointmentsRepo) GetListing(ctx context.Context, id uuid.UUID) (appointments.Listing, error) {
	l, err := scanListing(conn(ctx, r.db).QueryRowContext(ctx, selectListings+` WHERE a.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return appointments.Listing{}, appointments.ErrNotFound
	}
	return l, err
}

// queryClause builds the WHERE fragment shared by List and Count so that both
// read current state the same way.
func queryClause(q appointments.Query) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.Scope.ClinicID != uuid.Nil {
		args = append(args, q.Scope.ClinicID)
		conds = append(conds, fmt.Sprintf("cs.clinic_id = $%d", len(args)))
	}
	if q.Scope.ParticipantID != uuid.Nil {
		args = append(args, q.Scope.ParticipantID)
		conds = append(conds, fmt.Sprintf("e.participant_id = $%d", len(args)))
	}
	if len(q.States) > 0 {
		states := make([]string, 0, len(q.States))
		for _, s := range q.States {
			states = append(states, string(s))
		}
		args = append(args, pq.Array(states))
		conds = append(conds, fmt.Sprintf("%s = ANY($%d::text[])", currentStateExpr, len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *AppointmentsRepo) List(ctx context.Context, q appointments.Query) ([]appointments.Listing, error) {
	where, args := queryClause(q)

	rows, err := conn(ctx, r.db).QueryContext(ctx, selectListings+where+` ORDER BY cs.starts_at ASC, a.id ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]appointments.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *AppointmentsRepo) Count(ctx context.Context, q appointments.Query) (int, error) {
	where, args := queryClause(q)

	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM appointments a
		JOIN screening_episodes e ON e.id = a.screening_episode_id
		JOIN clinic_slots cs ON cs.id = a.clinic_slot_id
	`+where, args...).Scan(&n)
	return n, err
}

func (r *AppointmentsRepo) StatusesFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]appointments.Status, error) {
	out := make(map[uuid.UUID][]appointments.Status, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, `
		SELECT id, appointment_id, state, created_at, seq
		FROM appointment_statuses
		WHERE appointment_id = ANY($1::uuid[])
		ORDER BY created_at DESC, seq DESC
	`, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s     appointments.Status
			state string
		)
		if err := rows.Scan(&s.ID, &s.AppointmentID, &state, &s.CreatedAt, &s.Seq); err != nil {
			return nil, err
		}
		s.State = appointments.State(state)
		out[s.AppointmentID] = append(out[s.AppointmentID], s)
	}
	return out, rows.Err()
}

func (r *AppointmentsRepo) AppendStatus(ctx context.Context, s appointments.Status) (appointments.Status, error) {
	out, err := r.AppendStatuses(ctx, []appointments.Status{s})
	if err != nil {
		return appointments.Status{}, err
	}
	return out[0], nil
}

// AppendStatuses inserts in input order; seq follows that order.
func (r *AppointmentsRepo) AppendStatuses(ctx context.Context, ss []appointments.Status) ([]appointments.Status, error) {
	if len(ss) == 0 {
		return []appointments.Status{}, nil
	}

	args := make([]any, 0, len(ss)*4)
	for _, s := range ss {
		args = append(args, s.ID, s.AppointmentID, string(s.State), s.CreatedAt)
	}
	rows, err := conn(ctx, r.db).QueryContext(ctx, `
		INSERT INTO appointment_statuses (id, appointment_id, state, created_at)
		VALUES `+placeholders(len(ss), 4)+`
		RETURNING id, seq
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seqs := make(map[uuid.UUID]int64, len(ss))
	for rows.Next() {
		var (
			id  uuid.UUID
			seq int64
		)
		if err := rows.Scan(&id, &seq); err != nil {
			return nil, err
		}
		seqs[id] = seq
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]appointments.Status, len(ss))
	for i, s := range ss {
		s.Seq = seqs[s.ID]
		out[i] = s
	}
	return out, nil
}
