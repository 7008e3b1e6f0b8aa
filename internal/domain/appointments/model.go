package appointments

import (
	"time"

	"manage-breast-screening/internal/domain/clinics"
	"manage-breast-screening/internal/domain/participants"
	"manage-breast-screening/internal/platform/history"

	"github.com/google/uuid"
)

const (
	ContentTypeAppointment = "participants.appointment"
	ContentTypeStatus      = "participants.appointmentstatus"
)

// State of an appointment status record.
// @Enum CONFIRMED, CANCELLED, DID_NOT_ATTEND, CHECKED_IN, SCREENED, PARTIALLY_SCREENED, ATTENDED_NOT_SCREENED
type State string

const (
	StateConfirmed           State = "CONFIRMED"
	StateCancelled           State = "CANCELLED"
	StateDidNotAttend        State = "DID_NOT_ATTEND"
	StateCheckedIn           State = "CHECKED_IN"
	StateScreened            State = "SCREENED"
	StatePartiallyScreened   State = "PARTIALLY_SCREENED"
	StateAttendedNotScreened State = "ATTENDED_NOT_SCREENED"
)

// States lists every state in declaration order.
func States() []State {
	return []State{
		StateConfirmed,
		StateCancelled,
		StateDidNotAttend,
		StateCheckedIn,
		StateScreened,
		StatePartiallyScreened,
		StateAttendedNotScreened,
	}
}

var stateDisplayNames = map[State]string{
	StateConfirmed:           "Confirmed",
	StateCancelled:           "Cancelled",
	StateDidNotAttend:        "Did not attend",
	StateCheckedIn:           "Checked in",
	StateScreened:            "Screened",
	StatePartiallyScreened:   "Partially screened",
	StateAttendedNotScreened: "Attended not screened",
}

func (s State) DisplayName() string {
	if n, ok := stateDisplayNames[s]; ok {
		return n
	}
	return string(s)
}

func (s State) Valid() bool {
	_, ok := stateDisplayNames[s]
	return ok
}

type Appointment struct {
	ID                 uuid.UUID
	ScreeningEpisodeID uuid.UUID
	ClinicSlotID       uuid.UUID
	Reinvite           bool
	StoppedReasons     []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Status is an append-only record; the appointment's current state is the
// newest one.
type Status struct {
	ID            uuid.UUID
	AppointmentID uuid.UUID
	State         State
	CreatedAt     time.Time
	Seq           int64
}

func (s Status) RecordedAt() time.Time { return s.CreatedAt }
func (s Status) Sequence() int64       { return s.Seq }

// Persisted is false for the default status of an appointment without history.
func (s Status) Persisted() bool { return s.ID != uuid.Nil }

// Latest picks the current status from a history in any order.
func Latest(statuses []Status) (Status, bool) {
	return history.Latest(statuses)
}

// CurrentOrDefault is Latest falling back to an unsaved CONFIRMED record.
// The bool reports whether a real record was found.
func CurrentOrDefault(appointmentID uuid.UUID, statuses []Status) (Status, bool) {
	if st, ok := Latest(statuses); ok {
		return st, true
	}
	return Status{AppointmentID: appointmentID, State: StateConfirmed}, false
}

// Listing is an appointment with everything its list row needs, loaded in
// one query.
type Listing struct {
	Appointment Appointment
	Participant participants.Participant
	Slot        clinics.Slot
	Clinic      clinics.Clinic
}

// Item is a Listing with its status history resolved.
type Item struct {
	Listing
	Statuses      []Status
	CurrentStatus Status
}

func (a Appointment) AuditContentType() string { return ContentTypeAppointment }
func (a Appointment) AuditObjectID() uuid.UUID { return a.ID }
func (a Appointment) AuditFields() map[string]any {
	reasons := a.StoppedReasons
	if reasons == nil {
		reasons = []string{}
	}
	return map[string]any{
		"id":                a.ID,
		"screening_episode": a.ScreeningEpisodeID,
		"clinic_slot":       a.ClinicSlotID,
		"reinvite":          a.Reinvite,
		"stopped_reasons":   reasons,
		"created_at":        a.CreatedAt,
		"updated_at":        a.UpdatedAt,
	}
}

func (s Status) AuditContentType() string { return ContentTypeStatus }
func (s Status) AuditObjectID() uuid.UUID { return s.ID }
func (s Status) AuditFields() map[string]any {
	return map[string]any{
		"id":          s.ID,
		"appointment": s.AppointmentID,
		"state":       string(s.State),
		"created_at":  s.CreatedAt,
	}
}
