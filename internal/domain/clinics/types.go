package clinics

// Type of clinic session.
// @Enum ASSESSMENT, SCREENING
type Type string

const (
	TypeAssessment Type = "ASSESSMENT"
	TypeScreening  Type = "SCREENING"
)

func (t Type) DisplayName() string {
	switch t {
	case TypeAssessment:
		return "Assessment"
	case TypeScreening:
		return "Screening"
	}
	return string(t)
}

func (t Type) Valid() bool {
	return t == TypeAssessment || t == TypeScreening
}

// RiskType of the participants booked into a clinic.
// @Enum MIXED_RISK, ROUTINE_RISK, MOBILE
type RiskType string

const (
	RiskTypeMixed   RiskType = "MIXED_RISK"
	RiskTypeRoutine RiskType = "ROUTINE_RISK"
	RiskTypeMobile  RiskType = "MOBILE"
)

func (r RiskType) DisplayName() string {
	switch r {
	case RiskTypeMixed:
		return "Mixed risk"
	case RiskTypeRoutine:
		return "Routine risk"
	case RiskTypeMobile:
		return "Mobile screening"
	}
	return string(r)
}

func (r RiskType) Valid() bool {
	return r == RiskTypeMixed || r == RiskTypeRoutine || r == RiskTypeMobile
}

// State of a clinic status record.
// @Enum SCHEDULED, IN_PROGRESS, CLOSED, CANCELLED
type State string

const (
	StateScheduled  State = "SCHEDULED"
	StateInProgress State = "IN_PROGRESS"
	StateClosed     State = "CLOSED"
	StateCancelled  State = "CANCELLED"
)

func (s State) DisplayName() string {
	switch s {
	case StateScheduled:
		return "Scheduled"
	case StateInProgress:
		return "In progress"
	case StateClosed:
		return "Closed"
	case StateCancelled:
		return "Cancelled"
	}
	return string(s)
}

func (s State) Valid() bool {
	switch s {
	case StateScheduled, StateInProgress, StateClosed, StateCancelled:
		return true
	}
	return false
}

const (
	SessionAllDay    = "all day"
	SessionMorning   = "morning"
	SessionAfternoon = "afternoon"
)
