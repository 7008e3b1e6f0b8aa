package capabilities

import "context"

// Capability names an action a caller may be allowed to perform.
type Capability string

const (
	AppointmentsCheckIn       Capability = "appointments:check_in"
	AppointmentsRecordOutcome Capability = "appointments:record_outcome"
	ParticipantsEdit          Capability = "participants:edit"
	ClinicsManage             Capability = "clinics:manage"
	AuditRead                 Capability = "audit:read"
)

type CapabilityCheck struct {
	UserID     string
	Roles      []string
	Capability Capability
}

type CapabilitiesResolver interface {
	HasFeature(ctx context.Context, in CapabilityCheck) (bool, error)
}
