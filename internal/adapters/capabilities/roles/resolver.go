package roles

import (
	"context"
	"errors"
	"strings"

	"manage-breast-screening/internal/ports/capabilities"
)

const (
	RoleClinical       = "clinical"
	RoleAdministrative = "administrative"
	RoleSuperuser      = "superuser"
)

var ErrCapabilityRequired = errors.New("capability required")

// DefaultGrants maps each role to the capabilities it carries.
var DefaultGrants = map[string][]capabilities.Capability{
	RoleClinical: {
		capabilities.AppointmentsCheckIn,
		capabilities.AppointmentsRecordOutcome,
		capabilities.ParticipantsEdit,
	},
	RoleAdministrative: {
		capabilities.AppointmentsCheckIn,
		capabilities.ParticipantsEdit,
		capabilities.ClinicsManage,
	},
	RoleSuperuser: {
		capabilities.AppointmentsCheckIn,
		capabilities.AppointmentsRecordOutcome,
		capabilities.ParticipantsEdit,
		capabilities.ClinicsManage,
		capabilities.AuditRead,
	},
}

// Resolver decides capabilities from the caller's roles.
// With allowAll (ALLOW_ALL_CAPABILITIES=true) every check passes.
type Resolver struct {
	grants   map[string]map[capabilities.Capability]struct{}
	allowAll bool
}

func NewResolver(grants map[string][]capabilities.Capability, allowAll bool) *Resolver {
	if grants == nil {
		grants = DefaultGrants
	}
	idx := make(map[string]map[capabilities.Capability]struct{}, len(grants))
	for role, caps := range grants {
		role = strings.ToLower(strings.TrimSpace(role))
		set := make(map[capabilities.Capability]struct{}, len(caps))
		for _, c := range caps {
			set[c] = struct{}{}
		}
		idx[role] = set
	}
	return &Resolver{grants: idx, allowAll: allowAll}
}

func (r *Resolver) HasFeature(_ context.Context, in capabilities.CapabilityCheck) (bool, error) {
	if strings.TrimSpace(string(in.Capability)) == "" {
		return false, ErrCapabilityRequired
	}
	if r == nil {
		return false, nil
	}
	if r.allowAll {
		return true, nil
	}

	for _, role := range in.Roles {
		set, ok := r.grants[strings.ToLower(strings.TrimSpace(role))]
		if !ok {
			continue
		}
		if _, ok := set[in.Capability]; ok {
			return true, nil
		}
	}
	return false, nil
}
