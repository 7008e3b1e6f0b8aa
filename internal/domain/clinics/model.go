package clinics

import (
	"time"

	"github.com/google/uuid"
)

const (
	ContentTypeProvider = "clinics.provider"
	ContentTypeSetting  = "clinics.setting"
	ContentTypeClinic   = "clinics.clinic"
	ContentTypeSlot     = "clinics.clinicslot"
	ContentTypeStatus   = "clinics.clinicstatus"
)

type Provider struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Setting is a screening location run by a Provider.
type Setting struct {
	ID         uuid.UUID
	Name       string
	ProviderID uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Clinic is a scheduled session at a Setting. Setting is always loaded
// together with the clinic.
type Clinic struct {
	ID        uuid.UUID
	SettingID uuid.UUID
	Setting   Setting
	StartsAt  time.Time
	EndsAt    time.Time
	Type      Type
	RiskType  RiskType
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionType: longer than six hours is all day, otherwise by start hour
// in loc.
func (c Clinic) SessionType(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	if c.EndsAt.Sub(c.StartsAt) > 6*time.Hour {
		return SessionAllDay
	}
	if c.StartsAt.In(loc).Hour() < 12 {
		return SessionMorning
	}
	return SessionAfternoon
}

// Slot is a bookable time slice within a clinic.
type Slot struct {
	ID                uuid.UUID
	ClinicID          uuid.UUID
	StartsAt          time.Time
	DurationInMinutes int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Status is an append-only clinic state record.
type Status struct {
	ID        uuid.UUID
	ClinicID  uuid.UUID
	State     State
	CreatedAt time.Time
	Seq       int64
}

func (s Status) RecordedAt() time.Time { return s.CreatedAt }
func (s Status) Sequence() int64       { return s.Seq }

func (p Provider) AuditContentType() string { return ContentTypeProvider }
func (p Provider) AuditObjectID() uuid.UUID { return p.ID }
func (p Provider) AuditFields() map[string]any {
	return map[string]any{"id": p.ID, "name": p.Name, "created_at": p.CreatedAt, "updated_at": p.UpdatedAt}
}

func (s Setting) AuditContentType() string { return ContentTypeSetting }
func (s Setting) AuditObjectID() uuid.UUID { return s.ID }
func (s Setting) AuditFields() map[string]any {
	return map[string]any{
		"id":         s.ID,
		"name":       s.Name,
		"provider":   s.ProviderID,
		"created_at": s.CreatedAt,
		"updated_at": s.UpdatedAt,
	}
}

func (c Clinic) AuditContentType() string { return ContentTypeClinic }
func (c Clinic) AuditObjectID() uuid.UUID { return c.ID }
func (c Clinic) AuditFields() map[string]any {
	return map[string]any{
		"id":         c.ID,
		"setting":    c.SettingID,
		"starts_at":  c.StartsAt.UTC(),
		"ends_at":    c.EndsAt.UTC(),
		"type":       string(c.Type),
		"risk_type":  string(c.RiskType),
		"created_at": c.CreatedAt,
		"updated_at": c.UpdatedAt,
	}
}

func (s Slot) AuditContentType() string { return ContentTypeSlot }
func (s Slot) AuditObjectID() uuid.UUID { return s.ID }
func (s Slot) AuditFields() map[string]any {
	return map[string]any{
		"id":                  s.ID,
		"clinic":              s.ClinicID,
		"starts_at":           s.StartsAt.UTC(),
		"duration_in_minutes": s.DurationInMinutes,
		"created_at":          s.CreatedAt,
		"updated_at":          s.UpdatedAt,
	}
}

func (s Status) AuditContentType() string { return ContentTypeStatus }
func (s Status) AuditObjectID() uuid.UUID { return s.ID }
func (s Status) AuditFields() map[string]any {
	return map[string]any{
		"id":         s.ID,
		"clinic":     s.ClinicID,
		"state":      string(s.State),
		"created_at": s.CreatedAt,
	}
}
