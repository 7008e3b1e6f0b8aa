package participants

import (
	"sort"
	"strings"
	"time"

	"manage-breast-screening/internal/platform/format"

	"github.com/google/uuid"
)

const (
	ContentTypeParticipant = "participants.participant"
	ContentTypeAddress     = "participants.participantaddress"
	ContentTypeEpisode     = "participants.screeningepisode"

	MaxAddressLines = 5
)

// Participant is a person invited for screening. Identity fields are fixed
// after import; demographic fields change through the edit forms.
type Participant struct {
	ID uuid.UUID

	FirstName   string
	LastName    string
	Gender      string
	NHSNumber   string
	Phone       string
	Email       string
	DateOfBirth time.Time // date only

	EthnicBackgroundID      string // "" = not recorded
	EthnicBackgroundDetails string

	RiskLevel  string
	ExtraNeeds []string // nil = none recorded

	Address *Address

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Participant) FullName() string {
	parts := make([]string, 0, 2)
	for _, n := range []string{p.FirstName, p.LastName} {
		if n = strings.TrimSpace(n); n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, " ")
}

func (p Participant) Age(now time.Time) int {
	return format.AgeInYears(p.DateOfBirth, now)
}

func (p Participant) EthnicBackground() (EthnicBackground, bool) {
	if p.EthnicBackgroundID == "" {
		return EthnicBackground{}, false
	}
	return LookupEthnicBackground(p.EthnicBackgroundID)
}

// EthnicCategory is "" when no background is recorded or the participant
// preferred not to say.
func (p Participant) EthnicCategory() string {
	b, ok := p.EthnicBackground()
	if !ok {
		return ""
	}
	return b.Category
}

func (p Participant) AuditContentType() string { return ContentTypeParticipant }
func (p Participant) AuditObjectID() uuid.UUID { return p.ID }

func (p Participant) AuditFields() map[string]any {
	var dob any
	if !p.DateOfBirth.IsZero() {
		dob = p.DateOfBirth.Format(time.DateOnly)
	}
	var extra any
	if p.ExtraNeeds != nil {
		extra = p.ExtraNeeds
	}
	return map[string]any{
		"id":                        p.ID,
		"first_name":                p.FirstName,
		"last_name":                 p.LastName,
		"gender":                    p.Gender,
		"nhs_number":                p.NHSNumber,
		"phone":                     p.Phone,
		"email":                     p.Email,
		"date_of_birth":             dob,
		"ethnic_background_id":      p.EthnicBackgroundID,
		"ethnic_background_details": p.EthnicBackgroundDetails,
		"risk_level":                p.RiskLevel,
		"extra_needs":               extra,
		"created_at":                p.CreatedAt,
		"updated_at":                p.UpdatedAt,
	}
}

// Address belongs to exactly one participant.
type Address struct {
	ID            uuid.UUID
	ParticipantID uuid.UUID
	Lines         []string
	Postcode      string
}

func (a Address) AuditContentType() string { return ContentTypeAddress }
func (a Address) AuditObjectID() uuid.UUID { return a.ID }

func (a Address) AuditFields() map[string]any {
	lines := a.Lines
	if lines == nil {
		lines = []string{}
	}
	return map[string]any{
		"id":          a.ID,
		"participant": a.ParticipantID,
		"lines":       lines,
		"postcode":    a.Postcode,
	}
}

// ScreeningEpisode is one screening cycle of a participant.
type ScreeningEpisode struct {
	ID            uuid.UUID
	ParticipantID uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (e ScreeningEpisode) AuditContentType() string { return ContentTypeEpisode }
func (e ScreeningEpisode) AuditObjectID() uuid.UUID { return e.ID }

func (e ScreeningEpisode) AuditFields() map[string]any {
	return map[string]any{
		"id":          e.ID,
		"participant": e.ParticipantID,
		"created_at":  e.CreatedAt,
		"updated_at":  e.UpdatedAt,
	}
}

// Previous returns the most recently created episode of the same
// participant other than self.
func Previous(history []ScreeningEpisode, self ScreeningEpisode) (ScreeningEpisode, bool) {
	candidates := make([]ScreeningEpisode, 0, len(history))
	for _, e := range history {
		if e.ID == self.ID || e.ParticipantID != self.ParticipantID {
			continue
		}
		candidates = append(candidates, e)
	}
	if len(candidates) == 0 {
		return ScreeningEpisode{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	return candidates[0], true
}
