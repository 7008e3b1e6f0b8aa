package participants

import (
	"net/url"
	"strings"
	"time"

	"manage-breast-screening/internal/platform/format"
)

type AddressView struct {
	Lines    []string `json:"lines"`
	Postcode string   `json:"postcode"`
}

// ParticipantPresenter is the read-only view of a participant.
type ParticipantPresenter struct {
	ID               string       `json:"id"`
	ExtraNeeds       []string     `json:"extra_needs"`
	EthnicBackground string       `json:"ethnic_background"`
	EthnicCategory   string       `json:"ethnic_category"`
	FullName         string       `json:"full_name"`
	Gender           string       `json:"gender"`
	Email            string       `json:"email"`
	Address          *AddressView `json:"address,omitempty"`
	Phone            string       `json:"phone"`
	NHSNumber        string       `json:"nhs_number"`
	DateOfBirth      string       `json:"date_of_birth"`
	Age              string       `json:"age"`
	RiskLevel        string       `json:"risk_level"`
	URL              string       `json:"url"`
}

func PresentParticipant(p Participant, now time.Time) ParticipantPresenter {
	out := ParticipantPresenter{
		ID:               p.ID.String(),
		ExtraNeeds:       p.ExtraNeeds,
		EthnicBackground: presentEthnicBackground(p),
		EthnicCategory:   p.EthnicCategory(),
		FullName:         p.FullName(),
		Gender:           p.Gender,
		Email:            p.Email,
		Phone:            format.Phone(p.Phone),
		NHSNumber:        format.NHSNumber(p.NHSNumber),
		DateOfBirth:      format.Date(p.DateOfBirth),
		Age:              format.Age(p.Age(now)),
		RiskLevel:        format.SentenceCase(p.RiskLevel),
		URL:              "/participants/" + p.ID.String() + "/",
	}
	if p.Address != nil {
		out.Address = &AddressView{Lines: p.Address.Lines, Postcode: p.Address.Postcode}
	}
	return out
}

// EthnicityURL links to the ethnicity form, optionally carrying a return path.
func (p ParticipantPresenter) EthnicityURL(returnURL string) string {
	u := "/participants/" + p.ID + "/edit-ethnicity"
	if returnURL == "" {
		return u
	}
	return u + "?return_url=" + (&url.URL{Path: returnURL}).EscapedPath()
}

func presentEthnicBackground(p Participant) string {
	b, ok := p.EthnicBackground()
	if !ok {
		return ""
	}
	if !b.NonSpecific {
		return b.DisplayName
	}

	name := strings.Replace(b.DisplayName, "Any other", "any other", 1)
	if d := strings.TrimSpace(p.EthnicBackgroundDetails); d != "" {
		return name + " (" + d + ")"
	}
	return name
}
