package clinics

import (
	"time"

	"manage-breast-screening/internal/platform/format"
)

type StatusView struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// ClinicPresenter is the display form of one clinic.
type ClinicPresenter struct {
	ID            string      `json:"id"`
	StartsAt      string      `json:"starts_at"`
	SessionType   string      `json:"session_type"`
	NumberOfSlots int         `json:"number_of_slots"`
	LocationName  string      `json:"location_name"`
	TimeRange     string      `json:"time_range"`
	Type          string      `json:"type"`
	RiskType      string      `json:"risk_type"`
	Status        *StatusView `json:"status,omitempty"`
	URL           string      `json:"url"`
}

func PresentClinic(s Summary, loc *time.Location) ClinicPresenter {
	if loc == nil {
		loc = time.UTC
	}
	c := s.Clinic
	out := ClinicPresenter{
		ID:            c.ID.String(),
		StartsAt:      format.Date(c.StartsAt.In(loc)),
		SessionType:   format.SentenceCase(c.SessionType(loc)),
		NumberOfSlots: s.NumberOfSlots,
		LocationName:  c.Setting.Name,
		TimeRange:     format.TimeRange(c.StartsAt.In(loc), c.EndsAt.In(loc)),
		Type:          c.Type.DisplayName(),
		RiskType:      c.RiskType.DisplayName(),
		URL:           "/clinics/" + c.ID.String() + "/",
	}
	if s.CurrentStatus != nil {
		out.Status = &StatusView{Key: string(s.CurrentStatus.State), Text: s.CurrentStatus.State.DisplayName()}
	}
	return out
}

type FilterTab struct {
	Filter  string `json:"filter"`
	Label   string `json:"label"`
	Count   int    `json:"count"`
	Current bool   `json:"current"`
	URL     string `json:"url"`
}

// ClinicsPresenter is the clinic list page.
type ClinicsPresenter struct {
	Heading string            `json:"heading"`
	Filter  string            `json:"filter"`
	Tabs    []FilterTab       `json:"tabs"`
	Clinics []ClinicPresenter `json:"clinics"`
}

var filterHeadings = map[Filter]string{
	FilterToday:     "Today's clinics",
	FilterUpcoming:  "Upcoming clinics",
	FilterCompleted: "Completed clinics",
	FilterAll:       "All clinics",
}

func PresentClinics(items []Summary, f Filter, counts map[Filter]int, loc *time.Location) ClinicsPresenter {
	out := ClinicsPresenter{
		Heading: filterHeadings[f],
		Filter:  string(f),
		Tabs:    make([]FilterTab, 0, len(Filters())),
		Clinics: make([]ClinicPresenter, 0, len(items)),
	}
	for _, tab := range Filters() {
		out.Tabs = append(out.Tabs, FilterTab{
			Filter:  string(tab),
			Label:   format.SentenceCase(string(tab)),
			Count:   counts[tab],
			Current: tab == f,
			URL:     "/clinics?filter=" + string(tab),
		})
	}
	for _, s := range items {
		out.Clinics = append(out.Clinics, PresentClinic(s, loc))
	}
	return out
}
