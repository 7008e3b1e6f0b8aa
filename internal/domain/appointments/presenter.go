package appointments

import (
	"fmt"
	"sort"
	"time"

	"manage-breast-screening/internal/domain/clinics"
	"manage-breast-screening/internal/domain/participants"
	"manage-breast-screening/internal/platform/format"
)

// StatusColour is the tag colour for a state. An empty colour renders the
// default dark tag.
func StatusColour(s State) string {
	switch s {
	case StateCheckedIn:
		return ""
	case StateScreened:
		return "green"
	case StateDidNotAttend, StateCancelled:
		return "red"
	case StateAttendedNotScreened, StatePartiallyScreened:
		return "orange"
	}
	return "blue"
}

func TagClasses(colour string) string {
	if colour == "" {
		return "app-nowrap"
	}
	return "nhsuk-tag--" + colour + " app-nowrap"
}

type StatusTag struct {
	Classes     string `json:"classes"`
	Text        string `json:"text"`
	Key         string `json:"key"`
	IsConfirmed bool   `json:"is_confirmed"`
}

func PresentStatus(st Status) StatusTag {
	return StatusTag{
		Classes:     TagClasses(StatusColour(st.State)),
		Text:        st.State.DisplayName(),
		Key:         string(st.State),
		IsConfirmed: st.State == StateConfirmed,
	}
}

type ClinicSlotView struct {
	ClinicID              string `json:"clinic_id"`
	ClinicType            string `json:"clinic_type"`
	SlotTimeAndClinicDate string `json:"slot_time_and_clinic_date"`
	StartsAt              string `json:"starts_at"`
}

// PresentClinicSlot renders slot times in now's location.
func PresentClinicSlot(slot clinics.Slot, c clinics.Clinic, now time.Time) ClinicSlotView {
	loc := now.Location()
	slotStart := slot.StartsAt.In(loc)
	clinicStart := c.StartsAt.In(loc)

	return ClinicSlotView{
		ClinicID:   c.ID.String(),
		ClinicType: format.SentenceCase(c.Type.DisplayName()),
		SlotTimeAndClinicDate: fmt.Sprintf("%s (%d minutes) - %s (%s)",
			format.Time(slotStart), slot.DurationInMinutes,
			format.Date(clinicStart), format.RelativeDate(clinicStart, now)),
		StartsAt: format.Time(slotStart),
	}
}

type NavItem struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Href    string `json:"href"`
	Current bool   `json:"current"`
}

// SecondaryNav is the tab bar for reviewing a screened appointment.
func SecondaryNav(appointmentID string) []NavItem {
	return []NavItem{
		{ID: "all", Text: "Appointment details", Href: "/appointments/" + appointmentID + "/" + StepStartScreening, Current: true},
		{ID: "medical_information", Text: "Medical information", Href: "#"},
		{ID: "images", Text: "Images", Href: "#"},
	}
}

// AppointmentPresenter is the display form of one appointment.
type AppointmentPresenter struct {
	ID                 string                            `json:"id"`
	ClinicSlot         ClinicSlotView                    `json:"clinic_slot"`
	Participant        participants.ParticipantPresenter `json:"participant"`
	ParticipantURL     string                            `json:"participant_url"`
	StartTime          string                            `json:"start_time"`
	CurrentStatus      StatusTag                         `json:"current_status"`
	LastKnownScreening map[string]any                    `json:"last_known_screening"`
	SecondaryNav       []NavItem                         `json:"secondary_nav"`

	startsAt time.Time
}

func PresentAppointment(it Item, lastKnown *participants.ScreeningEpisode, now time.Time) AppointmentPresenter {
	id := it.Appointment.ID.String()
	pp := participants.PresentParticipant(it.Participant, now)
	slot := PresentClinicSlot(it.Slot, it.Clinic, now)

	return AppointmentPresenter{
		ID:                 id,
		ClinicSlot:         slot,
		Participant:        pp,
		ParticipantURL:     pp.URL,
		StartTime:          slot.StartsAt,
		CurrentStatus:      PresentStatus(it.CurrentStatus),
		LastKnownScreening: presentLastKnownScreening(lastKnown, now),
		SecondaryNav:       SecondaryNav(id),
		startsAt:           it.Slot.StartsAt,
	}
}

// presentLastKnownScreening is empty without a previous episode. Location
// and type are not known for screenings outside our own clinics.
func presentLastKnownScreening(e *participants.ScreeningEpisode, now time.Time) map[string]any {
	if e == nil {
		return map[string]any{}
	}
	at := e.CreatedAt.In(now.Location())
	return map[string]any{
		"date":          format.Date(at),
		"relative_date": format.RelativeDate(at, now),
		"location":      nil,
		"type":          nil,
	}
}

type FilterTab struct {
	Filter  string `json:"filter"`
	Label   string `json:"label"`
	Count   int    `json:"count"`
	Current bool   `json:"current"`
	URL     string `json:"url"`
}

// AppointmentListPresenter is one clinic's appointment list, sorted by slot start.
type AppointmentListPresenter struct {
	ClinicID       string                 `json:"clinic_id"`
	Filter         string                 `json:"filter"`
	CountsByFilter map[string]int         `json:"counts_by_filter"`
	Tabs           []FilterTab            `json:"tabs"`
	Appointments   []AppointmentPresenter `json:"appointments"`
}

func PresentAppointmentList(clinicID string, items []Item, f Filter, counts map[Filter]int, now time.Time) AppointmentListPresenter {
	out := AppointmentListPresenter{
		ClinicID:       clinicID,
		Filter:         string(f),
		CountsByFilter: make(map[string]int, len(counts)),
		Tabs:           make([]FilterTab, 0, len(Filters())),
		Appointments:   make([]AppointmentPresenter, 0, len(items)),
	}
	for _, tab := range Filters() {
		out.CountsByFilter[string(tab)] = counts[tab]
		out.Tabs = append(out.Tabs, FilterTab{
			Filter:  string(tab),
			Label:   tab.Label(),
			Count:   counts[tab],
			Current: tab == f,
			URL:     "/clinics/" + clinicID + "?filter=" + string(tab),
		})
	}

	for _, it := range items {
		out.Appointments = append(out.Appointments, PresentAppointment(it, nil, now))
	}
	sort.SliceStable(out.Appointments, func(i, j int) bool {
		return out.Appointments[i].startsAt.Before(out.Appointments[j].startsAt)
	})
	return out
}

type ParticipantAppointment struct {
	Date        string    `json:"date"`
	ClinicType  string    `json:"clinic_type"`
	SettingName string    `json:"setting_name"`
	Status      StatusTag `json:"status"`
	URL         string    `json:"url"`

	startsAt time.Time
}

// ParticipantAppointmentsPresenter splits a participant's appointments at the
// start of today: earlier today still counts as upcoming.
type ParticipantAppointmentsPresenter struct {
	Filter         string                   `json:"filter"`
	CountsByFilter map[string]int           `json:"counts_by_filter"`
	Upcoming       []ParticipantAppointment `json:"upcoming"`
	Past           []ParticipantAppointment `json:"past"`
}

func PresentParticipantAppointments(items []Item, f Filter, counts map[Filter]int, now time.Time) ParticipantAppointmentsPresenter {
	out := ParticipantAppointmentsPresenter{
		Filter:         string(f),
		CountsByFilter: make(map[string]int, len(Filters())),
		Upcoming:       []ParticipantAppointment{},
		Past:           []ParticipantAppointment{},
	}
	for _, tab := range Filters() {
		out.CountsByFilter[string(tab)] = counts[tab]
	}
	today := format.StartOfDay(now, now.Location())

	for _, it := range items {
		start := it.Slot.StartsAt
		pa := ParticipantAppointment{
			Date:        format.Date(start.In(now.Location())),
			ClinicType:  it.Clinic.Type.DisplayName(),
			SettingName: it.Clinic.Setting.Name,
			Status:      PresentStatus(it.CurrentStatus),
			URL:         "/appointments/" + it.Appointment.ID.String() + "/" + StepStartScreening,
			startsAt:    start,
		}
		if start.Before(today) {
			out.Past = append(out.Past, pa)
		} else {
			out.Upcoming = append(out.Upcoming, pa)
		}
	}

	sort.SliceStable(out.Upcoming, func(i, j int) bool { return out.Upcoming[i].startsAt.Before(out.Upcoming[j].startsAt) })
	sort.SliceStable(out.Past, func(i, j int) bool { return out.Past[i].startsAt.After(out.Past[j].startsAt) })
	return out
}
