package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"manage-breast-screening/internal/domain/audit"
	"manage-breast-screening/internal/domain/clinics"
	"manage-breast-screening/internal/domain/participants"
	"manage-breast-screening/internal/middleware"
	"manage-breast-screening/internal/platform/logger"
	"manage-breast-screening/internal/ports/capabilities"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, resolver capabilities.CapabilitiesResolver) {
	checkIn := middleware.RequireCapability(resolver, capabilities.AppointmentsCheckIn)
	outcome := middleware.RequireCapability(resolver, capabilities.AppointmentsRecordOutcome)

	r.With(middleware.RequireUser).Get("/clinics/{clinicID}", showClinicHandler(svc))
	r.With(middleware.RequireUser).Get("/clinics/{clinicID}/appointments/export", exportClinicHandler(svc))
	r.With(checkIn).Post("/clinics/{clinicID}/appointments/{appointmentID}/check-in", clinicCheckInHandler(svc))

	r.With(middleware.RequireUser).Get("/participants/{participantID}/appointments", participantAppointmentsHandler(svc))

	r.With(middleware.RequireUser).Get("/appointments/{appointmentID}", showAppointmentHandler(svc))
	r.With(checkIn).Post("/appointments/{appointmentID}/check-in", checkInHandler(svc))
	r.With(outcome).Post("/appointments/{appointmentID}/start-screening", startScreeningHandler(svc))
	r.With(outcome).Post("/appointments/{appointmentID}/ask-for-medical-information", askForMedicalInformationHandler(svc))
	r.With(outcome).Post("/appointments/{appointmentID}/cannot-go-ahead", cannotGoAheadHandler(svc))
	r.With(outcome).Post("/appointments/{appointmentID}/status", recordOutcomeHandler(svc))
}

type clinicShowResponse struct {
	Clinic          clinics.ClinicPresenter  `json:"clinic"`
	AppointmentList AppointmentListPresenter `json:"appointment_list"`
}

type decisionRequest struct {
	Decision string `json:"decision"`
}

type nextStepResponse struct {
	Next string `json:"next"`
}

type checkInRequest struct {
	Next string `json:"next"`
}

type statusResponse struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointment_id"`
	Status        StatusTag `json:"status"`
	CreatedAt     string    `json:"created_at"`
	Next          string    `json:"next,omitempty"`
}

type cannotGoAheadRequest struct {
	StoppedReasons []string `json:"stopped_reasons"`
	Reinvite       bool     `json:"reinvite"`
}

type recordOutcomeRequest struct {
	State string `json:"state"`
}

// showClinicHandler godoc
// @Summary      Clinic with its appointment list
// @Tags         clinics
// @Produce      json
// @Param        clinicID  path   string  true   "Clinic UUID"
// @Param        filter    query  string  false  "remaining | checked_in | complete | all"  default(remaining)
// @Success      200  {object}  clinicShowResponse
// @Failure      400  {string}  string "invalid appointment filter"
// @Failure      404  {string}  string "clinic not found"
// @Router       /clinics/{clinicID} [get]
func showClinicHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, ok := clinicView(w, r, svc)
		if !ok {
			return
		}
		now := svc.Now().In(svc.Location())
		writeJSON(w, http.StatusOK, clinicShowResponse{
			Clinic:          clinics.PresentClinic(view.Clinic, svc.Location()),
			AppointmentList: PresentAppointmentList(view.Clinic.Clinic.ID.String(), view.Appointments, view.Filter, view.Counts, now),
		})
	}
}

// exportClinicHandler godoc
// @Summary      Download a clinic's appointment list
// @Tags         clinics
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        clinicID  path   string  true   "Clinic UUID"
// @Param        filter    query  string  false  "remaining | checked_in | complete | all"  default(remaining)
// @Success      200  {file}  file
// @Router       /clinics/{clinicID}/appointments/export [get]
func exportClinicHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, ok := clinicView(w, r, svc)
		if !ok {
			return
		}
		now := svc.Now().In(svc.Location())
		list := PresentAppointmentList(view.Clinic.Clinic.ID.String(), view.Appointments, view.Filter, view.Counts, now)

		data, err := ExportAppointmentList(list)
		if err != nil {
			writeError(w, r, svc.log, err)
			return
		}

		filename := "clinic-" + view.Clinic.Clinic.StartsAt.In(svc.Location()).Format(time.DateOnly) + "-" + string(view.Filter) + ".xlsx"
		w.Header().Set("Content-Type", ExportContentType)
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func clinicView(w http.ResponseWriter, r *http.Request, svc *Service) (ClinicView, bool) {
	f, err := ParseFilter(r.URL.Query().Get("filter"), FilterRemaining)
	if err != nil {
		writeError(w, r, svc.log, err)
		return ClinicView{}, false
	}
	view, err := svc.ForClinic(r.Context(), chi.URLParam(r, "clinicID"), f)
	if err != nil {
		writeError(w, r, svc.log, err)
		return ClinicView{}, false
	}
	return view, true
}

// participantAppointmentsHandler godoc
// @Summary      A participant's upcoming and past appointments
// @Tags         participants
// @Produce      json
// @Param        participantID  path   string  true   "Participant UUID"
// @Param        filter         query  string  false  "remaining | checked_in | complete | all"  default(all)
// @Success      200  {object}  ParticipantAppointmentsPresenter
// @Router       /participants/{participantID}/appointments [get]
func participantAppointmentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := ParseFilter(r.URL.Query().Get("filter"), FilterAll)
		if err != nil {
			writeError(w, r, svc.log, err)
			return
		}
		view, err := svc.ForParticipant(r.Context(), chi.URLParam(r, "participantID"), f)
		if err != nil {
			writeError(w, r, svc.log, err)
			return
		}
		writeJSON(w, http.StatusOK, PresentParticipantAppointments(view.Appointments, view.Filter, view.Counts, svc.Now().In(svc.Location())))
	}
}

// showAppointmentHandler godoc
// @Summary      Appointment details
// @Tags         appointments
// @Produce      json
// @Param        appointmentID  path  string  true  "Appointment UUID"
// @Success      200  {object}  AppointmentPresenter
// @Failure      404  {string}  string "appointment not found"
// @Router       /appointments/{appointmentID} [get]
func showAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.Show(r.Context(), chi.URLParam(r, "appointmentID"))
		if err != nil {
			writeError(w, r, svc.log, err)
			return
		}
		writeJSON(w, http.StatusOK, PresentAppointment(d.Item, d.LastKnownScreening, svc.Now().In(svc.Location())))
	}
}

// clinicCheckInHandler godoc
// @Summary      Check in from the clinic list
// @Tags         clinics
// @Produce      json
// @Param        clinicID       path  string  true  "Clinic UUID"
// @Param        appointmentID  path  string  true  "Appointment UUID"
// @Success      201  {object}  statusResponse
// @Failure      409  {string}  string "invalid status transition"
// @Router       /clinics/{clinicID}/appointments/{appointmentID}/check-in [post]
func clinicCheckInHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		clinicID := chi.URLParam(r, "clinicID")

		st, err := svc.CheckInAtClinic(r.Context(), audit.Source{ActorID: claims.UserID}, clinicID, chi.URLParam(r, "appointmentID"))
		if err != nil {
			writeError(w, r, svc.log, err)
			return
		}
		writeJSON(w, http.StatusCreated, presentStatusResponse(st, "/clinics/"+clinicID))
	}
}

// checkInHandler godoc
// @Summary      Check in a participant
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Param        appointmentID  path  string          true   "Appointment UUID"
// @Param        body           body  checkInRequest  false  "Optional next step"
// @Success      201  {object}  statusResponse
// @Failure      409  {string}  string "invalid status transition"
// @Router       /appointments/{appointmentID}/check-in [post]
func checkInHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req checkInRequest
		if err := decodeOptional(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		id := chi.URLParam(r, "appointmentID")
		st, err := svc.CheckIn(r.Context(), audit.Source{ActorID: claims.UserID}, id)
		if err != nil {
			writeError(w, r, svc.log, err)
			return
		}

		next := "/appointments/" + id
		if strings.TrimSpace(req.Next) == StepStartScreening {
			next += "/" + StepStartScreening
		}
		writeJSON(w, http.StatusCreated, presentStatusResponse(st, next))
	}
}

// startScreeningHandler godoc
// @Summary      Continue or stop after reviewing the appointment
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Param        appointmentID  path  string           true  "Appointment UUID"
// @Param        body           body  decisionRequest  true  "continue | dropout"
// @Success      200  {object}  nextStepResponse
// @Failure      400  {string}  string "There is a problem"
// @Router       /appointments/{appointmentID}/start-screening [post]
func startScreeningHandler(svc *Service) http.HandlerFunc {
	return decisionHandler(svc.log, svc.StartScreening)
}

// askForMedicalInformationHandler godoc
// @Summary      Whether there is medical information to record
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Param        appointmentID  path  string           true  "Appointment UUID"
// @Param        body           body  decisionRequest  true  "yes | no"
// @Success      200  {object}  nextStepResponse
// @Failure      400  {string}  string "There is a problem"
// @Router       /appointments/{appointmentID}/ask-for-medical-information [post]
func askForMedicalInformationHandler(svc *Service) http.HandlerFunc {
	return decisionHandler(svc.log, svc.AskForMedicalInformation)
}

func decisionHandler(log logger.Logger, step func(ctx context.Context, id, decision string) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req decisionRequest
		if err := decodeOptional(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		id := chi.URLParam(r, "appointmentID")
		next, err := step(r.Context(), id, req.Decision)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, nextStepResponse{Next: "/appointments/" + id + "/" + next})
	}
}

// cannotGoAheadHandler godoc
// @Summary      Record why an appointment cannot go ahead
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Param        appointmentID  path  string                true  "Appointment UUID"
// @Param        body           body  cannotGoAheadRequest  true  "Reasons and reinvite choice"
// @Success      200  {object}  AppointmentPresenter
// @Failure      400  {string}  string "invalid input"
// @Failure      409  {string}  string "invalid status transition"
// @Router       /appointments/{appointmentID}/cannot-go-ahead [post]
func cannotGoAheadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req cannotGoAheadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		it, err := svc.CannotGoAhead(r.Context(), audit.Source{ActorID: claims.UserID},
			chi.URLParam(r, "appointmentID"),
			CannotGoAheadInput{StoppedReasons: req.StoppedReasons, Reinvite: req.Reinvite})
		if err != nil {
			writeError(w, r, svc.log, err)
			return
		}
		writeJSON(w, http.StatusOK, PresentAppointment(it, nil, svc.Now().In(svc.Location())))
	}
}

// recordOutcomeHandler godoc
// @Summary      Append an appointment status
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Param        appointmentID  path  string                true  "Appointment UUID"
// @Param        body           body  recordOutcomeRequest  true  "Target state"
// @Success      201  {object}  statusResponse
// @Failure      400  {string}  string "invalid input"
// @Failure      409  {string}  string "invalid status transition"
// @Router       /appointments/{appointmentID}/status [post]
func recordOutcomeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req recordOutcomeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		id := chi.URLParam(r, "appointmentID")
		st, err := svc.RecordOutcome(r.Context(), audit.Source{ActorID: claims.UserID}, id,
			State(strings.ToUpper(strings.TrimSpace(req.State))))
		if err != nil {
			writeError(w, r, svc.log, err)
			return
		}
		writeJSON(w, http.StatusCreated, presentStatusResponse(st, ""))
	}
}

func presentStatusResponse(st Status, next string) statusResponse {
	return statusResponse{
		ID:            st.ID.String(),
		AppointmentID: st.AppointmentID.String(),
		Status:        PresentStatus(st),
		CreatedAt:     st.CreatedAt.UTC().Format(time.RFC3339),
		Next:          next,
	}
}

// decodeOptional accepts an empty body.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	switch {
	case errors.Is(err, ErrInvalidDecision):
		http.Error(w, "There is a problem", http.StatusBadRequest)
	case errors.Is(err, ErrInvalidFilter), errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "appointment not found", http.StatusNotFound)
	case errors.Is(err, clinics.ErrNotFound):
		http.Error(w, "clinic not found", http.StatusNotFound)
	case errors.Is(err, participants.ErrNotFound):
		http.Error(w, "participant not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, audit.ErrAnonymousAudit):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	default:
		middleware.LogError(log, r, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
