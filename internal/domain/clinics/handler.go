package clinics

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"manage-breast-screening/internal/domain/audit"
	"manage-breast-screening/internal/middleware"
	"manage-breast-screening/internal/platform/logger"
	"manage-breast-screening/internal/ports/capabilities"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, resolver capabilities.CapabilitiesResolver) {
	// GET /clinics/{clinicID} belongs to appointments, it renders the clinic's appointment list.
	r.With(middleware.RequireUser).Get("/clinics", listClinicsHandler(svc))
	r.With(middleware.RequireCapability(resolver, capabilities.ClinicsManage)).
		Post("/clinics/{clinicID}/status", updateStatusHandler(svc))
}

type updateStatusRequest struct {
	State string `json:"state"`
}

type statusResponse struct {
	ID        string `json:"id"`
	ClinicID  string `json:"clinic_id"`
	State     string `json:"state"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// listClinicsHandler godoc
// @Summary      Clinic list
// @Tags         clinics
// @Produce      json
// @Param        filter  query  string  false  "today | upcoming | completed | all"  default(today)
// @Success      200  {object}  ClinicsPresenter
// @Failure      400  {string}  string "invalid clinic filter"
// @Router       /clinics [get]
func listClinicsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := ParseFilter(r.URL.Query().Get("filter"))
		if err != nil {
			writeError(w, r, svc.log, err)
			return
		}

		items, err := svc.List(r.Context(), f)
		if err != nil {
			writeError(w, r, svc.log, err)
			return
		}
		counts, err := svc.FilterCounts(r.Context())
		if err != nil {
			writeError(w, r, svc.log, err)
			return
		}

		writeJSON(w, http.StatusOK, PresentClinics(items, f, counts, svc.Location()))
	}
}

// updateStatusHandler godoc
// @Summary      Append a clinic status
// @Tags         clinics
// @Accept       json
// @Produce      json
// @Param        clinicID  path  string               true  "Clinic UUID"
// @Param        body      body  updateStatusRequest  true  "SCHEDULED | IN_PROGRESS | CLOSED | CANCELLED"
// @Success      201  {object}  statusResponse
// @Failure      400  {string}  string "invalid input"
// @Failure      404  {string}  string "clinic not found"
// @Router       /clinics/{clinicID}/status [post]
func updateStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		st, err := svc.UpdateStatus(r.Context(), audit.Source{ActorID: claims.UserID},
			chi.URLParam(r, "clinicID"), State(strings.ToUpper(strings.TrimSpace(req.State))))
		if err != nil {
			writeError(w, r, svc.log, err)
			return
		}

		writeJSON(w, http.StatusCreated, statusResponse{
			ID:        st.ID.String(),
			ClinicID:  st.ClinicID.String(),
			State:     string(st.State),
			Text:      st.State.DisplayName(),
			CreatedAt: st.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
}

func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	switch {
	case errors.Is(err, ErrInvalidFilter), errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "clinic not found", http.StatusNotFound)
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
