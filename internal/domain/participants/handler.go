package participants

import (
	"encoding/json"
	"errors"
	"net/http"

	"manage-breast-screening/internal/domain/audit"
	"manage-breast-screening/internal/middleware"
	"manage-breast-screening/internal/platform/logger"
	"manage-breast-screening/internal/ports/capabilities"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, resolver capabilities.CapabilitiesResolver) {
	edit := middleware.RequireCapability(resolver, capabilities.ParticipantsEdit)

	r.With(middleware.RequireUser).Get("/ethnic-backgrounds", listEthnicBackgroundsHandler())

	// Flat patterns: appointments registers more routes under /participants/{participantID}.
	r.With(middleware.RequireUser).Get("/participants/{participantID}", getParticipantHandler(svc))
	r.With(edit).Put("/participants/{participantID}/ethnicity", updateEthnicityHandler(svc))
	r.With(edit).Put("/participants/{participantID}/address", setAddressHandler(svc))
	r.With(edit).Delete("/participants/{participantID}/address", removeAddressHandler(svc))
}

type participantResponse struct {
	ParticipantPresenter
	EthnicityURL string `json:"ethnicity_url"`
}

type updateEthnicityRequest struct {
	EthnicBackgroundID string `json:"ethnic_background_id"`
	Details            string `json:"details"`
}

type setAddressRequest struct {
	Lines    []string `json:"lines"`
	Postcode string   `json:"postcode"`
}

type ethnicBackgroundResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category,omitempty"`
	NonSpecific bool   `json:"non_specific"`
}

// getParticipantHandler godoc
// @Summary      Participant record
// @Tags         participants
// @Produce      json
// @Param        participantID  path  string  true  "Participant UUID"
// @Param        return_url     query string  false "Return path for the ethnicity form link"
// @Success      200  {object}  participantResponse
// @Failure      404  {string}  string "participant not found"
// @Router       /participants/{participantID} [get]
func getParticipantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "participantID"))
		if err != nil {
			writeError(w, r, svc.log, err)
			return
		}

		pp := PresentParticipant(p, svc.Now())
		writeJSON(w, http.StatusOK, participantResponse{
			ParticipantPresenter: pp,
			EthnicityURL:         pp.EthnicityURL(r.URL.Query().Get("return_url")),
		})
	}
}

// updateEthnicityHandler godoc
// @Summary      Record a participant's ethnic background
// @Tags         participants
// @Accept       json
// @Produce      json
// @Param        participantID  path  string                  true  "Participant UUID"
// @Param        body           body  updateEthnicityRequest  true  "Chosen background"
// @Success      200  {object}  participantResponse
// @Failure      400  {string}  string "Select an ethnic background"
// @Router       /participants/{participantID}/ethnicity [put]
func updateEthnicityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req updateEthnicityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.UpdateEthnicity(r.Context(), audit.Source{ActorID: claims.UserID},
			chi.URLParam(r, "participantID"),
			EthnicityInput{EthnicBackgroundID: req.EthnicBackgroundID, Details: req.Details})
		if err != nil {
			writeError(w, r, svc.log, err)
			return
		}

		pp := PresentParticipant(p, svc.Now())
		writeJSON(w, http.StatusOK, participantResponse{ParticipantPresenter: pp, EthnicityURL: pp.EthnicityURL("")})
	}
}

// setAddressHandler godoc
// @Summary      Create or replace a participant's address
// @Tags         participants
// @Accept       json
// @Produce      json
// @Param        participantID  path  string             true  "Participant UUID"
// @Param        body           body  setAddressRequest  true  "Address"
// @Success      200  {object}  participantResponse
// @Router       /participants/{participantID}/address [put]
func setAddressHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req setAddressRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.SetAddress(r.Context(), audit.Source{ActorID: claims.UserID},
			chi.URLParam(r, "participantID"),
			AddressInput{Lines: req.Lines, Postcode: req.Postcode})
		if err != nil {
			writeError(w, r, svc.log, err)
			return
		}

		pp := PresentParticipant(p, svc.Now())
		writeJSON(w, http.StatusOK, participantResponse{ParticipantPresenter: pp, EthnicityURL: pp.EthnicityURL("")})
	}
}

// removeAddressHandler godoc
// @Summary      Remove a participant's address
// @Tags         participants
// @Param        participantID  path  string  true  "Participant UUID"
// @Success      204
// @Failure      404  {string}  string "participant not found"
// @Router       /participants/{participantID}/address [delete]
func removeAddressHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		err := svc.RemoveAddress(r.Context(), audit.Source{ActorID: claims.UserID}, chi.URLParam(r, "participantID"))
		if err != nil {
			writeError(w, r, svc.log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// listEthnicBackgroundsHandler godoc
// @Summary      Ethnic background options
// @Tags         participants
// @Produce      json
// @Success      200  {array}  ethnicBackgroundResponse
// @Router       /ethnic-backgrounds [get]
func listEthnicBackgroundsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		out := make([]ethnicBackgroundResponse, 0, len(EthnicBackgrounds))
		for _, b := range EthnicBackgrounds {
			out = append(out, ethnicBackgroundResponse{
				ID:          b.ID,
				DisplayName: b.DisplayName,
				Category:    b.Category,
				NonSpecific: b.NonSpecific,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	switch {
	case errors.Is(err, ErrEthnicBackgroundRequired):
		http.Error(w, "Select an ethnic background", http.StatusBadRequest)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "participant not found", http.StatusNotFound)
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
