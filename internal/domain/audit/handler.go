package audit

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"manage-breast-screening/internal/middleware"
	"manage-breast-screening/internal/ports/capabilities"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, resolver capabilities.CapabilitiesResolver) {
	r.With(middleware.RequireCapability(resolver, capabilities.AuditRead)).
		Get("/audit-logs", listAuditLogsHandler(svc))
}

type logResponse struct {
	ID             string         `json:"id"`
	ContentType    string         `json:"content_type"`
	ObjectID       string         `json:"object_id"`
	Operation      Operation      `json:"operation"`
	Snapshot       map[string]any `json:"snapshot"`
	ActorID        *string        `json:"actor_id,omitempty"`
	SystemUpdateID *string        `json:"system_update_id,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// listAuditLogsHandler godoc
// @Summary      Audit trail of one object
// @Tags         audit
// @Produce      json
// @Param        content_type  query  string  true  "Content type, e.g. participants.participant"
// @Param        object_id     query  string  true  "Object UUID"
// @Success      200  {array}  logResponse
// @Failure      400  {string} string "invalid input"
// @Failure      401  {string} string "unauthorized"
// @Failure      403  {string} string "forbidden"
// @Router       /audit-logs [get]
func listAuditLogsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		logs, err := svc.ListForObject(r.Context(), q.Get("content_type"), q.Get("object_id"))
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "content_type and object_id are required", http.StatusBadRequest)
				return
			}
			middleware.LogError(svc.log, r, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]logResponse, 0, len(logs))
		for _, l := range logs {
			out = append(out, logResponse{
				ID:             l.ID.String(),
				ContentType:    l.ContentType,
				ObjectID:       l.ObjectID.String(),
				Operation:      l.Operation,
				Snapshot:       l.Snapshot,
				ActorID:        l.ActorID,
				SystemUpdateID: l.SystemUpdateID,
				CreatedAt:      l.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
