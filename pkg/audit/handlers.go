package audit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// Router creates a chi.Router for the audit API.
func Router(store *Store) chi.Router {
	r := chi.NewRouter()
	r.Get("/events", ListEventsHandler(store))
	return r
}

// ListEventsHandler handles GET /api/audit/events.
// Query params: action, actor, chain, evidenceId, outcome, pageSize, pageToken.
func ListEventsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := ListFilter{
			Action:     r.URL.Query().Get("action"),
			Actor:      r.URL.Query().Get("actor"),
			Chain:      r.URL.Query().Get("chain"),
			EvidenceID: r.URL.Query().Get("evidenceId"),
			Outcome:    r.URL.Query().Get("outcome"),
		}

		pageSize := 20
		if ps := r.URL.Query().Get("pageSize"); ps != "" {
			if v, err := strconv.Atoi(ps); err == nil && v > 0 {
				pageSize = v
			}
		}

		records, nextToken, total, err := store.List(filter, pageSize, r.URL.Query().Get("pageToken"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list audit events: %v", err))
			return
		}

		events := make([]eventResponse, len(records))
		for i, rec := range records {
			events[i] = recordToResponse(rec)
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"events":        events,
			"nextPageToken": nextToken,
			"totalSize":     total,
		})
	}
}

type eventResponse struct {
	ID              string `json:"id"`
	Action          string `json:"action"`
	Actor           string `json:"actor"`
	ActorRole       string `json:"actorRole,omitempty"`
	EvidenceID      string `json:"evidenceId,omitempty"`
	InvestigationID string `json:"investigationId,omitempty"`
	Chain           string `json:"chain,omitempty"`
	Outcome         string `json:"outcome"`
	TxID            string `json:"txId,omitempty"`
	Reason          string `json:"reason,omitempty"`
	CreatedAt       string `json:"createdAt"`
}

func recordToResponse(rec EventRecord) eventResponse {
	return eventResponse{
		ID:              rec.ID,
		Action:          rec.Action,
		Actor:           rec.Actor,
		ActorRole:       rec.ActorRole,
		EvidenceID:      rec.EvidenceID,
		InvestigationID: rec.InvestigationID,
		Chain:           rec.Chain,
		Outcome:         rec.Outcome,
		TxID:            rec.TxID,
		Reason:          rec.Reason,
		CreatedAt:       rec.CreatedAt.Format(time.RFC3339Nano),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
