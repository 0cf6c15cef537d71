package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ignite/travel-crm/internal/pkg/httputil"
)

// GetLeadPrediction returns the predictive score for one contact.
//
//	GET /api/leads/{contactID}/prediction
func (h *Handlers) GetLeadPrediction(w http.ResponseWriter, r *http.Request) {
	contactID, err := uuid.Parse(chi.URLParam(r, "contactID"))
	if err != nil {
		httputil.BadRequest(w, "invalid contact id")
		return
	}
	score, err := h.leads.PredictScore(r.Context(), tenantID(r), contactID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, score)
}

// ListTopPredictions ranks open leads by conversion probability.
//
//	GET /api/leads/predictions?limit=
func (h *Handlers) ListTopPredictions(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	scores, err := h.leads.TopPredictions(r.Context(), tenantID(r), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"predictions": scores, "count": len(scores)})
}
