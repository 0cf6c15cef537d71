package api

import (
	"net/http"

	"github.com/ignite/travel-crm/internal/pkg/httputil"
	"github.com/ignite/travel-crm/internal/service/abtest"
)

// CreateABTest creates a draft test.
//
//	POST /api/abtests
func (h *Handlers) CreateABTest(w http.ResponseWriter, r *http.Request) {
	var in abtest.CreateInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	id, err := h.abtests.Create(r.Context(), tenantID(r), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	t, err := h.abtests.Get(r.Context(), tenantID(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.Created(w, t)
}

//	GET /api/abtests
func (h *Handlers) ListABTests(w http.ResponseWriter, r *http.Request) {
	tests, err := h.abtests.List(r.Context(), tenantID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"ab_tests": tests, "count": len(tests)})
}

//	GET /api/abtests/{id}
func (h *Handlers) GetABTest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathTestID(w, r)
	if !ok {
		return
	}
	t, err := h.abtests.Get(r.Context(), tenantID(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, t)
}

// StartABTest moves a draft test to running.
//
//	POST /api/abtests/{id}/start
func (h *Handlers) StartABTest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathTestID(w, r)
	if !ok {
		return
	}
	if err := h.abtests.Start(r.Context(), tenantID(r), id); err != nil {
		writeServiceError(w, err)
		return
	}
	t, err := h.abtests.Get(r.Context(), tenantID(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, t)
}

// RegisterABTestSend records the send of one variant.
//
//	POST /api/abtests/{id}/sends
func (h *Handlers) RegisterABTestSend(w http.ResponseWriter, r *http.Request) {
	id, ok := pathTestID(w, r)
	if !ok {
		return
	}
	var out abtest.SendOutcome
	if !httputil.Decode(w, r, &out) {
		return
	}
	if err := h.abtests.RegisterVariantSend(r.Context(), tenantID(r), id, out); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}

// EvaluateABTest decides the winner from current metrics.
//
//	POST /api/abtests/{id}/evaluate
func (h *Handlers) EvaluateABTest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathTestID(w, r)
	if !ok {
		return
	}
	res, err := h.abtests.Evaluate(r.Context(), tenantID(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if res == nil {
		httputil.NotFound(w, "ab test or variant metrics not found")
		return
	}
	httputil.OK(w, res)
}
