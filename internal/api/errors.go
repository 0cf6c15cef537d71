package api

import (
	"errors"
	"net/http"

	"github.com/ignite/travel-crm/internal/pkg/httputil"
	"github.com/ignite/travel-crm/internal/service/abtest"
	"github.com/ignite/travel-crm/internal/service/campaign"
	"github.com/ignite/travel-crm/internal/service/scoring"
)

// writeServiceError maps service sentinels to HTTP statuses. Anything
// unrecognised is logged and reported as a 500 without details.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scoring.ErrNotFound),
		errors.Is(err, campaign.ErrNotFound),
		errors.Is(err, abtest.ErrNotFound):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, campaign.ErrInvalidInput),
		errors.Is(err, campaign.ErrUnknownEventType),
		errors.Is(err, abtest.ErrInvalidInput):
		httputil.BadRequest(w, err.Error())
	case errors.Is(err, abtest.ErrInvalidTransition),
		errors.Is(err, campaign.ErrTenantMismatch):
		httputil.Conflict(w, err.Error())
	case errors.Is(err, scoring.ErrLostContact),
		errors.Is(err, scoring.ErrInvalidStage):
		httputil.Error(w, http.StatusUnprocessableEntity, err.Error())
	default:
		httputil.InternalError(w, err)
	}
}
