package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ignite/travel-crm/internal/pkg/httputil"
	"github.com/ignite/travel-crm/internal/tracking"
)

type trackingLinks struct {
	OpenURL        string `json:"open_url"`
	ClickURL       string `json:"click_url,omitempty"`
	UnsubscribeURL string `json:"unsubscribe_url"`
}

// GetTrackingLinks returns the signed open, unsubscribe and (when url is
// given) click links to embed in one contact's copy of a campaign.
//
//	GET /api/campaigns/{campaignID}/links?contact_id=&url=
func (h *Handlers) GetTrackingLinks(w http.ResponseWriter, r *http.Request) {
	if h.links == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "tracking links are not configured")
		return
	}
	contactID, err := uuid.Parse(r.URL.Query().Get("contact_id"))
	if err != nil || contactID == uuid.Nil {
		httputil.BadRequest(w, "invalid contact_id")
		return
	}
	target := r.URL.Query().Get("url")
	if target != "" && !tracking.Redirectable(target) {
		httputil.BadRequest(w, "url must be an absolute http or https URL")
		return
	}

	tenant := tenantID(r)
	campaignID := chi.URLParam(r, "campaignID")
	out := trackingLinks{
		OpenURL:        h.links.OpenURL(tenant, campaignID, contactID),
		UnsubscribeURL: h.links.UnsubscribeURL(tenant, campaignID, contactID),
	}
	if target != "" {
		out.ClickURL = h.links.ClickURL(tenant, campaignID, contactID, target)
	}
	httputil.OK(w, out)
}
