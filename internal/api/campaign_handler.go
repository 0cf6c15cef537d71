package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ignite/travel-crm/internal/domain"
	"github.com/ignite/travel-crm/internal/export"
	"github.com/ignite/travel-crm/internal/pkg/httputil"
	"github.com/ignite/travel-crm/internal/pkg/logger"
	"github.com/ignite/travel-crm/internal/service/campaign"
)

type trackEventRequest struct {
	ContactID  uuid.UUID        `json:"contact_id"`
	EventType  domain.EventType `json:"event_type"`
	Metadata   map[string]any   `json:"metadata,omitempty"`
	// OccurredAt is the provider's event time, if it reports one.
	OccurredAt time.Time        `json:"occurred_at,omitempty"`
}

// TrackCampaignEvent records one engagement, e.g. from an ESP webhook.
// Repeats are accepted and reported as duplicates.
//
//	POST /api/campaigns/{campaignID}/events
func (h *Handlers) TrackCampaignEvent(w http.ResponseWriter, r *http.Request) {
	var req trackEventRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	res, err := h.campaigns.TrackEvent(r.Context(), tenantID(r), campaign.TrackInput{
		CampaignID: chi.URLParam(r, "campaignID"),
		ContactID:  req.ContactID,
		EventType:  req.EventType,
		Metadata:   req.Metadata,
		OccurredAt: req.OccurredAt,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if res.Duplicate {
		httputil.OK(w, res)
		return
	}
	httputil.Created(w, res)
}

type registerSendRequest struct {
	TemplateID   string      `json:"template_id"`
	TemplateName string      `json:"template_name"`
	ContactIDs   []uuid.UUID `json:"contact_ids"`
	SentCount    int         `json:"sent_count"`
	FailedCount  int         `json:"failed_count"`
}

// RegisterCampaignSend stores a send outcome.
//
//	POST /api/campaigns/{campaignID}/sends
func (h *Handlers) RegisterCampaignSend(w http.ResponseWriter, r *http.Request) {
	var req registerSendRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	err := h.campaigns.RegisterCampaignSend(r.Context(), tenantID(r), campaign.SendInput{
		CampaignID:   chi.URLParam(r, "campaignID"),
		TemplateID:   req.TemplateID,
		TemplateName: req.TemplateName,
		ContactIDs:   req.ContactIDs,
		SentCount:    req.SentCount,
		FailedCount:  req.FailedCount,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}

// GetCampaignMetrics returns derived rates for one campaign.
//
//	GET /api/campaigns/{campaignID}/metrics
func (h *Handlers) GetCampaignMetrics(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")
	m, err := h.campaigns.CampaignMetrics(r.Context(), tenantID(r), campaignID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if m == nil {
		httputil.NotFound(w, "no metrics for campaign "+campaignID)
		return
	}
	httputil.OK(w, m)
}

// ListCampaignEvents returns the newest events for a campaign.
//
//	GET /api/campaigns/{campaignID}/events?limit=
func (h *Handlers) ListCampaignEvents(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	events, err := h.campaigns.RecentEvents(r.Context(), tenantID(r), chi.URLParam(r, "campaignID"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"events": events, "count": len(events)})
}

// GetCampaignsSummary returns tenant-wide averages and the best template.
//
//	GET /api/campaigns/summary
func (h *Handlers) GetCampaignsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.campaigns.CampaignsSummary(r.Context(), tenantID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, summary)
}

// GetCampaignsTimeline returns daily counts for the trailing window.
//
//	GET /api/campaigns/timeline
func (h *Handlers) GetCampaignsTimeline(w http.ResponseWriter, r *http.Request) {
	points, err := h.campaigns.TimelineMetrics(r.Context(), tenantID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"timeline": points, "days": campaign.TimelineDays})
}

// ExportCampaignReport streams the campaign workbook.
//
//	GET /api/campaigns/report.xlsx
func (h *Handlers) ExportCampaignReport(w http.ResponseWriter, r *http.Request) {
	tenant := tenantID(r)
	summary, err := h.campaigns.CampaignsSummary(r.Context(), tenant)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	metrics, err := h.campaigns.ListMetrics(r.Context(), tenant)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	f, err := export.CampaignReport(summary, metrics)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("campaigns_%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := f.Write(w); err != nil {
		logger.Error("write campaign report failed", "error", err)
	}
}
