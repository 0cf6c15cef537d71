package domain

import (
	"time"

	"github.com/google/uuid"
)

// TrackingEvent is an engagement captured by the tracking edge and queued
// for the tracker.
type TrackingEvent struct {
	EventType  EventType `json:"event_type"`
	TenantID   uuid.UUID `json:"tenant_id"`
	CampaignID string    `json:"campaign_id"`
	ContactID  uuid.UUID `json:"contact_id"`
	LinkURL    string    `json:"link_url,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Metadata returns the fields worth keeping alongside the stored event.
func (e TrackingEvent) Metadata() map[string]any {
	md := map[string]any{}
	if e.LinkURL != "" {
		md["url"] = e.LinkURL
	}
	if e.IPAddress != "" {
		md["ip"] = e.IPAddress
	}
	if e.UserAgent != "" {
		md["user_agent"] = e.UserAgent
	}
	if !e.Timestamp.IsZero() {
		md["occurred_at"] = e.Timestamp.UTC().Format(time.RFC3339)
	}
	return md
}
