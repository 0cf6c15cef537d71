package domain

import (
	"time"

	"github.com/google/uuid"
)

// Contact is a lead or customer as seen by the analytics core. The CRM owns
// writes; the core only reads.
type Contact struct {
	ID                    uuid.UUID     `json:"id"`
	TenantID              uuid.UUID     `json:"tenant_id"`
	Stage                 PipelineStage `json:"pipeline_stage"`
	LeadScore             int           `json:"lead_score"`
	IsHotLead             bool          `json:"is_hot_lead"`
	Source                string        `json:"source,omitempty"`
	Email                 string        `json:"email,omitempty"`
	Phone                 string        `json:"phone,omitempty"`
	InterestedDestination string        `json:"interested_destination,omitempty"`
	TravelType            string        `json:"travel_type,omitempty"`
	TravelStartDate       *time.Time    `json:"travel_start_date,omitempty"`
	TravelEndDate         *time.Time    `json:"travel_end_date,omitempty"`
	NumTravelers          *int          `json:"num_travelers,omitempty"`
	BudgetMin             *float64      `json:"budget_min,omitempty"`
	BudgetMax             *float64      `json:"budget_max,omitempty"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

// ContactActivity is a contact plus the interaction and task aggregates
// the scorer needs.
type ContactActivity struct {
	Contact           Contact
	InteractionCount  int
	LastInteractionAt *time.Time
	CompletedTasks    int
}

// LastActivity returns the most recent interaction time, or the creation
// time when the contact has no interactions.
func (a ContactActivity) LastActivity() time.Time {
	if a.LastInteractionAt != nil {
		return *a.LastInteractionAt
	}
	return a.Contact.CreatedAt
}

// ClampScore bounds a lead score to [0,100].
func ClampScore(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
