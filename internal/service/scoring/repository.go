package scoring

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignite/travel-crm/internal/domain"
)

// Repository defines the data access contract for lead scoring.
// Implementations must be safe for concurrent use.
type Repository interface {
	// ContactActivity returns one contact with its interaction and task
	// aggregates. Returns ErrNotFound if the contact doesn't exist.
	ContactActivity(ctx context.Context, tenantID, contactID uuid.UUID) (*domain.ContactActivity, error)

	// ConversionStats aggregates the tenant's converted contacts.
	ConversionStats(ctx context.Context, tenantID uuid.UUID) (ConversionStats, error)

	// OpenContacts returns up to limit contacts that are neither won nor
	// lost, highest lead score first.
	OpenContacts(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.ContactActivity, error)
}
