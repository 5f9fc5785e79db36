package admin

import (
	"context"

	"rentfunnel/internal/domain"
)

// LeadPipeline is the lead service as seen by the back office
type LeadPipeline interface {
	List(ctx context.Context) ([]domain.Lead, error)
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
	UpdateStatus(ctx context.Context, id string, status domain.LeadStatus, notes string) (*domain.Lead, error)
}

// VehicleReader resolves catalog entries for enrichment
type VehicleReader interface {
	GetAll(ctx context.Context) ([]domain.Vehicle, error)
}

// QuoteReader resolves the quotes attached to leads
type QuoteReader interface {
	GetByID(ctx context.Context, id string) (*domain.Quote, error)
}
