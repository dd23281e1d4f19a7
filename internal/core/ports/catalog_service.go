package ports

import (
	"context"

	"github.com/zetas/barbershop/internal/core/domain"
)

// CreateServiceInput carries the fields accepted when adding a service.
type CreateServiceInput struct {
	Name            string
	Price           *float64
	Description     string
	DurationMinutes *int
	Img             domain.ImageField
}

// ServicePatch is a shallow partial update. Img follows the tri-state rules:
// absent keeps, null clears, a string is classified.
type ServicePatch struct {
	Name            *string
	Price           *float64
	Description     *string
	DurationMinutes *int
	Img             domain.ImageField
}

// CatalogService defines use-case operations for the service catalogue.
type CatalogService interface {
	List(ctx context.Context) ([]domain.Service, error)
	Create(ctx context.Context, input CreateServiceInput) (*domain.Service, error)
	Update(ctx context.Context, id string, patch ServicePatch) (*domain.Service, error)
	Delete(ctx context.Context, id string) error
}
