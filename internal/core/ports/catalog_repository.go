package ports

import (
	"context"

	"github.com/zetas/barbershop/internal/core/domain"
)

// ServiceRepository defines persistence operations for the service catalogue.
type ServiceRepository interface {
	List(ctx context.Context) ([]domain.Service, error)
	Insert(ctx context.Context, s domain.Service) error
	// Update applies fn to the record with the given id. fn receives a copy
	// of the stored record and returns the replacement.
	Update(ctx context.Context, id string, fn func(current domain.Service) (domain.Service, error)) (*domain.Service, error)
	// Delete removes the record and returns it, or nil when it was absent.
	Delete(ctx context.Context, id string) (*domain.Service, error)
}

// ImageStore owns the managed uploads directory.
type ImageStore interface {
	// SaveDataURI decodes a data URI and writes it under the uploads
	// directory, returning the public path of the new file.
	SaveDataURI(ctx context.Context, dataURI string) (string, error)
	// IsManaged reports whether a stored img value points into the uploads
	// directory.
	IsManaged(publicPath string) bool
	// Remove deletes a managed file. Paths resolving outside the uploads
	// root are refused.
	Remove(ctx context.Context, publicPath string) error
}

// ImageCleaner schedules best-effort removal of managed uploads.
type ImageCleaner interface {
	Enqueue(publicPath string)
}
