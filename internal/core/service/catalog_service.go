package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zetas/barbershop/internal/api/metrics"
	"github.com/zetas/barbershop/internal/core/domain"
	"github.com/zetas/barbershop/internal/core/ports"
)

// CatalogService manages the service price list and the lifecycle of the
// images uploaded for it.
type CatalogService struct {
	repo    ports.ServiceRepository
	images  ports.ImageStore
	cleaner ports.ImageCleaner
	now     func() time.Time
	logger  zerolog.Logger
}

func NewCatalogService(repo ports.ServiceRepository, images ports.ImageStore, cleaner ports.ImageCleaner, logger zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, images: images, cleaner: cleaner, now: time.Now, logger: logger}
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Service, error) {
	return s.repo.List(ctx)
}

func (s *CatalogService) Create(ctx context.Context, input ports.CreateServiceInput) (*domain.Service, error) {
	upload := s.prepareUpload(ctx, input.Img)

	svc := domain.Service{
		ID:              domain.ServiceIDPrefix + uuid.NewString(),
		Name:            input.Name,
		Price:           input.Price,
		Description:     input.Description,
		DurationMinutes: input.DurationMinutes,
		Img:             s.resolveImage(input.Img, upload, nil),
		CreatedAt:       s.now().UTC().Format(createdAtLayout),
	}

	if err := s.repo.Insert(ctx, svc); err != nil {
		s.release(upload.path)
		s.logger.Error().Err(err).Msg("failed to create service")
		return nil, err
	}

	s.logger.Info().Str("service_id", svc.ID).Str("name", svc.Name).Msg("service created")
	return &svc, nil
}

func (s *CatalogService) Update(ctx context.Context, id string, patch ports.ServicePatch) (*domain.Service, error) {
	upload := s.prepareUpload(ctx, patch.Img)

	var previousImg *string
	updated, err := s.repo.Update(ctx, id, func(current domain.Service) (domain.Service, error) {
		previousImg = current.Img
		next := current
		if patch.Name != nil {
			next.Name = *patch.Name
		}
		if patch.Price != nil {
			next.Price = patch.Price
		}
		if patch.Description != nil {
			next.Description = *patch.Description
		}
		if patch.DurationMinutes != nil {
			next.DurationMinutes = patch.DurationMinutes
		}
		next.Img = s.resolveImage(patch.Img, upload, current.Img)
		return next, nil
	})
	if err != nil {
		s.release(upload.path)
		return nil, err
	}

	if previousImg != nil && !sameImage(previousImg, updated.Img) {
		s.releaseUnreferenced(ctx, *previousImg)
	}
	if upload.path != "" && !sameImage(&upload.path, updated.Img) {
		s.release(upload.path)
	}

	s.logger.Info().Str("service_id", id).Msg("service updated")
	return updated, nil
}

// Delete removes the service and schedules removal of its managed image.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if removed != nil && removed.Img != nil {
		s.releaseUnreferenced(ctx, *removed.Img)
	}
	s.logger.Info().Str("service_id", id).Bool("existed", removed != nil).Msg("service deleted")
	return nil
}

type pendingUpload struct {
	raw  string
	path string
	err  error
}

// prepareUpload writes a data URI to disk before the record mutation starts,
// so compare-and-swap retries never write the same image twice.
func (s *CatalogService) prepareUpload(ctx context.Context, f domain.ImageField) pendingUpload {
	if classifyImage(f) != imageDataURI {
		return pendingUpload{}
	}
	raw := strings.TrimSpace(*f.Value)
	p, err := s.images.SaveDataURI(ctx, raw)
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("failed").Inc()
		s.logger.Warn().Err(err).Msg("image upload failed, keeping previous value")
		return pendingUpload{raw: raw, err: err}
	}
	metrics.ImageUploadsTotal.WithLabelValues("saved").Inc()
	return pendingUpload{raw: raw, path: p}
}

// resolveImage returns the img value to store given the incoming field and
// the previously stored value (nil on create).
func (s *CatalogService) resolveImage(f domain.ImageField, upload pendingUpload, previous *string) *string {
	switch classifyImage(f) {
	case imageAbsent:
		return previous
	case imageNull:
		return nil
	case imageDataURI:
		if upload.err == nil {
			p := upload.path
			return &p
		}
		if previous != nil {
			return previous
		}
		raw := upload.raw
		return &raw
	case imageURL:
		v := strings.TrimSpace(*f.Value)
		return &v
	case imageLocalPath:
		v := strings.TrimSpace(*f.Value)
		// A managed upload belongs to the service it was saved for. Pointing
		// at someone else's file would let deleting this service remove it.
		if s.images.IsManaged(v) && (previous == nil || *previous != v) {
			s.logger.Warn().Str("img", v).Msg("managed upload owned by another service ignored")
			return previous
		}
		return &v
	default:
		s.logger.Warn().Msg("unsupported img value ignored")
		return previous
	}
}

// release schedules removal of a managed upload. Anything else is ignored.
func (s *CatalogService) release(publicPath string) {
	if publicPath == "" || s.cleaner == nil || !s.images.IsManaged(publicPath) {
		return
	}
	s.cleaner.Enqueue(publicPath)
}

// releaseUnreferenced releases publicPath unless another service still
// points at it, which older records may do.
func (s *CatalogService) releaseUnreferenced(ctx context.Context, publicPath string) {
	if !s.images.IsManaged(publicPath) {
		return
	}
	services, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("img", publicPath).Msg("cannot check image references, keeping file")
		return
	}
	for _, svc := range services {
		if svc.Img != nil && *svc.Img == publicPath {
			s.logger.Warn().Str("img", publicPath).Str("service_id", svc.ID).Msg("image still referenced, keeping file")
			return
		}
	}
	s.release(publicPath)
}

func sameImage(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
