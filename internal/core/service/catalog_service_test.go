package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/zetas/barbershop/internal/core/domain"
	"github.com/zetas/barbershop/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubServiceRepo struct {
	items     []domain.Service
	insertErr error
}

func (r *stubServiceRepo) List(context.Context) ([]domain.Service, error) {
	return append([]domain.Service(nil), r.items...), nil
}

func (r *stubServiceRepo) Insert(_ context.Context, s domain.Service) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.items = append(r.items, s)
	return nil
}

func (r *stubServiceRepo) Update(_ context.Context, id string, fn func(domain.Service) (domain.Service, error)) (*domain.Service, error) {
	for i := range r.items {
		if r.items[i].ID == id {
			next, err := fn(r.items[i])
			if err != nil {
				return nil, err
			}
			r.items[i] = next
			return &next, nil
		}
	}
	return nil, domain.ErrServiceNotFound
}

func (r *stubServiceRepo) Delete(_ context.Context, id string) (*domain.Service, error) {
	for i, s := range r.items {
		if s.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return &s, nil
		}
	}
	return nil, nil
}

type stubImageStore struct {
	saved   int
	saveErr error
}

func (s *stubImageStore) SaveDataURI(context.Context, string) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.saved++
	return "/uploads/services/svc-new-" + string(rune('0'+s.saved)) + ".png", nil
}

func (s *stubImageStore) IsManaged(p string) bool {
	return strings.HasPrefix(p, "/uploads/services/")
}

func (s *stubImageStore) Remove(context.Context, string) error { return nil }

type recordingCleaner struct {
	paths []string
}

func (c *recordingCleaner) Enqueue(p string) { c.paths = append(c.paths, p) }

func newCatalog(repo *stubServiceRepo, images *stubImageStore) (*CatalogService, *recordingCleaner) {
	cleaner := &recordingCleaner{}
	return NewCatalogService(repo, images, cleaner, discardLogger), cleaner
}

const pngDataURI = "data:image/png;base64,iVBORw0KGgo="

func managedService(id, img string) domain.Service {
	return domain.Service{ID: id, Name: "Fade", Img: &img}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestCatalogService_Create_AssignsPrefixedID(t *testing.T) {
	repo := &stubServiceRepo{}
	svc, _ := newCatalog(repo, &stubImageStore{})

	created, err := svc.Create(context.Background(), ports.CreateServiceInput{Name: "Fade"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(created.ID, domain.ServiceIDPrefix) {
		t.Errorf("expected svc- prefix, got %s", created.ID)
	}
	if created.CreatedAt == "" {
		t.Error("created_at must be set")
	}
	if created.Img != nil {
		t.Errorf("expected nil img, got %v", *created.Img)
	}
}

func TestCatalogService_Create_DataURIIsSaved(t *testing.T) {
	images := &stubImageStore{}
	svc, _ := newCatalog(&stubServiceRepo{}, images)

	created, _ := svc.Create(context.Background(), ports.CreateServiceInput{Name: "Fade", Img: domain.NewImage(pngDataURI)})
	if created.Img == nil || !strings.HasPrefix(*created.Img, "/uploads/services/") {
		t.Fatalf("expected managed path, got %v", created.Img)
	}
	if images.saved != 1 {
		t.Fatalf("expected one save, got %d", images.saved)
	}
}

func TestCatalogService_Create_FailedUploadKeepsRawValue(t *testing.T) {
	svc, _ := newCatalog(&stubServiceRepo{}, &stubImageStore{saveErr: errors.New("disk full")})

	created, err := svc.Create(context.Background(), ports.CreateServiceInput{Name: "Fade", Img: domain.NewImage(pngDataURI)})
	if err != nil {
		t.Fatalf("upload failure must not fail the create: %v", err)
	}
	if created.Img == nil || *created.Img != pngDataURI {
		t.Fatalf("expected raw data uri to be kept, got %v", created.Img)
	}
}

func TestCatalogService_Create_UnsafeImgBecomesNull(t *testing.T) {
	svc, _ := newCatalog(&stubServiceRepo{}, &stubImageStore{})

	for _, unsafe := range []string{"../../etc/passwd", "//evil.example/x.png", "javascript:alert(1)", "C:\\img.png"} {
		created, _ := svc.Create(context.Background(), ports.CreateServiceInput{Name: "x", Img: domain.NewImage(unsafe)})
		if created.Img != nil {
			t.Errorf("%q: expected nil img, got %q", unsafe, *created.Img)
		}
	}
}

func TestCatalogService_Create_InsertFailureReleasesUpload(t *testing.T) {
	repo := &stubServiceRepo{insertErr: errors.New("write failed")}
	svc, cleaner := newCatalog(repo, &stubImageStore{})

	if _, err := svc.Create(context.Background(), ports.CreateServiceInput{Name: "x", Img: domain.NewImage(pngDataURI)}); err == nil {
		t.Fatal("expected error")
	}
	if len(cleaner.paths) != 1 {
		t.Fatalf("expected orphaned upload to be released, got %v", cleaner.paths)
	}
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func TestCatalogService_Update_NullClearsAndReleases(t *testing.T) {
	repo := &stubServiceRepo{items: []domain.Service{managedService("svc-1", "/uploads/services/old.png")}}
	svc, cleaner := newCatalog(repo, &stubImageStore{})

	updated, err := svc.Update(context.Background(), "svc-1", ports.ServicePatch{Img: domain.NullImage()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Img != nil {
		t.Fatalf("expected img cleared, got %v", *updated.Img)
	}
	if len(cleaner.paths) != 1 || cleaner.paths[0] != "/uploads/services/old.png" {
		t.Fatalf("expected old upload released, got %v", cleaner.paths)
	}
}

func TestCatalogService_Update_AbsentKeepsImage(t *testing.T) {
	repo := &stubServiceRepo{items: []domain.Service{managedService("svc-1", "/uploads/services/old.png")}}
	svc, cleaner := newCatalog(repo, &stubImageStore{})

	name := "Skin fade"
	updated, _ := svc.Update(context.Background(), "svc-1", ports.ServicePatch{Name: &name})
	if updated.Img == nil || *updated.Img != "/uploads/services/old.png" || updated.Name != name {
		t.Fatalf("unexpected record: %+v", updated)
	}
	if len(cleaner.paths) != 0 {
		t.Fatalf("nothing should be released, got %v", cleaner.paths)
	}
}

func TestCatalogService_Update_ReplaceReleasesOld(t *testing.T) {
	repo := &stubServiceRepo{items: []domain.Service{managedService("svc-1", "/uploads/services/old.png")}}
	svc, cleaner := newCatalog(repo, &stubImageStore{})

	updated, _ := svc.Update(context.Background(), "svc-1", ports.ServicePatch{Img: domain.NewImage(pngDataURI)})
	if updated.Img == nil || *updated.Img == "/uploads/services/old.png" {
		t.Fatalf("expected new image, got %v", updated.Img)
	}
	if len(cleaner.paths) != 1 || cleaner.paths[0] != "/uploads/services/old.png" {
		t.Fatalf("expected old upload released, got %v", cleaner.paths)
	}
}

func TestCatalogService_Update_UnsafeKeepsPrevious(t *testing.T) {
	repo := &stubServiceRepo{items: []domain.Service{managedService("svc-1", "https://cdn.example/a.png")}}
	svc, cleaner := newCatalog(repo, &stubImageStore{})

	updated, _ := svc.Update(context.Background(), "svc-1", ports.ServicePatch{Img: domain.NewImage("file:///etc/passwd")})
	if updated.Img == nil || *updated.Img != "https://cdn.example/a.png" {
		t.Fatalf("expected previous img, got %v", updated.Img)
	}
	if len(cleaner.paths) != 0 {
		t.Fatalf("nothing should be released, got %v", cleaner.paths)
	}
}

func TestCatalogService_Update_FailedUploadKeepsPrevious(t *testing.T) {
	repo := &stubServiceRepo{items: []domain.Service{managedService("svc-1", "/uploads/services/old.png")}}
	svc, cleaner := newCatalog(repo, &stubImageStore{saveErr: errors.New("disk full")})

	updated, err := svc.Update(context.Background(), "svc-1", ports.ServicePatch{Img: domain.NewImage(pngDataURI)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Img == nil || *updated.Img != "/uploads/services/old.png" {
		t.Fatalf("expected previous img, got %v", updated.Img)
	}
	if len(cleaner.paths) != 0 {
		t.Fatalf("previous image must not be released, got %v", cleaner.paths)
	}
}

func TestCatalogService_Update_NotFoundReleasesUpload(t *testing.T) {
	svc, cleaner := newCatalog(&stubServiceRepo{}, &stubImageStore{})

	_, err := svc.Update(context.Background(), "ghost", ports.ServicePatch{Img: domain.NewImage(pngDataURI)})
	if !errors.Is(err, domain.ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", err)
	}
	if len(cleaner.paths) != 1 {
		t.Fatalf("expected fresh upload to be released, got %v", cleaner.paths)
	}
}

func TestCatalogService_Update_ExternalImageNeverReleased(t *testing.T) {
	repo := &stubServiceRepo{items: []domain.Service{managedService("svc-1", "https://cdn.example/a.png")}}
	svc, cleaner := newCatalog(repo, &stubImageStore{})

	_, _ = svc.Update(context.Background(), "svc-1", ports.ServicePatch{Img: domain.NullImage()})
	if len(cleaner.paths) != 0 {
		t.Fatalf("external images must not be released, got %v", cleaner.paths)
	}
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestCatalogService_Delete_ReleasesImage(t *testing.T) {
	repo := &stubServiceRepo{items: []domain.Service{managedService("svc-1", "/uploads/services/old.png")}}
	svc, cleaner := newCatalog(repo, &stubImageStore{})

	if err := svc.Delete(context.Background(), "svc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(context.Background(), "svc-1"); err != nil {
		t.Fatalf("second delete must succeed: %v", err)
	}
	if len(cleaner.paths) != 1 {
		t.Fatalf("expected one release, got %v", cleaner.paths)
	}
}

// ---------------------------------------------------------------------------
// Image ownership
// ---------------------------------------------------------------------------

func TestCatalogService_Create_ForeignManagedPathIgnored(t *testing.T) {
	repo := &stubServiceRepo{}
	svc, cleaner := newCatalog(repo, &stubImageStore{})
	ctx := context.Background()

	owner, _ := svc.Create(ctx, ports.CreateServiceInput{Name: "Fade", Img: domain.NewImage(pngDataURI)})
	borrower, err := svc.Create(ctx, ports.CreateServiceInput{Name: "Beard", Img: domain.NewImage(*owner.Img)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if borrower.Img != nil {
		t.Fatalf("expected foreign managed path to be dropped, got %q", *borrower.Img)
	}

	if err := svc.Delete(ctx, borrower.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(cleaner.paths) != 0 {
		t.Fatalf("deleting one service must not release another's image, got %v", cleaner.paths)
	}
}

func TestCatalogService_Update_ForeignManagedPathKeepsPrevious(t *testing.T) {
	repo := &stubServiceRepo{items: []domain.Service{
		managedService("svc-a", "/uploads/services/a.png"),
		managedService("svc-b", "/uploads/services/b.png"),
	}}
	svc, cleaner := newCatalog(repo, &stubImageStore{})

	updated, _ := svc.Update(context.Background(), "svc-a", ports.ServicePatch{Img: domain.NewImage("/uploads/services/b.png")})
	if updated.Img == nil || *updated.Img != "/uploads/services/a.png" {
		t.Fatalf("expected own image kept, got %v", updated.Img)
	}
	if len(cleaner.paths) != 0 {
		t.Fatalf("nothing should be released, got %v", cleaner.paths)
	}
}

func TestCatalogService_Update_OwnManagedPathAccepted(t *testing.T) {
	repo := &stubServiceRepo{items: []domain.Service{managedService("svc-a", "/uploads/services/a.png")}}
	svc, cleaner := newCatalog(repo, &stubImageStore{})

	updated, _ := svc.Update(context.Background(), "svc-a", ports.ServicePatch{Img: domain.NewImage("/uploads/services/a.png")})
	if updated.Img == nil || *updated.Img != "/uploads/services/a.png" {
		t.Fatalf("expected image unchanged, got %v", updated.Img)
	}
	if len(cleaner.paths) != 0 {
		t.Fatalf("nothing should be released, got %v", cleaner.paths)
	}
}

func TestCatalogService_Delete_SharedImageKept(t *testing.T) {
	// Records written before ownership was enforced may share a file.
	repo := &stubServiceRepo{items: []domain.Service{
		managedService("svc-a", "/uploads/services/shared.png"),
		managedService("svc-b", "/uploads/services/shared.png"),
	}}
	svc, cleaner := newCatalog(repo, &stubImageStore{})

	if err := svc.Delete(context.Background(), "svc-a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cleaner.paths) != 0 {
		t.Fatalf("shared image must be kept, got %v", cleaner.paths)
	}

	if err := svc.Delete(context.Background(), "svc-b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cleaner.paths) != 1 || cleaner.paths[0] != "/uploads/services/shared.png" {
		t.Fatalf("expected release once unreferenced, got %v", cleaner.paths)
	}
}
