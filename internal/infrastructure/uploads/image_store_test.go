package uploads

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	public := t.TempDir()
	s, err := New(public, "uploads/services")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s, public
}

func TestSaveDataURI_WritesFileWithExtension(t *testing.T) {
	s, public := newTestStore(t)
	png := base64.StdEncoding.EncodeToString([]byte("\x89PNG fake"))

	p, err := s.SaveDataURI(context.Background(), "data:image/png;base64,"+png)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(p, "/uploads/services/svc-") || !strings.HasSuffix(p, ".png") {
		t.Fatalf("unexpected path: %s", p)
	}
	data, err := os.ReadFile(filepath.Join(public, filepath.FromSlash(strings.TrimPrefix(p, "/"))))
	if err != nil {
		t.Fatalf("file missing: %v", err)
	}
	if string(data) != "\x89PNG fake" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestSaveDataURI_Extensions(t *testing.T) {
	s, _ := newTestStore(t)
	payload := base64.StdEncoding.EncodeToString([]byte("x"))

	cases := map[string]string{
		"svg+xml": ".svg",
		"webp":    ".webp",
		"gif":     ".gif",
		"bmp":     ".bmp",
		"jpeg":    ".jpg",
		"tiff":    ".jpg",
	}
	for subtype, ext := range cases {
		p, err := s.SaveDataURI(context.Background(), "data:image/"+subtype+";base64,"+payload)
		if err != nil {
			t.Fatalf("%s: %v", subtype, err)
		}
		if !strings.HasSuffix(p, ext) {
			t.Errorf("%s: expected %s suffix, got %s", subtype, ext, p)
		}
	}
}

func TestSaveDataURI_FilenamesAreUnique(t *testing.T) {
	s, _ := newTestStore(t)
	uri := "data:image/gif;base64," + base64.StdEncoding.EncodeToString([]byte("g"))

	a, _ := s.SaveDataURI(context.Background(), uri)
	b, _ := s.SaveDataURI(context.Background(), uri)
	if a == b {
		t.Fatalf("expected distinct filenames, got %s twice", a)
	}
}

func TestSaveDataURI_Invalid(t *testing.T) {
	s, _ := newTestStore(t)

	for _, in := range []string{
		"data:image/png;base64,!!!not-base64",
		"data:image/png;base64",
		"data:text/plain;base64,aGk=",
		"data:image/png;base64,",
	} {
		if _, err := s.SaveDataURI(context.Background(), in); !errors.Is(err, ErrInvalidDataURI) {
			t.Errorf("%q: expected ErrInvalidDataURI, got %v", in, err)
		}
	}
}

func TestRemove_DeletesManagedFile(t *testing.T) {
	s, _ := newTestStore(t)
	p, _ := s.SaveDataURI(context.Background(), "data:image/png;base64,"+base64.StdEncoding.EncodeToString([]byte("x")))

	if err := s.Remove(context.Background(), p); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove(context.Background(), p); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist on second remove, got %v", err)
	}
}

func TestRemove_RefusesTraversal(t *testing.T) {
	s, public := newTestStore(t)
	victim := filepath.Join(public, "keep.txt")
	if err := os.WriteFile(victim, []byte("keep"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := s.Remove(context.Background(), "/uploads/services/../../keep.txt")
	if !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("expected ErrOutsideRoot, got %v", err)
	}
	if _, err := os.Stat(victim); err != nil {
		t.Fatalf("victim file was touched: %v", err)
	}
}

func TestRemove_RefusesUnmanaged(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.Remove(context.Background(), "/images/logo.png"); !errors.Is(err, ErrNotManaged) {
		t.Fatalf("expected ErrNotManaged, got %v", err)
	}
}

