// Package uploads stores service images decoded from data URIs under the
// public directory and removes them again when they are replaced.
package uploads

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/zetas/barbershop/internal/core/domain"
)

var (
	ErrInvalidDataURI = errors.New("invalid data uri")
	ErrOutsideRoot    = errors.New("path outside uploads root")
	ErrNotManaged     = errors.New("path is not a managed upload")
)

// Store writes to <publicDir>/<subdir> and hands out "/<subdir>/<file>"
// public paths.
type Store struct {
	publicDir string
	root      string
	urlPrefix string
}

func New(publicDir, subdir string) (*Store, error) {
	subdir = strings.Trim(filepath.ToSlash(subdir), "/")
	root, err := filepath.Abs(filepath.Join(publicDir, filepath.FromSlash(subdir)))
	if err != nil {
		return nil, fmt.Errorf("uploads: resolve root: %w", err)
	}
	pub, err := filepath.Abs(publicDir)
	if err != nil {
		return nil, fmt.Errorf("uploads: resolve public dir: %w", err)
	}
	return &Store{publicDir: pub, root: root, urlPrefix: "/" + subdir + "/"}, nil
}

// Root is the absolute uploads directory.
func (s *Store) Root() string { return s.root }

// URLPrefix is the public path Root is served under, without a trailing slash.
func (s *Store) URLPrefix() string { return strings.TrimSuffix(s.urlPrefix, "/") }

func (s *Store) SaveDataURI(_ context.Context, dataURI string) (string, error) {
	subtype, payload, err := decodeDataURI(dataURI)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("uploads: mkdir: %w", err)
	}

	name := domain.ServiceIDPrefix + uuid.NewString() + "." + extensionFor(subtype)
	if err := os.WriteFile(filepath.Join(s.root, name), payload, 0o644); err != nil {
		return "", fmt.Errorf("uploads: write %s: %w", name, err)
	}
	return s.urlPrefix + name, nil
}

func (s *Store) IsManaged(publicPath string) bool {
	return strings.HasPrefix(publicPath, s.urlPrefix) && len(publicPath) > len(s.urlPrefix)
}

// Remove deletes a managed file. The resolved path must stay inside Root.
func (s *Store) Remove(_ context.Context, publicPath string) error {
	if !s.IsManaged(publicPath) {
		return ErrNotManaged
	}
	target, err := s.resolve(publicPath)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil {
		return fmt.Errorf("uploads: remove: %w", err)
	}
	return nil
}

func (s *Store) resolve(publicPath string) (string, error) {
	rel := strings.TrimPrefix(path.Clean("/"+publicPath), "/")
	target, err := filepath.Abs(filepath.Join(s.publicDir, filepath.FromSlash(rel)))
	if err != nil {
		return "", fmt.Errorf("uploads: resolve: %w", err)
	}
	inside, err := filepath.Rel(s.root, target)
	if err != nil || inside == "." || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return target, nil
}

// decodeDataURI parses data:image/<subtype>[;params][;base64],<payload>.
func decodeDataURI(v string) (string, []byte, error) {
	if !domain.IsImageDataURI(v) {
		return "", nil, ErrInvalidDataURI
	}
	comma := strings.IndexByte(v, ',')
	if comma < 0 {
		return "", nil, ErrInvalidDataURI
	}
	meta, raw := v[len("data:"):comma], v[comma+1:]

	params := strings.Split(meta, ";")
	mediaType := strings.ToLower(strings.TrimSpace(params[0]))
	subtype := strings.TrimPrefix(mediaType, "image/")
	if subtype == "" {
		return "", nil, ErrInvalidDataURI
	}

	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	var payload []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
		}
		payload = decoded
	} else {
		unescaped, err := url.PathUnescape(raw)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
		}
		payload = []byte(unescaped)
	}
	if len(payload) == 0 {
		return "", nil, ErrInvalidDataURI
	}
	return subtype, payload, nil
}

func extensionFor(subtype string) string {
	switch subtype {
	case "svg+xml", "svg":
		return "svg"
	case "png":
		return "png"
	case "webp":
		return "webp"
	case "gif":
		return "gif"
	case "bmp":
		return "bmp"
	default:
		return "jpg"
	}
}
