package service

import (
	"net/url"
	"strings"

	"github.com/zetas/barbershop/internal/core/domain"
)

type imageKind int

const (
	imageAbsent imageKind = iota
	imageNull
	imageDataURI
	imageURL
	imageLocalPath
	imageRejected
)

// classifyImage decides how an incoming img value is handled. Only data URIs,
// absolute http(s) URLs and same-origin paths are ever stored.
func classifyImage(f domain.ImageField) imageKind {
	if !f.Set {
		return imageAbsent
	}
	if f.Value == nil {
		return imageNull
	}
	v := strings.TrimSpace(*f.Value)
	switch {
	case domain.IsImageDataURI(v):
		return imageDataURI
	case isHTTPURL(v):
		return imageURL
	case isLocalPath(v):
		return imageLocalPath
	default:
		return imageRejected
	}
}

func isHTTPURL(v string) bool {
	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// isLocalPath accepts "/x" but not protocol-relative "//host/x".
func isLocalPath(v string) bool {
	if !strings.HasPrefix(v, "/") || strings.HasPrefix(v, "//") {
		return false
	}
	return !strings.ContainsAny(v, "\\\x00\r\n\t ")
}
