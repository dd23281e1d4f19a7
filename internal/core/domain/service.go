package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ServiceIDPrefix prefixes every generated service id.
const ServiceIDPrefix = "svc-"

// Service is an entry in the barbershop price list.
type Service struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Price           *float64 `json:"price,omitempty"`
	Description     string   `json:"description,omitempty"`
	DurationMinutes *int     `json:"duration_minutes,omitempty"`
	Img             *string  `json:"img"`
	CreatedAt       string   `json:"created_at"`
}

// ImageField is a tri-state JSON value: absent, explicit null, or a string.
// The zero value is absent.
type ImageField struct {
	Set   bool
	Value *string
}

// UnmarshalJSON is only invoked when the key is present, which is what
// distinguishes "absent" from "null".
func (f *ImageField) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	f.Value = &s
	return nil
}

// MarshalJSON renders absent and null identically.
func (f ImageField) MarshalJSON() ([]byte, error) {
	if f.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.Value)
}

// NewImage returns a present, non-null ImageField.
func NewImage(v string) ImageField {
	return ImageField{Set: true, Value: &v}
}

// NullImage returns an explicit null ImageField.
func NullImage() ImageField {
	return ImageField{Set: true}
}

// IsImageDataURI reports whether v is an inline image such as
// "data:image/png;base64,...". The scheme is matched case-insensitively.
func IsImageDataURI(v string) bool {
	return len(v) >= len("data:image/") && strings.EqualFold(v[:len("data:image/")], "data:image/")
}
