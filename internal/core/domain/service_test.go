package domain

import (
	"encoding/json"
	"testing"
)

func TestIsImageDataURI(t *testing.T) {
	cases := map[string]bool{
		"data:image/png;base64,iVBORw0KGgo=": true,
		"DATA:IMAGE/svg+xml,<svg/>":          true,
		"data:text/plain,hello":              false,
		"https://example.com/a.png":          false,
		"data:image":                         false,
		"":                                   false,
	}
	for in, want := range cases {
		if got := IsImageDataURI(in); got != want {
			t.Errorf("IsImageDataURI(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestImageField_TriState(t *testing.T) {
	var body struct {
		Img ImageField `json:"img"`
	}

	if err := json.Unmarshal([]byte(`{}`), &body); err != nil || body.Img.Set {
		t.Fatalf("absent: %+v %v", body.Img, err)
	}
	if err := json.Unmarshal([]byte(`{"img":null}`), &body); err != nil || !body.Img.Set || body.Img.Value != nil {
		t.Fatalf("null: %+v %v", body.Img, err)
	}
	if err := json.Unmarshal([]byte(`{"img":"/a.png"}`), &body); err != nil || body.Img.Value == nil || *body.Img.Value != "/a.png" {
		t.Fatalf("string: %+v %v", body.Img, err)
	}
}
