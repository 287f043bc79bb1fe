package types

import (
	"net/url"
	"strings"
)

// Tag is a labeled, categorized text entry with an optional image.
// The same struct is stored in the tags collection and, as a snapshot,
// in the selected_tags collection.
type Tag struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Translation  string `json:"translation"`
	MainCategory string `json:"mainCategory"`
	SubCategory  string `json:"subCategory"`
	ImageURL     string `json:"imageUrl,omitempty"`
}

// IsManual reports whether the tag was entered as free text rather than
// picked from the catalog. Manual tags carry no category.
func (t Tag) IsManual() bool {
	return t.MainCategory == "" && t.SubCategory == ""
}

// TagFormData is the payload of a tag creation or edit form.
type TagFormData struct {
	Name         string `json:"name"`
	Translation  string `json:"translation"`
	MainCategory string `json:"mainCategory"`
	SubCategory  string `json:"subCategory"`
	ImageURL     string `json:"imageUrl,omitempty"`
}

// Normalize trims surrounding whitespace from every field.
func (f TagFormData) Normalize() TagFormData {
	return TagFormData{
		Name:         strings.TrimSpace(f.Name),
		Translation:  strings.TrimSpace(f.Translation),
		MainCategory: strings.TrimSpace(f.MainCategory),
		SubCategory:  strings.TrimSpace(f.SubCategory),
		ImageURL:     strings.TrimSpace(f.ImageURL),
	}
}

// Validate checks that all required fields are present after trimming and
// that ImageURL, when set, is an http(s) URL or an inline image data URL.
// Returns ErrInvalidName for a missing field and ErrInvalidImageURL for a
// malformed image reference.
func (f TagFormData) Validate() error {
	n := f.Normalize()
	if n.Name == "" || n.Translation == "" || n.MainCategory == "" || n.SubCategory == "" {
		return ErrInvalidName
	}
	if n.ImageURL == "" {
		return nil
	}
	if strings.HasPrefix(n.ImageURL, "data:image/") {
		return nil
	}
	u, err := url.Parse(n.ImageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidImageURL
	}
	return nil
}

// Apply returns a copy of t with every form field replaced. The ID is kept.
func (f TagFormData) Apply(t Tag) Tag {
	n := f.Normalize()
	t.Name = n.Name
	t.Translation = n.Translation
	t.MainCategory = n.MainCategory
	t.SubCategory = n.SubCategory
	t.ImageURL = n.ImageURL
	return t
}

// FormData extracts the editable fields of t.
func (t Tag) FormData() TagFormData {
	return TagFormData{
		Name:         t.Name,
		Translation:  t.Translation,
		MainCategory: t.MainCategory,
		SubCategory:  t.SubCategory,
		ImageURL:     t.ImageURL,
	}
}
