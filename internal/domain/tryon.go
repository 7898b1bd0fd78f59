package domain

import (
	"strings"
	"time"
)

// Category classifies the garment being tried on.
type Category string

const (
	CategoryTop       Category = "top"
	CategoryBottom    Category = "bottom"
	CategoryDress     Category = "dress"
	CategoryOuterwear Category = "outerwear"
)

// ParseCategory sanitizes free-form input into a supported category. Unknown
// values report ok=false so callers can fall back to URL inference.
func ParseCategory(raw string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryTop:
		return CategoryTop, true
	case CategoryBottom:
		return CategoryBottom, true
	case CategoryDress:
		return CategoryDress, true
	case CategoryOuterwear:
		return CategoryOuterwear, true
	default:
		return "", false
	}
}

var (
	outerwearKeywords = []string{"jacket", "coat", "parka", "hoodie", "blazer", "cardigan"}
	dressKeywords     = []string{"dress", "gown"}
	bottomKeywords    = []string{"jeans", "pants", "trous", "skirt", "short", "legging"}
)

// InferCategory guesses a category from keywords in the garment reference.
// Anything unrecognized is treated as a top.
func InferCategory(garmentURL string) Category {
	s := strings.ToLower(garmentURL)
	switch {
	case containsAny(s, outerwearKeywords):
		return CategoryOuterwear
	case containsAny(s, dressKeywords):
		return CategoryDress
	case containsAny(s, bottomKeywords):
		return CategoryBottom
	default:
		return CategoryTop
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// TryOnRequest is the normalized payload accepted by the try-on endpoint.
// It lives for a single request and is never persisted.
type TryOnRequest struct {
	Person      []byte
	PersonMIME  string
	GarmentURL  string
	Category    Category
	PromptExtra string
}

// TryOnResult points at a generated artifact. The URL is only valid until
// the artifact's TTL expires; callers must not cache it past that.
type TryOnResult struct {
	ImageURL    string
	Description string
	RequestID   string
	TTL         time.Duration
}
