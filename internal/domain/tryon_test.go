package domain

import "testing"

func TestInferCategory(t *testing.T) {
	tests := []struct {
		name       string
		garmentURL string
		want       Category
	}{
		{
			name:       "jacket keyword",
			garmentURL: "https://cdn.example.com/products/leather-jacket.jpg",
			want:       CategoryOuterwear,
		},
		{
			name:       "winter parka",
			garmentURL: "winter-parka.png",
			want:       CategoryOuterwear,
		},
		{
			name:       "dress keyword",
			garmentURL: "https://shop.example.com/summer-dress-floral.webp",
			want:       CategoryDress,
		},
		{
			name:       "jeans keyword",
			garmentURL: "slim-fit-jeans.jpg",
			want:       CategoryBottom,
		},
		{
			name:       "skirt keyword",
			garmentURL: "https://cdn.example.com/pleated-skirt.png",
			want:       CategoryBottom,
		},
		{
			name:       "shirt defaults to top",
			garmentURL: "shirt-blue.jpg",
			want:       CategoryTop,
		},
		{
			name:       "unrecognized defaults to top",
			garmentURL: "https://cdn.example.com/sku/99812.jpg",
			want:       CategoryTop,
		},
		{
			name:       "uppercase url",
			garmentURL: "WINTER-PARKA.PNG",
			want:       CategoryOuterwear,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferCategory(tt.garmentURL); got != tt.want {
				t.Fatalf("InferCategory(%q) = %q, want %q", tt.garmentURL, got, tt.want)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		raw    string
		want   Category
		wantOK bool
	}{
		{raw: "top", want: CategoryTop, wantOK: true},
		{raw: " Outerwear ", want: CategoryOuterwear, wantOK: true},
		{raw: "DRESS", want: CategoryDress, wantOK: true},
		{raw: "bottom", want: CategoryBottom, wantOK: true},
		{raw: "shoes", wantOK: false},
		{raw: "", wantOK: false},
	}
	for _, tt := range tests {
		got, ok := ParseCategory(tt.raw)
		if ok != tt.wantOK {
			t.Fatalf("ParseCategory(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
		}
		if ok && got != tt.want {
			t.Fatalf("ParseCategory(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
