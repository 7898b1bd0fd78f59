package tryon

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newGeminiTestServer fakes both the generateContent endpoint and the
// garment host, so the provider never leaves the test process.
func newGeminiTestServer(t *testing.T, generate http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/garment.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("garment-bytes"))
	})
	mux.HandleFunc("/missing-garment.jpg", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Fatalf("unexpected request path: %s", r.URL.Path)
		}
		generate(w, r)
	})
	return httptest.NewServer(mux)
}

func newGeminiTestProvider(t *testing.T, ts *httptest.Server) *GeminiProvider {
	t.Helper()
	provider, err := NewGeminiProvider(context.Background(), GeminiOptions{
		APIKey:     "test-key",
		BaseURL:    ts.URL,
		HTTPClient: ts.Client(),
	})
	if err != nil {
		t.Fatalf("NewGeminiProvider returned error: %v", err)
	}
	return provider
}

func TestGeminiProviderExtractsInlineImage(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("gemini-bytes"))
	ts := newGeminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"candidates": [{
				"content": {
					"role": "model",
					"parts": [
						{"text": "styled for you"},
						{"inlineData": {"mimeType": "image/png", "data": %q}}
					]
				}
			}]
		}`, encoded)
	})
	defer ts.Close()

	provider := newGeminiTestProvider(t, ts)
	got, err := provider.Apply(context.Background(), Request{
		PersonImage: []byte("selfie-bytes"),
		PersonMIME:  "image/jpeg",
		GarmentURL:  ts.URL + "/garment.jpg",
		Category:    "dress",
		RequestID:   "req-gem",
	})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if string(got.Image) != "gemini-bytes" {
		t.Fatalf("image bytes = %q", got.Image)
	}
	if got.MIME != "image/png" {
		t.Fatalf("mime = %q, want image/png", got.MIME)
	}
	if got.Description != "styled for you" {
		t.Fatalf("description = %q", got.Description)
	}
	if got.RequestID != "req-gem" {
		t.Fatalf("request id = %q, want req-gem", got.RequestID)
	}
}

func TestGeminiProviderNoImageInResponse(t *testing.T) {
	ts := newGeminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {
					"role": "model",
					"parts": [{"text": "cannot comply"}]
				}
			}]
		}`))
	})
	defer ts.Close()

	provider := newGeminiTestProvider(t, ts)
	_, err := provider.Apply(context.Background(), Request{
		PersonImage: []byte("selfie-bytes"),
		GarmentURL:  ts.URL + "/garment.jpg",
	})
	if err == nil {
		t.Fatal("expected error when response has no image part")
	}
	if !strings.Contains(err.Error(), "no image") {
		t.Fatalf("error = %v, want mention of missing image", err)
	}
}

func TestGeminiProviderGarmentFetchFailure(t *testing.T) {
	ts := newGeminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("generateContent called despite garment fetch failure")
	})
	defer ts.Close()

	provider := newGeminiTestProvider(t, ts)
	_, err := provider.Apply(context.Background(), Request{
		PersonImage: []byte("selfie-bytes"),
		GarmentURL:  ts.URL + "/missing-garment.jpg",
	})
	if err == nil {
		t.Fatal("expected error when garment fetch fails")
	}
	if !strings.Contains(err.Error(), "fetch garment") {
		t.Fatalf("error = %v, want garment fetch failure", err)
	}
}

func TestGeminiProviderRequiresPersonBytes(t *testing.T) {
	ts := newGeminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("generateContent called without person bytes")
	})
	defer ts.Close()

	provider := newGeminiTestProvider(t, ts)
	if _, err := provider.Apply(context.Background(), Request{GarmentURL: ts.URL + "/garment.jpg"}); err == nil {
		t.Fatal("expected error when person image bytes missing")
	}
}

func TestNewGeminiProviderRequiresKey(t *testing.T) {
	if _, err := NewGeminiProvider(context.Background(), GeminiOptions{}); err == nil {
		t.Fatal("expected error when api key missing")
	}
}
