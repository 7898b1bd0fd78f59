package tryon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiOptions configures the Gemini provider. HTTPClient and BaseURL are
// injectable for tests and carry through to the genai SDK.
type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiProvider runs the try-on through Gemini's image-editing models. It
// sends the prompt plus both images inline, so unlike FAL it needs the
// garment bytes fetched locally first.
type GeminiProvider struct {
	client     *genai.Client
	httpClient *http.Client
	model      string
}

func NewGeminiProvider(ctx context.Context, opts GeminiOptions) (*GeminiProvider, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini: API key is missing")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: opts.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash-image"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &GeminiProvider{client: client, httpClient: httpClient, model: model}, nil
}

func (p *GeminiProvider) Apply(ctx context.Context, req Request) (Result, error) {
	if p == nil || p.client == nil {
		return Result{}, errors.New("gemini: provider not configured")
	}
	if len(req.PersonImage) == 0 {
		return Result{}, errors.New("gemini: person image bytes required")
	}
	garment, garmentMIME, err := p.fetchGarment(ctx, req.GarmentURL)
	if err != nil {
		return Result{}, err
	}

	personMIME := req.PersonMIME
	if personMIME == "" {
		personMIME = "image/jpeg"
	}
	parts := []*genai.Part{
		genai.NewPartFromText(BuildPrompt(req.Category, req.PromptExtra)),
		genai.NewPartFromBytes(req.PersonImage, personMIME),
		genai.NewPartFromBytes(garment, garmentMIME),
	}
	content := &genai.Content{Parts: parts}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, []*genai.Content{content}, nil)
	if err != nil {
		return Result{}, fmt.Errorf("gemini: generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Result{}, errors.New("gemini: empty response")
	}

	result := Result{RequestID: req.RequestID}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 && result.Image == nil {
			result.Image = part.InlineData.Data
			result.MIME = part.InlineData.MIMEType
		}
		if part.Text != "" && result.Description == "" {
			result.Description = strings.TrimSpace(part.Text)
		}
	}
	if result.Image == nil {
		return Result{}, errors.New("gemini: response contained no image")
	}
	if result.MIME == "" {
		result.MIME = "image/jpeg"
	}
	return result, nil
}

func (p *GeminiProvider) fetchGarment(ctx context.Context, url string) ([]byte, string, error) {
	if strings.TrimSpace(url) == "" {
		return nil, "", errors.New("gemini: garment url required")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("gemini: fetch garment: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("gemini: fetch garment: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return nil, "", fmt.Errorf("gemini: fetch garment: %w", err)
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" || !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}
	return data, mime, nil
}

var _ Provider = (*GeminiProvider)(nil)
