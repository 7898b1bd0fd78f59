package tryon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// FalOptions configures the FAL nano-banana client. HTTPClient is injectable
// for tests; Timeout only applies to the default client.
type FalOptions struct {
	BaseURL      string
	APIKey       string
	HTTPClient   *http.Client
	Timeout      time.Duration
	PollInterval time.Duration
}

// FalClient drives FAL's run API for the "fal-ai/nano-banana/edit" model.
// Some responses carry the images inline, others defer to a status URL that
// has to be polled until the generation finishes.
type FalClient struct {
	httpClient   *http.Client
	baseURL      string
	token        string
	pollInterval time.Duration
}

const falRunPath = "/v1/run/fal-ai/nano-banana/edit"

func NewFalClient(opts FalOptions) *FalClient {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.fal.ai"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = time.Second
	}
	return &FalClient{
		httpClient:   client,
		baseURL:      base,
		token:        strings.TrimSpace(opts.APIKey),
		pollInterval: poll,
	}
}

type falRunRequest struct {
	Input struct {
		Prompt       string   `json:"prompt"`
		ImageURLs    []string `json:"image_urls"`
		OutputFormat string   `json:"output_format"`
		NumImages    int      `json:"num_images"`
	} `json:"input"`
}

type falImage struct {
	URL string `json:"url"`
}

type falResponse struct {
	Images      []falImage `json:"images"`
	Description string     `json:"description"`
	RequestID   string     `json:"request_id"`
	StatusURL   string     `json:"status_url"`
	Data        struct {
		Images      []falImage `json:"images"`
		Description string     `json:"description"`
	} `json:"data"`
	Request struct {
		ID        string `json:"id"`
		StatusURL string `json:"status_url"`
	} `json:"request"`
	Detail string `json:"detail"`
}

func (r *falResponse) images() []falImage {
	if len(r.Images) > 0 {
		return r.Images
	}
	return r.Data.Images
}

func (r *falResponse) description() string {
	if r.Description != "" {
		return r.Description
	}
	return r.Data.Description
}

func (r *falResponse) requestID() string {
	if r.RequestID != "" {
		return r.RequestID
	}
	return r.Request.ID
}

func (r *falResponse) statusURL() string {
	if r.StatusURL != "" {
		return r.StatusURL
	}
	return r.Request.StatusURL
}

// Apply runs one generation and downloads the produced image, so the caller
// owns the bytes rather than a remote URL with an unknown lifetime.
func (c *FalClient) Apply(ctx context.Context, req Request) (Result, error) {
	if c == nil {
		return Result{}, errors.New("fal: client not configured")
	}
	if c.token == "" {
		return Result{}, errors.New("fal: API key is missing")
	}
	if strings.TrimSpace(req.PersonURL) == "" {
		return Result{}, errors.New("fal: person url required")
	}
	if strings.TrimSpace(req.GarmentURL) == "" {
		return Result{}, errors.New("fal: garment url required")
	}

	var payload falRunRequest
	payload.Input.Prompt = BuildPrompt(req.Category, req.PromptExtra)
	payload.Input.ImageURLs = []string{req.PersonURL, req.GarmentURL}
	payload.Input.OutputFormat = "jpeg"
	payload.Input.NumImages = 1

	run, err := c.postRun(ctx, payload)
	if err != nil {
		return Result{}, err
	}

	requestID := run.requestID()
	if requestID == "" {
		requestID = req.RequestID
	}

	if imgs := run.images(); len(imgs) > 0 {
		return c.finish(ctx, imgs[0], run.description(), requestID)
	}

	statusURL := run.statusURL()
	if statusURL == "" {
		return Result{}, errors.New("fal: response had neither images nor a status url")
	}
	return c.poll(ctx, statusURL, run.description(), requestID)
}

func (c *FalClient) postRun(ctx context.Context, payload falRunRequest) (*falResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+falRunPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fal: run request: %w", err)
	}
	defer resp.Body.Close()
	return decodeFalResponse(resp)
}

// poll checks the status URL until images appear or ctx expires.
func (c *FalClient) poll(ctx context.Context, statusURL, description, requestID string) (Result, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return Result{}, fmt.Errorf("fal: polling cancelled: %w", ctx.Err())
		case <-ticker.C:
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
		if err != nil {
			return Result{}, err
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return Result{}, fmt.Errorf("fal: status request: %w", err)
		}
		status, err := decodeFalResponse(resp)
		resp.Body.Close()
		if err != nil {
			return Result{}, err
		}
		if d := status.description(); d != "" {
			description = d
		}
		if imgs := status.images(); len(imgs) > 0 {
			return c.finish(ctx, imgs[0], description, requestID)
		}
	}
}

func (c *FalClient) finish(ctx context.Context, img falImage, description, requestID string) (Result, error) {
	if img.URL == "" {
		return Result{}, errors.New("fal: response had no image url")
	}
	data, mime, err := c.download(ctx, img.URL)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Image:       data,
		MIME:        mime,
		Description: description,
		RequestID:   requestID,
	}, nil
}

func (c *FalClient) download(ctx context.Context, url string) ([]byte, string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("fal: download result: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fal: download result: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("fal: download result: %w", err)
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/jpeg"
	}
	return data, mime, nil
}

func decodeFalResponse(resp *http.Response) (*falResponse, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("fal: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		msg := strings.TrimSpace(string(body))
		var parsed falResponse
		if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
			msg = parsed.Detail
		}
		return nil, fmt.Errorf("fal: status %d: %s", resp.StatusCode, msg)
	}
	var parsed falResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("fal: decode response: %w", err)
	}
	return &parsed, nil
}

var _ Provider = (*FalClient)(nil)
