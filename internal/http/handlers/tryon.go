package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"tryon-server/internal/domain"
	"tryon-server/internal/imaging"
	"tryon-server/internal/middleware"
	"tryon-server/internal/providers/tryon"
)

const maxPromptExtraLen = 400

// blockedNameTokens is a cheap filename-level policy guard applied before
// any upstream call.
var blockedNameTokens = []string{"nude", "nsfw"}

type tryOnResponse struct {
	ImageURL    string `json:"imageUrl"`
	Description string `json:"description"`
	RequestID   string `json:"requestId"`
	TTLMinutes  int    `json:"ttlMinutes"`
}

// TryOn handles POST /api/tryon: validate the multipart upload, sanitize the
// selfie, run one provider call, persist the result transiently, and answer
// with its TTL-bounded URL. No retries, no queueing; a provider failure
// fails the whole request.
func (a *App) TryOn(w http.ResponseWriter, r *http.Request) {
	// Multipart framing overhead on top of the photo budget.
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		var maxErr *http.MaxBytesError
		// The multipart reader does not always wrap the limit error, so
		// match on the message as well.
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "File too large")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("person")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "Missing 'person' file")
		return
	}
	defer file.Close()

	if name := strings.ToLower(header.Filename); containsBlockedToken(name) {
		a.error(w, http.StatusUnprocessableEntity, "content_rejected", "Content rejected by policy")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, a.MaxUploadBytes+1))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "could not read upload")
		return
	}
	if int64(len(data)) > a.MaxUploadBytes {
		a.error(w, http.StatusRequestEntityTooLarge, "too_large", "File too large")
		return
	}

	garmentURL := strings.TrimSpace(r.FormValue("garmentUrl"))
	if garmentURL == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "Missing 'garmentUrl'")
		return
	}

	category, ok := domain.ParseCategory(r.FormValue("category"))
	if !ok {
		category = domain.InferCategory(garmentURL)
	}

	promptExtra := strings.TrimSpace(r.FormValue("promptExtra"))
	if utf8.RuneCountInString(promptExtra) > maxPromptExtraLen {
		a.error(w, http.StatusUnprocessableEntity, "invalid_input", "promptExtra exceeds 400 characters")
		return
	}

	photo, err := imaging.Sanitize(data, imaging.Options{MaxSide: a.MaxImageSide})
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupported) {
			a.error(w, http.StatusBadRequest, "unsupported_image", "Unsupported image type")
			return
		}
		a.Logger.Error().Err(err).Msg("sanitize upload")
		a.error(w, http.StatusInternalServerError, "internal", "failed to process image")
		return
	}

	ctx := r.Context()
	requestID := middleware.RequestIDFromContext(ctx)

	// The sanitized selfie goes into the temp store so URL-driven providers
	// can fetch it; the TTL sweep reclaims it either way.
	personName, err := a.Store.Put(ctx, "jpg", photo.Data)
	if err != nil {
		a.Logger.Error().Err(err).Msg("store selfie")
		a.error(w, http.StatusInternalServerError, "storage", "failed to store upload")
		return
	}

	providerCtx := ctx
	if a.ProviderTimeout > 0 {
		var cancel context.CancelFunc
		providerCtx, cancel = context.WithTimeout(ctx, a.ProviderTimeout)
		defer cancel()
	}

	result, err := a.Provider.Apply(providerCtx, tryon.Request{
		PersonURL:   a.publicTmpURL(personName),
		PersonImage: photo.Data,
		PersonMIME:  photo.MIME,
		GarmentURL:  garmentURL,
		Category:    string(category),
		PromptExtra: promptExtra,
		RequestID:   requestID,
	})
	if err != nil {
		a.Logger.Error().Err(err).Str("request_id", requestID).Msg("provider call failed")
		a.error(w, http.StatusBadGateway, "provider", "Upstream failure: "+err.Error())
		return
	}

	resultName, err := a.Store.Put(ctx, extensionForMIME(result.MIME), result.Image)
	if err != nil {
		a.Logger.Error().Err(err).Msg("store result")
		a.error(w, http.StatusInternalServerError, "storage", "failed to store result")
		return
	}

	description := result.Description
	if description == "" {
		description = "Generated try-on"
	}
	if result.RequestID != "" {
		requestID = result.RequestID
	}

	a.json(w, http.StatusOK, tryOnResponse{
		ImageURL:    a.publicTmpURL(resultName),
		Description: description,
		RequestID:   requestID,
		TTLMinutes:  int(a.Store.TTL().Minutes()),
	})
}

func containsBlockedToken(name string) bool {
	for _, token := range blockedNameTokens {
		if strings.Contains(name, token) {
			return true
		}
	}
	return false
}

func extensionForMIME(mime string) string {
	switch {
	case strings.Contains(mime, "png"):
		return "png"
	case strings.Contains(mime, "webp"):
		return "webp"
	default:
		return "jpg"
	}
}
