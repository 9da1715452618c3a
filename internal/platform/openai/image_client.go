package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/stockpix/stockpix/internal/config"
	"github.com/stockpix/stockpix/internal/generation"
)

// defaultTimeout bounds one image generation round-trip, including the
// optional follow-up download when the API responds with a URL.
const defaultTimeout = 120 * time.Second

// ImageClient implements generation.ImageGenerator against an
// OpenAI-compatible /images/generations endpoint.
type ImageClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiKey     string
	baseURL    string
	model      string
}

// NewImageClient creates an ImageClient from configuration. The
// httpClient parameter may be nil, in which case a client with a
// generation-sized timeout is used.
func NewImageClient(cfg config.ImageGenConfig, httpClient *http.Client, logger *slog.Logger) (*ImageClient, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: image API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("%w: image API base URL cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: image model cannot be empty", generation.ErrInvalidConfig)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &ImageClient{
		httpClient: httpClient,
		logger:     logger,
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.APIBaseURL, "/"),
		model:      cfg.Model,
	}, nil
}

// generationRequest is the request body of /images/generations.
// Optional fields are omitted so the API applies its own defaults.
type generationRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size,omitempty"`
	Quality string `json:"quality,omitempty"`
}

// generationResponse is the response body of /images/generations. The
// API returns either a hosted URL or inline base64 data per image.
type generationResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// GenerateImage implements generation.ImageGenerator.
func (c *ImageClient) GenerateImage(ctx context.Context, req generation.ImageRequest) ([]byte, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("%w: prompt cannot be empty", generation.ErrInvalidResponse)
	}

	body, err := json.Marshal(generationRequest{
		Model:   c.model,
		Prompt:  req.Prompt,
		N:       1,
		Size:    req.Size,
		Quality: req.Quality,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode image request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: image API request failed: %v", generation.ErrTransientFailure, err)
	}
	defer c.closeBody(resp.Body)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read image API response: %v", generation.ErrTransientFailure, err)
	}

	var parsed generationResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed image API response: %v", generation.ErrInvalidResponse, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: image API: %s", generation.ErrTransientFailure, msg)
		}
		return nil, fmt.Errorf("%w: image API: %s", generation.ErrInvalidResponse, msg)
	}

	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("%w: image API returned no data", generation.ErrInvalidResponse)
	}

	item := parsed.Data[0]
	switch {
	case item.B64JSON != "":
		img, err := base64.StdEncoding.DecodeString(item.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to decode inline image: %v", generation.ErrInvalidResponse, err)
		}
		return img, nil
	case item.URL != "":
		return c.download(ctx, item.URL)
	default:
		return nil, fmt.Errorf("%w: image API returned neither url nor b64_json", generation.ErrInvalidResponse)
	}
}

// download fetches a generated image from the hosted URL the API
// returned.
func (c *ImageClient) download(ctx context.Context, url string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image download request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: image download failed: %v", generation.ErrTransientFailure, err)
	}
	defer c.closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: image download status %s", generation.ErrTransientFailure, resp.Status)
	}

	img, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read image download: %v", generation.ErrTransientFailure, err)
	}
	return img, nil
}

func (c *ImageClient) closeBody(body io.Closer) {
	if err := body.Close(); err != nil {
		c.logger.Warn("failed to close response body", "error", err)
	}
}
