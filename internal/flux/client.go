package flux

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/tobyward/chronoflux/internal/config"
	"github.com/tobyward/chronoflux/internal/log"
	"github.com/tobyward/chronoflux/internal/request"
)

const (
	DefaultBaseURL         = "https://api.us1.bfl.ai/v1"
	DefaultPollInterval    = 500 * time.Millisecond
	DefaultMaxPollAttempts = 60

	statusReady  = "Ready"
	statusFailed = "Failed"
)

// Client talks to the Black Forest Labs Flux API: one submission, a bounded
// fixed-interval poll loop, then a plain fetch of the produced image. Zero
// fields fall back to the defaults above.
type Client struct {
	HTTPClient      *http.Client
	BaseURL         string
	PollInterval    time.Duration
	MaxPollAttempts int
}

func NewClient(i *do.Injector) (Generator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &Client{
		HTTPClient:      do.MustInvoke[*http.Client](i),
		BaseURL:         cfg.FluxBaseURL,
		PollInterval:    cfg.PollInterval,
		MaxPollAttempts: cfg.MaxPollAttempts,
	}, nil
}

type submitRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	GuidanceScale  float64 `json:"guidance_scale"`
	Seed           uint32  `json:"seed"`
	Sampler        string  `json:"sampler"`
	Steps          int     `json:"steps"`
}

type submitResponse struct {
	ID string `json:"id"`
}

type statusResponse struct {
	Status string        `json:"status"`
	Error  string        `json:"error"`
	Result *statusResult `json:"result"`
}

type statusResult struct {
	Sample  string   `json:"sample"`
	Samples []string `json:"samples"`
}

func (c *Client) Generate(ctx context.Context, key string, params request.Params) (*Result, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("flux")
	log.Info("submitting generation request", "prompt", params.Prompt, "sampler", params.Sampler,
		"steps", params.Steps, "size", fmt.Sprintf("%dx%d", params.Width, params.Height))

	id, err := c.submit(ctx, key, params)
	if err != nil {
		return nil, err
	}
	log.Info("waiting for image generation", "id", id)

	for attempt := 1; attempt <= c.maxPollAttempts(); attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.pollInterval()):
			}
		}

		raw, status, err := c.pollOnce(ctx, key, id)
		if err != nil {
			return nil, err
		}

		switch status.Status {
		case statusReady:
			result, err := c.fetchResult(ctx, status.Result)
			if err != nil {
				return nil, &ProcessingError{Err: err, Payload: raw}
			}
			result.Attempts = attempt
			log.Info("image ready", "id", id, "attempts", attempt, "format", result.Format)
			return result, nil
		case statusFailed:
			reason := lo.Ternary(status.Error != "", status.Error, "Unknown error")
			return nil, &GenerationError{Reason: reason}
		default:
			log.Info("generation pending", "id", id, "status", status.Status, "attempt", attempt)
		}
	}

	return nil, ErrTimeout
}

func (c *Client) submit(ctx context.Context, key string, params request.Params) (string, error) {
	body, err := json.Marshal(submitRequest{
		Prompt:         params.Prompt,
		NegativePrompt: params.NegativePrompt,
		Width:          params.Width,
		Height:         params.Height,
		GuidanceScale:  params.GuidanceScale,
		Seed:           params.Seed,
		Sampler:        string(params.Sampler),
		Steps:          params.Steps,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+"/flux-pro-1.1", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	c.setHeaders(req, key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("submitting generation request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading submission response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", newAPIError(resp.StatusCode, data)
	}

	var submitted submitResponse
	if err := json.Unmarshal(data, &submitted); err != nil {
		return "", fmt.Errorf("decoding submission response: %w", err)
	}
	if submitted.ID == "" {
		return "", ErrNoRequestID
	}
	return submitted.ID, nil
}

func (c *Client) pollOnce(ctx context.Context, key, id string) ([]byte, *statusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL()+"/get_result?id="+url.QueryEscape(id), nil)
	if err != nil {
		return nil, nil, err
	}
	c.setHeaders(req, key)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("polling generation status: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading status response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, nil, newAPIError(resp.StatusCode, data)
	}

	var status statusResponse
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, nil, fmt.Errorf("decoding status response: %w", err)
	}
	return data, &status, nil
}

func (c *Client) fetchResult(ctx context.Context, result *statusResult) (*Result, error) {
	sample, err := sampleURL(result)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sample, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching image: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return &Result{Image: img, Data: data, Format: format}, nil
}

// sampleURL picks the singular sample field first and falls back to the
// first entry of the samples list. An empty list is a processing error, not
// undefined behavior.
func sampleURL(result *statusResult) (string, error) {
	if result == nil {
		return "", fmt.Errorf("status payload has no result")
	}
	if result.Sample != "" {
		return result.Sample, nil
	}
	if len(result.Samples) > 0 {
		return result.Samples[0], nil
	}
	return "", fmt.Errorf("result payload has neither sample nor samples")
}

func newAPIError(statusCode int, body []byte) *APIError {
	detail := strings.TrimSpace(string(body))
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err == nil {
		if compact, err := json.Marshal(parsed); err == nil {
			detail = string(compact)
		}
	}
	return &APIError{StatusCode: statusCode, Detail: detail}
}

func (c *Client) setHeaders(req *http.Request, key string) {
	req.Header.Set("x-key", key)
	req.Header.Set("Accept", "application/json")
}

func (c *Client) httpClient() *http.Client {
	return lo.Ternary(c.HTTPClient != nil, c.HTTPClient, http.DefaultClient)
}

func (c *Client) baseURL() string {
	return lo.Ternary(c.BaseURL != "", c.BaseURL, DefaultBaseURL)
}

func (c *Client) pollInterval() time.Duration {
	return lo.Ternary(c.PollInterval > 0, c.PollInterval, DefaultPollInterval)
}

func (c *Client) maxPollAttempts() int {
	return lo.Ternary(c.MaxPollAttempts > 0, c.MaxPollAttempts, DefaultMaxPollAttempts)
}
