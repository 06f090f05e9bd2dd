package upscale

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/printatelier/storefront/config"
	"github.com/printatelier/storefront/internal/errors"
	"github.com/printatelier/storefront/internal/metrics"
)

// Status is the inference provider's job status
type Status string

const (
	StatusStarting   Status = "starting"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

// Terminal reports whether the job has finished, for better or worse
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCanceled
}

// Prediction is one asynchronous inference job
type Prediction struct {
	ID     string          `json:"id"`
	Status Status          `json:"status"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// OutputURL extracts the result image URL. The provider returns either a
// bare string or an array of strings depending on the model; for arrays the
// last entry is the final rendition.
func (p Prediction) OutputURL() (string, error) {
	if len(p.Output) == 0 {
		return "", fmt.Errorf("prediction %s has no output", p.ID)
	}

	var single string
	if err := json.Unmarshal(p.Output, &single); err == nil && single != "" {
		return single, nil
	}

	var many []string
	if err := json.Unmarshal(p.Output, &many); err == nil && len(many) > 0 {
		return many[len(many)-1], nil
	}

	return "", fmt.Errorf("prediction %s output has unexpected shape", p.ID)
}

type createPredictionRequest struct {
	Version string          `json:"version"`
	Input   predictionInput `json:"input"`
}

type predictionInput struct {
	Image string `json:"image"`
}

// Client talks to the inference provider's prediction API
type Client struct {
	token   string
	baseURL string
	client  *http.Client
}

// NewClient creates an inference client
func NewClient(cfg config.UpscaleConfig) *Client {
	return &Client{
		token:   cfg.APIToken,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// CreatePrediction submits a new upscale job for the given source image
func (c *Client) CreatePrediction(ctx context.Context, version, imageURL string) (*Prediction, error) {
	body, err := json.Marshal(createPredictionRequest{
		Version: version,
		Input:   predictionInput{Image: imageURL},
	})
	if err != nil {
		return nil, fmt.Errorf("encode prediction: %w", err)
	}

	return c.do(ctx, http.MethodPost, "/v1/predictions", bytes.NewReader(body), "submit")
}

// GetPrediction fetches the current state of a job
func (c *Client) GetPrediction(ctx context.Context, id string) (*Prediction, error) {
	return c.do(ctx, http.MethodGet, "/v1/predictions/"+id, nil, "poll")
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, operation string) (*Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordProviderRequest("replicate", operation, "error")
		return nil, errors.ProviderError{Provider: "replicate", Operation: operation, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		metrics.RecordProviderRequest("replicate", operation, "error")
		return nil, errors.ProviderError{Provider: "replicate", Operation: operation, StatusCode: resp.StatusCode}
	}

	var pred Prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		metrics.RecordProviderRequest("replicate", operation, "error")
		return nil, fmt.Errorf("decode %s response: %w", operation, err)
	}

	metrics.RecordProviderRequest("replicate", operation, "success")
	return &pred, nil
}

// FetchImage downloads the finished rendition
func (c *Client) FetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.ProviderError{Provider: "replicate", Operation: "fetch image", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.ProviderError{Provider: "replicate", Operation: "fetch image", StatusCode: resp.StatusCode}
	}

	return io.ReadAll(resp.Body)
}
