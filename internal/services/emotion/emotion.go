// Package emotion provides an optional text emotion classifier. The
// synthesis stage falls back to punctuation heuristics when no classifier
// is configured or a classification call fails.
package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Prediction is one ranked emotion label.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier ranks the emotions expressed in a piece of text.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]Prediction, error)
}

// HTTPClient defines the interface for HTTP client operations
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds classifier endpoint settings
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

type httpClassifier struct {
	config     Config
	httpClient HTTPClient
}

// NewHTTPClassifier creates a classifier backed by an inference endpoint
// that accepts {"inputs": text} and returns ranked label/score pairs.
func NewHTTPClassifier(config Config, httpClient HTTPClient) Classifier {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	return &httpClassifier{
		config:     config,
		httpClient: httpClient,
	}
}

func (c *httpClassifier) Classify(ctx context.Context, text string) ([]Prediction, error) {
	requestBody, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("classification failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	// The endpoint may return either [[{...}]] or [{...}]
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var nested [][]Prediction
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 {
		return nested[0], nil
	}

	var flat []Prediction
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("failed to decode predictions: %w", err)
	}
	return flat, nil
}

// Top returns the highest scoring prediction, or ok=false when empty.
func Top(predictions []Prediction) (Prediction, bool) {
	if len(predictions) == 0 {
		return Prediction{}, false
	}
	best := predictions[0]
	for _, p := range predictions[1:] {
		if p.Score > best.Score {
			best = p
		}
	}
	return best, true
}
