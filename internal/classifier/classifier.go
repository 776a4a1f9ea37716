package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LabelToxic is the label a toxicity model assigns to toxic text
const LabelToxic = "TOXIC"

// Label is the top prediction of a text classifier
type Label struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// IsToxic reports whether the prediction is the toxic class
func (l Label) IsToxic() bool {
	return strings.EqualFold(l.Label, LabelToxic)
}

// Toxicity converts the prediction into a toxicity probability
func (l Label) Toxicity() float64 {
	if l.IsToxic() {
		return l.Score
	}
	return 1 - l.Score
}

// Classifier predicts a label for a piece of text
type Classifier interface {
	Classify(ctx context.Context, text string) (Label, error)
}

// maxInputChars bounds the text sent to the inference endpoint, matching the
// 512 token input window of BERT-sized toxicity models
const maxInputChars = 512

// HTTPClassifier calls a hosted inference endpoint that accepts
// {"inputs": text} and returns [[{label, score}, ...]]
type HTTPClassifier struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClassifier creates a new inference endpoint client
func NewHTTPClassifier(endpoint, apiKey string, timeout time.Duration) (*HTTPClassifier, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("classifier endpoint is required")
	}
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &HTTPClassifier{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Classify returns the highest scoring label for text
func (c *HTTPClassifier) Classify(ctx context.Context, text string) (Label, error) {
	if runes := []rune(text); len(runes) > maxInputChars {
		text = string(runes[:maxInputChars])
	}

	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return Label{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Label{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Label{}, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Label{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Label{}, fmt.Errorf("classifier error (%d): %s", resp.StatusCode, string(respBody))
	}

	return parsePredictions(respBody)
}

// parsePredictions accepts both the nested [[...]] and flat [...] shapes
func parsePredictions(body []byte) (Label, error) {
	var nested [][]Label
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 {
		return top(nested[0])
	}

	var flat []Label
	if err := json.Unmarshal(body, &flat); err != nil {
		return Label{}, fmt.Errorf("unmarshal predictions: %w", err)
	}
	return top(flat)
}

func top(labels []Label) (Label, error) {
	if len(labels) == 0 {
		return Label{}, fmt.Errorf("no predictions returned")
	}
	best := labels[0]
	for _, l := range labels[1:] {
		if l.Score > best.Score {
			best = l
		}
	}
	return best, nil
}

// Static always returns the same prediction
type Static struct {
	Result Label
	Err    error
}

// Classify returns the configured prediction
func (s Static) Classify(ctx context.Context, text string) (Label, error) {
	return s.Result, s.Err
}
