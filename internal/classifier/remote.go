package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/huangsam/lakerisk/internal/contract"
	"github.com/huangsam/lakerisk/schema"
)

// RemoteClient talks to an external model server over HTTP.
type RemoteClient struct {
	baseURL string
	client  *http.Client
	model   modelResponse
}

var _ contract.Classifier = &RemoteClient{}

type predictRequest struct {
	Rows []schema.ClassifierRow `json:"rows"`
}

type predictResponse struct {
	Probabilities []float64 `json:"probabilities"`
}

type modelResponse struct {
	Name               string             `json:"name"`
	Version            string             `json:"version"`
	InputColumns       []string           `json:"input_columns"`
	FeatureImportances map[string]float64 `json:"feature_importances"`
}

// NewRemoteClient fetches the model description once and returns a ready client.
func NewRemoteClient(ctx context.Context, baseURL string, timeout time.Duration) (*RemoteClient, error) {
	c := &RemoteClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
	if err := c.getJSON(ctx, "/model", &c.model); err != nil {
		return nil, fmt.Errorf("failed to describe remote model: %w", err)
	}
	if c.model.Name == "" {
		return nil, errors.New("remote model did not report a name")
	}
	if len(c.model.InputColumns) == 0 {
		return nil, errors.New("remote model did not report input columns")
	}
	return c, nil
}

// Predict sends every row in one request and validates the returned probabilities.
func (c *RemoteClient) Predict(ctx context.Context, rows []schema.ClassifierRow) ([]float64, error) {
	body, err := json.Marshal(predictRequest{Rows: rows})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp predictResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Probabilities) != len(rows) {
		return nil, fmt.Errorf("model server returned %d probabilities for %d rows", len(resp.Probabilities), len(rows))
	}
	for i, p := range resp.Probabilities {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, fmt.Errorf("model server returned probability %v for row %d", p, i)
		}
	}
	return resp.Probabilities, nil
}

// FeatureImportances returns a copy of the importances reported by the server.
func (c *RemoteClient) FeatureImportances() map[string]float64 {
	out := make(map[string]float64, len(c.model.FeatureImportances))
	for k, v := range c.model.FeatureImportances {
		out[k] = v
	}
	return out
}

// InputColumns returns the columns reported by the server.
func (c *RemoteClient) InputColumns() []string {
	out := make([]string, len(c.model.InputColumns))
	copy(out, c.model.InputColumns)
	return out
}

// Describe identifies the remote model. The checksum is derived from the name and version.
func (c *RemoteClient) Describe() schema.ModelInfo {
	return schema.ModelInfo{
		Name:         c.model.Name,
		Version:      c.model.Version,
		Source:       remoteSource + ":" + c.baseURL,
		Checksum:     c.model.Name + "@" + c.model.Version,
		FeatureCount: len(c.model.FeatureImportances),
	}
}

func (c *RemoteClient) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, dst)
}

func (c *RemoteClient) do(req *http.Request, dst any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("model server request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("model server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode model server response: %w", err)
	}
	return nil
}
