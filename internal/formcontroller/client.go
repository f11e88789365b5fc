package formcontroller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Endpoint is the path the form posts to.
const Endpoint = "/soteriology_query"

type promptRequest struct {
	Prompt string `json:"prompt"`
}

// HTTPClient posts prompts to a query endpoint under a base URL.
type HTTPClient struct {
	baseURL  string
	endpoint string
	client   *http.Client
}

type ClientOption func(*HTTPClient)

func WithEndpoint(path string) ClientOption {
	return func(c *HTTPClient) { c.endpoint = path }
}

// WithHTTPClient replaces the default client, which has no timeout.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) { c.client = hc }
}

func NewHTTPClient(baseURL string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		endpoint: Endpoint,
		client:   &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) URL() string {
	return c.baseURL + c.endpoint
}

// Query sends {"prompt": prompt} and decodes the JSON answer. Any body that
// decodes is returned as-is, whatever the status, so a backend error message
// reaches the user; otherwise the failure is a *TransportError.
func (c *HTTPClient) Query(ctx context.Context, prompt string) (*QueryResult, error) {
	body, err := json.Marshal(promptRequest{Prompt: prompt})
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(), bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	var res *QueryResult
	err = json.Unmarshal(data, &res)
	if err == nil && res == nil {
		err = errors.New("response is not a JSON object")
	}
	if err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &TransportError{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
		}
		return nil, &TransportError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if res.Error == "" && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return nil, &TransportError{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	return res, nil
}
