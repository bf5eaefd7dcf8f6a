package recommender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client calls the out-of-process scoring service. It is the only network hop
// outside the primary store, so every request carries a bounded timeout.
type Client interface {
	Recommend(ctx context.Context, clickedProduct string) ([]string, error)
}

type recommendRequest struct {
	ClickedProduct string `json:"clicked_product"`
}

type recommendItem struct {
	Item string `json:"Item"`
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) Client {

	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	return &httpClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Recommend implements Client.
func (c *httpClient) Recommend(ctx context.Context, clickedProduct string) ([]string, error) {

	payload, err := json.Marshal(recommendRequest{ClickedProduct: clickedProduct})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recommendation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build recommendation request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recommendation service call failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recommendation service returned status %d", resp.StatusCode)
	}

	var items []recommendItem

	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode recommendation response: %w", err)
	}

	names := make([]string, 0, len(items))

	for _, item := range items {
		if item.Item != "" {
			names = append(names, item.Item)
		}
	}

	return names, nil
}
