// Package mapdata fetches the mural feature collection over HTTP.
package mapdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samirrijal/muralmap/internal/core/domain"
)

// maxDocumentBytes caps a fetched feature collection.
const maxDocumentBytes = 32 << 20

// Client implements ports.FeatureSource against a running API.
type Client struct {
	http *http.Client
	url  string
}

// NewClient creates a client fetching baseURL+endpoint.
func NewClient(baseURL, endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		url:  strings.TrimRight(baseURL, "/") + endpoint,
	}
}

// FetchFeatures issues one GET and returns the body. Transport errors and
// non-2xx statuses wrap domain.ErrFetchFailed.
func (c *Client) FetchFeatures(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d for %s", domain.ErrFetchFailed, resp.StatusCode, c.url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrFetchFailed, err)
	}
	return body, nil
}
