package outbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/botica-pos/botica/internal/syncer"
)

// Client talks to the sync server over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient constructs a Client authenticated with the given bearer token.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: baseURL, token: token, http: httpClient}
}

// Push submits one batch.
func (c *Client) Push(ctx context.Context, req syncer.PushRequest) (syncer.PushResponse, error) {
	var resp syncer.PushResponse
	err := c.post(ctx, "/sync/push", req, &resp)
	return resp, err
}

// Pull fetches changes after the watermark. A nil since requests a full
// snapshot.
func (c *Client) Pull(ctx context.Context, since *time.Time) (syncer.PullResponse, error) {
	path := "/sync/pull"
	if since != nil {
		path += "?lastSyncAt=" + url.QueryEscape(since.Format(time.RFC3339))
	}
	var resp syncer.PullResponse
	err := c.get(ctx, path, &resp)
	return resp, err
}

// Audit submits snapshots for divergence checking.
func (c *Client) Audit(ctx context.Context, req syncer.AuditRequest) (syncer.AuditResponse, error) {
	var resp syncer.AuditResponse
	err := c.post(ctx, "/sync/audit", req, &resp)
	return resp, err
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("outbox: server returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
