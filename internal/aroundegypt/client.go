package aroundegypt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mrlokans/aroundegypt/internal/entities"
)

const (
	DefaultBaseURL = "https://aroundegypt.34ml.com"

	experiencesPath = "/api/v2/experiences"
	defaultTimeout  = 30 * time.Second
	maxErrorBody    = 512
)

// Client talks to the AroundEgypt public API. Failed requests are not
// retried; the caller decides what a failure means.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the API root the client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchRecommended returns the experiences flagged as recommended.
func (c *Client) FetchRecommended(ctx context.Context) ([]entities.Experience, error) {
	q := url.Values{}
	q.Set("filter[recommended]", "true")
	return c.fetchList(ctx, q)
}

// FetchRecent returns the full experience listing.
func (c *Client) FetchRecent(ctx context.Context) ([]entities.Experience, error) {
	return c.fetchList(ctx, nil)
}

// Search returns experiences whose title contains query.
func (c *Client) Search(ctx context.Context, query string) ([]entities.Experience, error) {
	q := url.Values{}
	q.Set("filter[title]", query)
	return c.fetchList(ctx, q)
}

// FetchByID returns a single experience or ErrNotFound.
func (c *Client) FetchByID(ctx context.Context, id string) (*entities.Experience, error) {
	var resp Response[entities.Experience]
	if err := c.do(ctx, http.MethodGet, experiencesPath+"/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data.ID == "" {
		return nil, ErrNotFound
	}
	return &resp.Data, nil
}

// Like registers a like and returns the new like count reported by the server.
func (c *Client) Like(ctx context.Context, id string) (int, error) {
	var resp Response[int]
	if err := c.do(ctx, http.MethodPost, experiencesPath+"/"+url.PathEscape(id)+"/like", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Data, nil
}

func (c *Client) fetchList(ctx context.Context, query url.Values) ([]entities.Experience, error) {
	var resp Response[[]entities.Experience]
	if err := c.do(ctx, http.MethodGet, experiencesPath, query, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return []entities.Experience{}, nil
	}
	return resp.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var meta struct {
		Meta Meta `json:"meta"`
	}
	if err := json.Unmarshal(body, &meta); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if meta.Meta.Code == http.StatusNotFound {
		return ErrNotFound
	}
	if !meta.Meta.ok() {
		return &StatusError{StatusCode: meta.Meta.Code, Body: string(meta.Meta.Errors)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}
