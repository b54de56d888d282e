// Package suggest queries the public Google autocomplete endpoint.
package suggest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://suggestqueries.google.com/complete/search"

// Client returns autocomplete suggestions for a query.
type Client interface {
	Suggest(ctx context.Context, query, language string) ([]string, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default endpoint. An empty url is ignored.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an autocomplete client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Suggest returns the suggestion list for query. The endpoint answers with
// ["<query>", ["s1", "s2", ...], ...].
func (c *httpClient) Suggest(ctx context.Context, query, language string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, eris.New("suggest: empty query")
	}

	q := url.Values{}
	q.Set("client", "firefox")
	q.Set("q", query)
	if language != "" {
		q.Set("hl", language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "suggest: create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; EvidenceBot/1.0)")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "suggest: execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256<<10))
	if err != nil {
		return nil, eris.Wrap(err, "suggest: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("suggest: status %d", resp.StatusCode)
	}

	return parse(body)
}

func parse(body []byte) ([]string, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(body, &parts); err != nil {
		return nil, eris.Wrap(err, "suggest: decode response")
	}
	if len(parts) < 2 {
		return nil, eris.New("suggest: malformed response")
	}

	var raw []string
	if err := json.Unmarshal(parts[1], &raw); err != nil {
		return nil, eris.Wrap(err, "suggest: decode suggestions")
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
