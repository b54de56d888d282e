package scrape

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/evidence-cli/internal/model"
)

const (
	maxBodyBytes = 1 << 20
	maxTopics    = 10
)

// ErrRedirected is returned for any 3xx answer. Redirects are never followed.
var ErrRedirected = eris.New("scrape: redirect not followed")

// HTTPScraper fetches pages over plain HTTP and profiles them with goquery.
type HTTPScraper struct {
	client    *http.Client
	userAgent string
}

// Option configures an HTTPScraper.
type Option func(*HTTPScraper)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *HTTPScraper) {
		if d > 0 {
			s.client.Timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *HTTPScraper) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// NewHTTPScraper creates a scraper that never follows redirects.
func NewHTTPScraper(opts ...Option) *HTTPScraper {
	s := &HTTPScraper{
		client: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 3 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 3 * time.Second,
			},
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent: "Mozilla/5.0 (compatible; EvidenceBot/1.0)",
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Scrape fetches targetURL and returns its page summary.
func (s *HTTPScraper) Scrape(ctx context.Context, targetURL string) (*model.CompetitorPageSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: create request")
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		return nil, eris.Wrapf(ErrRedirected, "scrape: %s answered %d", targetURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "scrape: read body")
	}

	if blocked, bt := DetectBlock(resp, body); blocked {
		return nil, eris.Errorf("scrape: blocked (%s)", bt)
	}
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("scrape: status %d", resp.StatusCode)
	}

	return Analyze(targetURL, body)
}

// Analyze profiles an HTML document: title, meta description, heading
// counts, subheading topics, visible word count and structured-data presence.
func Analyze(pageURL string, body []byte) (*model.CompetitorPageSummary, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "scrape: parse html")
	}

	summary := &model.CompetitorPageSummary{
		URL:             pageURL,
		Domain:          Domain(pageURL),
		Title:           collapse(doc.Find("title").First().Text()),
		MetaDescription: metaDescription(doc),
		H1Count:         doc.Find("h1").Length(),
		H2Count:         doc.Find("h2").Length(),
		HasSchema: doc.Find(`script[type="application/ld+json"]`).Length() > 0 ||
			doc.Find("[itemscope]").Length() > 0,
		Topics: topics(doc),
	}

	doc.Find("script, style, noscript, template").Remove()
	text := doc.Find("body").Text()
	if text == "" {
		text = doc.Text()
	}
	summary.WordCount = len(strings.Fields(text))

	return summary, nil
}

func metaDescription(doc *goquery.Document) string {
	var desc string
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		if name == "" {
			name, _ = s.Attr("property")
		}
		name = strings.ToLower(name)
		if name == "description" || name == "og:description" {
			content, _ := s.Attr("content")
			desc = collapse(content)
			return name != "description"
		}
		return true
	})
	return desc
}

func topics(doc *goquery.Document) []string {
	seen := make(map[string]struct{})
	var out []string
	doc.Find("h2, h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := collapse(s.Text())
		if t == "" {
			return true
		}
		k := strings.ToLower(t)
		if _, ok := seen[k]; ok {
			return true
		}
		seen[k] = struct{}{}
		out = append(out, t)
		return len(out) < maxTopics
	})
	return out
}

// Domain returns the host of rawURL without a leading "www.".
func Domain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
