// Package wikipedia provides a client for the Wikipedia REST and action APIs
package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/stockmind/internal/common"
	"github.com/bobmcallan/stockmind/internal/interfaces"
	"github.com/bobmcallan/stockmind/internal/models"
)

const (
	DefaultBaseURL   = "https://en.wikipedia.org"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "StockMind/1.0 (https://github.com/bobmcallan/stockmind)"
)

// ErrPageNotFound is returned when no page exists for a title
var ErrPageNotFound = errors.New("wikipedia page not found")

// DisambiguationError is returned when a title resolves to a disambiguation page.
// Options lists the page titles the disambiguation page links to, in page order.
type DisambiguationError struct {
	Title   string
	Options []string
}

func (e *DisambiguationError) Error() string {
	return fmt.Sprintf("%q may refer to %d pages", e.Title, len(e.Options))
}

// Client implements the WikipediaClient interface
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithUserAgent sets the User-Agent header; Wikimedia asks clients to identify themselves
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit. Zero or less leaves requests unthrottled.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Wikipedia client. No API key is required.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Inf, 0),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// pageTitle converts a display title into its URL path form
func pageTitle(title string) string {
	return url.PathEscape(strings.ReplaceAll(strings.TrimSpace(title), " ", "_"))
}

// do performs a rate-limited GET and returns the open response for status 200.
// 404 maps to ErrPageNotFound; other statuses to an error.
func (c *Client) do(ctx context.Context, reqURL, accept string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp, nil
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, ErrPageNotFound
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		return nil, fmt.Errorf("wikipedia API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}

// summaryResponse is the subset of the REST page summary we use
type summaryResponse struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Summary returns the lead summary of the page with the given title.
// Redirects are followed. A disambiguation page yields *DisambiguationError.
func (c *Client) Summary(ctx context.Context, title string) (*models.WikiPage, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrPageNotFound
	}

	reqURL := fmt.Sprintf("%s/api/rest_v1/page/summary/%s?redirect=true", c.baseURL, pageTitle(title))

	start := time.Now()
	resp, err := c.do(ctx, reqURL, "application/json")
	if err != nil {
		c.logger.Debug().Err(err).Str("title", title).Msg("Wikipedia summary lookup failed")
		return nil, err
	}
	defer resp.Body.Close()

	var sr summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}

	c.logger.Debug().Str("title", title).Str("type", sr.Type).Dur("elapsed", time.Since(start)).Msg("Wikipedia summary")

	if sr.Type == "disambiguation" {
		options, err := c.disambiguationOptions(ctx, sr.Title)
		if err != nil {
			c.logger.Debug().Err(err).Str("title", sr.Title).Msg("Failed to load disambiguation options")
		}
		return nil, &DisambiguationError{Title: sr.Title, Options: options}
	}

	if strings.TrimSpace(sr.Extract) == "" {
		return nil, ErrPageNotFound
	}

	return &models.WikiPage{
		Title:   sr.Title,
		Extract: sr.Extract,
		URL:     sr.ContentURLs.Desktop.Page,
	}, nil
}

// disambiguationOptions fetches the rendered HTML of a disambiguation page
// and returns the first wiki link of each list item.
func (c *Client) disambiguationOptions(ctx context.Context, title string) ([]string, error) {
	reqURL := fmt.Sprintf("%s/api/rest_v1/page/html/%s", c.baseURL, pageTitle(title))

	resp, err := c.do(ctx, reqURL, "text/html")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse disambiguation page: %w", err)
	}

	return extractOptions(doc), nil
}

// extractOptions returns the first link title of each list item, skipping
// table-of-contents and navigation lists.
func extractOptions(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var options []string

	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		if li.HasClass("toclevel-1") || li.ParentsFiltered(".toc, .navbox, nav").Length() > 0 {
			return
		}
		a := li.Find("a").First()
		if a.Length() == 0 {
			return
		}
		option := strings.TrimSpace(a.AttrOr("title", ""))
		if option == "" {
			option = strings.TrimSpace(a.Text())
		}
		if option == "" || seen[option] {
			return
		}
		seen[option] = true
		options = append(options, option)
	})

	return options
}

// searchResponse is the action API list=search payload
type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// Search returns up to limit page titles matching the query
func (c *Client) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", strconv.Itoa(limit))
	params.Set("srprop", "")
	params.Set("format", "json")

	reqURL := fmt.Sprintf("%s/w/api.php?%s", c.baseURL, params.Encode())

	resp, err := c.do(ctx, reqURL, "application/json")
	if err != nil {
		if errors.Is(err, ErrPageNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	titles := make([]string, 0, len(sr.Query.Search))
	for _, r := range sr.Query.Search {
		titles = append(titles, r.Title)
	}

	c.logger.Debug().Str("query", query).Int("results", len(titles)).Msg("Wikipedia search")

	return titles, nil
}

// Ensure Client implements WikipediaClient
var _ interfaces.WikipediaClient = (*Client)(nil)
