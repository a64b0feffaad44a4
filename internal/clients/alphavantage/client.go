// Package alphavantage provides a client for the Alpha Vantage symbol search API
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bobmcallan/stockmind/internal/common"
	"github.com/bobmcallan/stockmind/internal/interfaces"
	"github.com/bobmcallan/stockmind/internal/models"
)

const (
	DefaultBaseURL = "https://www.alphavantage.co/query"
	DefaultTimeout = 3 * time.Second
)

// Client implements the SymbolSearchClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Alpha Vantage client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// searchResponse mirrors the SYMBOL_SEARCH payload, which uses numbered keys.
// Rate-limit and key problems come back as 200 with a Note/Information field.
type searchResponse struct {
	BestMatches []struct {
		Symbol     string `json:"1. symbol"`
		Name       string `json:"2. name"`
		Type       string `json:"3. type"`
		Region     string `json:"4. region"`
		Currency   string `json:"8. currency"`
		MatchScore string `json:"9. matchScore"`
	} `json:"bestMatches"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// SearchSymbols runs SYMBOL_SEARCH for the given keywords
func (c *Client) SearchSymbols(ctx context.Context, keywords string) ([]models.SymbolMatch, error) {
	params := url.Values{}
	params.Set("function", "SYMBOL_SEARCH")
	params.Set("keywords", keywords)
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("symbol search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("Alpha Vantage API error (status code %d): %s", resp.StatusCode, string(body))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error decoding Alpha Vantage response: %w", err)
	}

	if msg := firstNonEmpty(result.ErrorMessage, result.Note, result.Information); msg != "" && len(result.BestMatches) == 0 {
		return nil, fmt.Errorf("Alpha Vantage API message: %s", msg)
	}

	matches := make([]models.SymbolMatch, 0, len(result.BestMatches))
	for _, m := range result.BestMatches {
		score, _ := strconv.ParseFloat(m.MatchScore, 64)
		matches = append(matches, models.SymbolMatch{
			Symbol:   m.Symbol,
			Name:     m.Name,
			Type:     m.Type,
			Region:   m.Region,
			Currency: m.Currency,
			Score:    score,
		})
	}

	c.logger.Debug().
		Str("keywords", keywords).
		Int("matches", len(matches)).
		Dur("elapsed", time.Since(start)).
		Msg("Alpha Vantage symbol search")

	return matches, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Ensure Client implements SymbolSearchClient
var _ interfaces.SymbolSearchClient = (*Client)(nil)
