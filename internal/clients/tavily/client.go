package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

// Client wraps the Tavily web search API.
type Client interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error)
}

type SearchOptions struct {
	SearchDepth    string
	IncludeDomains []string
	MaxResults     int
}

type Result struct {
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	Content        string  `json:"content"`
	RelevanceScore float64 `json:"score"`
}

type client struct {
	log     *logger.Logger
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(os.Getenv("TAVILY_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing TAVILY_API_KEY")
	}
	baseURL := strings.TrimSpace(os.Getenv("TAVILY_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.tavily.com"
	}
	return &client{
		log:     log.With("client", "TavilyClient"),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type searchRequest struct {
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth,omitempty"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	MaxResults     int      `json:"max_results,omitempty"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

func (c *client) Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query required")
	}
	if opts.SearchDepth == "" {
		opts.SearchDepth = "advanced"
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 5
	}

	body := searchRequest{
		Query:          query,
		SearchDepth:    opts.SearchDepth,
		IncludeDomains: opts.IncludeDomains,
		MaxResults:     opts.MaxResults,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/search", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tavily http %d: %s", resp.StatusCode, string(raw))
	}

	var out searchResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("tavily decode error: %w; raw=%s", err, string(raw))
	}
	return out.Results, nil
}
