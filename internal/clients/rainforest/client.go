package rainforest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

// Client wraps the Rainforest Amazon product search API.
type Client interface {
	SearchProducts(ctx context.Context, searchTerm string, limit int) ([]Product, error)
}

type Price struct {
	Symbol   string  `json:"symbol"`
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
	Raw      string  `json:"raw"`
}

type Product struct {
	ASIN        string  `json:"asin"`
	Title       string  `json:"title"`
	ImageURL    string  `json:"image"`
	Price       *Price  `json:"price,omitempty"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"ratings_total"`
	ProductURL  string  `json:"link"`
	IsPrime     bool    `json:"is_prime"`
}

type client struct {
	log      *logger.Logger
	endpoint string
	apiKey   string
	domain   string
	http     *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(os.Getenv("RAINFOREST_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing RAINFOREST_API_KEY")
	}
	endpoint := strings.TrimSpace(os.Getenv("RAINFOREST_ENDPOINT"))
	if endpoint == "" {
		endpoint = "https://api.rainforestapi.com/request"
	}
	domain := strings.TrimSpace(os.Getenv("RAINFOREST_AMAZON_DOMAIN"))
	if domain == "" {
		domain = "amazon.com"
	}
	return &client{
		log:      log.With("client", "RainforestClient"),
		endpoint: endpoint,
		apiKey:   apiKey,
		domain:   domain,
		http:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type searchResponse struct {
	SearchResults []Product `json:"search_results"`
}

func (c *client) SearchProducts(ctx context.Context, searchTerm string, limit int) ([]Product, error) {
	searchTerm = strings.TrimSpace(searchTerm)
	if searchTerm == "" {
		return nil, fmt.Errorf("search term required")
	}
	if limit <= 0 {
		limit = 3
	}

	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("amazon_domain", c.domain)
	q.Set("search_term", searchTerm)
	q.Set("type", "search")

	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rainforest http %d: %s", resp.StatusCode, string(raw))
	}

	var out searchResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("rainforest decode error: %w; raw=%s", err, string(raw))
	}

	results := out.SearchResults
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
