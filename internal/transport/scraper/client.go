// Package scraper calls the external article scraping service to resolve a
// URL into its headline text.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/factlens/factlens/internal/domain"
)

// Client is an HTTP client for the scraping service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New creates a scraper client. baseURL is the service root, e.g.
// "http://scraper:8081".
func New(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 20 * time.Second},
		logger:  logger,
	}
}

type scrapeResponse struct {
	Title string `json:"title"`
	Error string `json:"error,omitempty"`
}

// Title fetches the article at articleURL through the scraping service and
// returns its headline.
func (c *Client) Title(ctx context.Context, articleURL string) (string, error) {
	endpoint := c.baseURL + "/scrape?url=" + url.QueryEscape(articleURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build scrape request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: call scraper: %v", domain.ErrScrapeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: scraper returned status %d", domain.ErrScrapeFailed, resp.StatusCode)
	}

	var parsed scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode scrape response: %v", domain.ErrScrapeFailed, err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("%w: %s", domain.ErrScrapeFailed, parsed.Error)
	}

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		return "", fmt.Errorf("%w: empty title for %s", domain.ErrScrapeFailed, articleURL)
	}

	c.logger.Debug("scraped article title",
		zap.String("url", articleURL),
		zap.String("title", title))
	return title, nil
}
