package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"autotrader/crawler/internal/config"
	"autotrader/crawler/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

type AutoTraderClient interface {
	// GetSearchPage returns the listing paths found on one page of search results
	GetSearchPage(ctx context.Context, offset, size int) ([]string, error)
	// GetListing fetches a listing page and extracts its record with img_urls populated
	GetListing(ctx context.Context, listingURL string) (domain.ListingRecord, error)
	// GetImage downloads the raw image body
	GetImage(ctx context.Context, imageURL string) ([]byte, error)
	Close() error
}

type autoTraderClient struct {
	rl         ratelimit.Limiter
	config     config.AutoTraderConfig
	search     config.SearchConfig
	baseURL    string
	httpClient *resty.Client
	parser     *listingParser
}

// NewAutoTraderClient builds the HTTP client. A nil strategy selects VehicleDataStrategy.
func NewAutoTraderClient(cfg config.AutoTraderConfig, search config.SearchConfig, strategy ExtractionStrategy) AutoTraderClient {
	client := resty.New().
		SetHeaders(cfg.Headers).
		SetRetryCount(cfg.RetryCount)

	// zero keeps requests unbounded in time
	if cfg.Timeout > 0 {
		client.SetTimeout(time.Duration(cfg.Timeout) * time.Second)
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &autoTraderClient{
		rl:         rl,
		config:     cfg,
		search:     search,
		baseURL:    cfg.BaseURL,
		httpClient: client,
		parser:     newListingParser(cfg.ListingPrefix, strategy),
	}
}

func (c *autoTraderClient) GetSearchPage(ctx context.Context, offset, size int) ([]string, error) {
	url := c.baseURL + c.config.SearchPath

	html, err := c.fetch(ctx, url, c.searchParams(offset, size))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search page at offset %d: %w", offset, err)
	}

	paths, err := c.parser.ParseSearchPage(string(html))
	if err != nil {
		return nil, domain.NewExtractionError(url, "failed to parse search page", err)
	}

	log.Debugf("Search page at offset %d has %d listing links", offset, len(paths))
	return paths, nil
}

func (c *autoTraderClient) GetListing(ctx context.Context, listingURL string) (domain.ListingRecord, error) {
	html, err := c.fetch(ctx, listingURL, nil)
	if err != nil {
		return nil, err
	}

	record, err := c.parser.ParseListingPage(string(html))
	if err != nil {
		return nil, domain.NewExtractionError(listingURL, "failed to extract listing", err)
	}

	log.Debugf("Successfully fetched and parsed listing %s", listingURL)
	return record, nil
}

func (c *autoTraderClient) GetImage(ctx context.Context, imageURL string) ([]byte, error) {
	return c.fetch(ctx, imageURL, nil)
}

func (c *autoTraderClient) Close() error {
	return c.httpClient.Close()
}

// searchParams mirrors the query the site's own search form sends
func (c *autoTraderClient) searchParams(offset, size int) map[string]string {
	return map[string]string{
		"rcp":      strconv.Itoa(size),
		"rcs":      strconv.Itoa(offset),
		"srt":      strconv.Itoa(c.search.Sort),
		"prx":      strconv.Itoa(c.search.Proximity),
		"hprc":     formatFlag(c.search.HighlightPrice),
		"wcp":      formatFlag(c.search.WithCurrentPrice),
		"loc":      c.search.Location,
		"sts":      c.search.Status,
		"inMarket": c.search.InMarket,
	}
}

// formatFlag renders booleans the way the site expects them in the query string
func formatFlag(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func (c *autoTraderClient) fetch(ctx context.Context, url string, params map[string]string) ([]byte, error) {
	c.rl.Take()

	req := c.httpClient.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}

	resp, err := req.Get(url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return nil, domain.NewNetworkError(url, "failed to fetch URL", err)
	}

	if resp.IsError() {
		return nil, domain.NewNetworkError(url, fmt.Sprintf("HTTP error: %d %s", resp.StatusCode(), resp.Status()), nil)
	}

	return resp.Bytes(), nil
}
