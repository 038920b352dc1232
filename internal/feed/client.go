package feed

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"kpideck/internal/deal"
)

// Config holds the connection settings for the spreadsheet-backed feed.
type Config struct {
	BaseURL    string
	MaxRetries int
	RetryDelay time.Duration
	CacheTTL   time.Duration
}

// Client fetches the shared deal feed and the auxiliary summaries. The
// deal feed serves every dashboard tab, so concurrent fetches collapse
// into one request and the decoded result is held for the cache TTL.
type Client struct {
	cfg        Config
	httpClient *http.Client

	group      singleflight.Group
	cacheMutex sync.RWMutex
	cached     []deal.Deal
	cachedAt   time.Time
}

// NewClient creates a feed client with the configured retry and cache
// behavior. Zero-value settings fall back to the defaults the dashboard
// shipped with: 3 attempts, linear 1s backoff, 5 minute cache.
func NewClient(cfg Config) *Client {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// FetchDeals returns the mapped deal list, serving from cache within
// the TTL. Concurrent callers share a single in-flight request.
func (c *Client) FetchDeals() ([]deal.Deal, error) {
	c.cacheMutex.RLock()
	if c.cached != nil && time.Since(c.cachedAt) < c.cfg.CacheTTL {
		cached := c.cached
		c.cacheMutex.RUnlock()
		log.Debug().Int("count", len(cached)).Msg("Serving deals from cache")
		return cached, nil
	}
	c.cacheMutex.RUnlock()

	v, err, _ := c.group.Do("deals", func() (any, error) {
		var dtos []DealDTO
		if err := c.getWithRetry(c.endpoint(""), &dtos); err != nil {
			return nil, err
		}
		deals := MapDeals(dtos)

		c.cacheMutex.Lock()
		c.cached = deals
		c.cachedAt = time.Now()
		c.cacheMutex.Unlock()

		log.Info().Int("count", len(deals)).Msg("Fetched deal feed")
		return deals, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]deal.Deal), nil
}

// InvalidateCache drops the cached deal list so the next fetch hits
// the feed again.
func (c *Client) InvalidateCache() {
	c.cacheMutex.Lock()
	c.cached = nil
	c.cacheMutex.Unlock()
}

// FetchPerformance returns the monthly performance summary.
func (c *Client) FetchPerformance() (*PerformanceDTO, error) {
	var out PerformanceDTO
	if err := c.getWithRetry(c.endpoint("performance"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchActivity returns the daily activity summary.
func (c *Client) FetchActivity() (*ActivityDTO, error) {
	var out ActivityDTO
	if err := c.getWithRetry(c.endpoint("activity"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchManual returns the stored manually entered figures.
func (c *Client) FetchManual() (*ManualData, error) {
	var out ManualData
	if err := c.getWithRetry(c.endpoint("manual"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveManual persists one manually entered section to the remote
// store. The backend only accepts GET, so the payload travels as a
// URL parameter.
func (c *Client) SaveManual(section string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", section, err)
	}

	params := url.Values{}
	params.Set("action", "saveManual")
	params.Set("type", section)
	params.Set("data", string(payload))
	saveURL := fmt.Sprintf("%s?%s", c.cfg.BaseURL, params.Encode())

	var ignored json.RawMessage
	if err := c.getWithRetry(saveURL, &ignored); err != nil {
		return fmt.Errorf("failed to save %s: %w", section, err)
	}
	log.Info().Str("section", section).Msg("Saved manual data to feed store")
	return nil
}

func (c *Client) endpoint(action string) string {
	if action == "" {
		return c.cfg.BaseURL
	}
	params := url.Values{}
	params.Set("action", action)
	return fmt.Sprintf("%s?%s", c.cfg.BaseURL, params.Encode())
}

// getWithRetry performs a GET against the feed with linear backoff and
// decodes the envelope's data field into out.
func (c *Client) getWithRetry(reqURL string, out any) error {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			wait := time.Duration(attempt-1) * c.cfg.RetryDelay
			log.Debug().Int("attempt", attempt).Dur("wait", wait).Msg("Retrying feed request")
			time.Sleep(wait)
		}

		lastErr = c.getOnce(reqURL, out)
		if lastErr == nil {
			return nil
		}
		log.Warn().Err(lastErr).Int("attempt", attempt).Int("max", c.cfg.MaxRetries).Msg("Feed request failed")
	}
	return lastErr
}

func (c *Client) getOnce(reqURL string, out any) error {
	resp, err := c.httpClient.Get(reqURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode feed response: %w", err)
	}
	if !env.Success {
		return fmt.Errorf("feed reported failure")
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode feed data: %w", err)
	}
	return nil
}
