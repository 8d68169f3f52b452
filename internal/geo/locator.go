package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultURLTemplate = "http://ip-api.com/json/%s?fields=status,country,city"
	DefaultTimeout     = 2 * time.Second

	userAgent     = "clickify/1.0"
	statusSuccess = "success"
	maxBodyBytes  = 64 << 10
)

// Locator resolves the approximate location of an IP address.
type Locator interface {
	Locate(ctx context.Context, ip string) (country, city *string)
}

// Config holds the geolocation settings.
type Config struct {
	Enabled     bool
	URLTemplate string        // fmt template with a single %s for the IP
	Timeout     time.Duration // hard limit for the whole lookup
}

// IPAPIClient looks addresses up through an ip-api.com compatible endpoint.
// Every failure is absorbed and reported as an unknown location.
type IPAPIClient struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger
}

type lookupResponse struct {
	Status  string `json:"status"`
	Country string `json:"country"`
	City    string `json:"city"`
}

// NewIPAPIClient creates a client; zero values in cfg fall back to defaults.
func NewIPAPIClient(cfg Config, client *http.Client, log *zap.Logger) *IPAPIClient {
	if cfg.URLTemplate == "" {
		cfg.URLTemplate = DefaultURLTemplate
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if client == nil {
		client = &http.Client{}
	}

	return &IPAPIClient{
		cfg:    cfg,
		client: client,
		log:    log,
	}
}

// Locate returns the country and city for ip, or (nil, nil) when geolocation
// is disabled, ip is empty or the lookup fails in any way.
func (c *IPAPIClient) Locate(ctx context.Context, ip string) (*string, *string) {
	if !c.cfg.Enabled || ip == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	data, err := c.lookup(ctx, ip)
	if err != nil {
		c.log.Debug("geolocation lookup failed", zap.String("ip", ip), zap.Error(err))
		return nil, nil
	}

	if data.Status != statusSuccess {
		c.log.Debug("geolocation lookup unsuccessful", zap.String("ip", ip), zap.String("status", data.Status))
		return nil, nil
	}

	return optional(data.Country), optional(data.City)
}

func (c *IPAPIClient) lookup(ctx context.Context, ip string) (*lookupResponse, error) {
	endpoint := fmt.Sprintf(c.cfg.URLTemplate, url.PathEscape(ip))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	var data lookupResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &data, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
