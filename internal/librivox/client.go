package librivox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/stefancruz/grayjay-plugin-librivox/internal/config"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/domain"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/metrics"
)

// Client performs all upstream fetches: structured feed API calls and the
// HTML pages used by the scrape fallback. Requests are rate limited so a
// fast-paging host does not hammer the catalog.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string

	apiBase    string
	siteBase   string
	streamBase string
}

// NewClient creates a client from configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter:    rate.NewLimiter(rate.Limit(cfg.UpstreamRPS), 1),
		userAgent:  cfg.UserAgent,
		apiBase:    cfg.APIBaseURL,
		siteBase:   cfg.SiteBaseURL,
		streamBase: cfg.StreamBaseURL,
	}
}

// SiteBase returns the catalog site root used for URL classification.
func (c *Client) SiteBase() string { return c.siteBase }

// StreamBase returns the proxied-stream root used to build playable URLs.
func (c *Client) StreamBase() string { return c.streamBase }

func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("transport_error").Inc()
		return nil, domain.WrapErr(domain.TransportFailure, "fetch", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		metrics.UpstreamRequests.WithLabelValues("transport_error").Inc()
		return nil, domain.Errf(domain.TransportFailure, "fetch", "%s returned status %d", url, resp.StatusCode)
	}
	return resp, nil
}

// getJSON fetches url and decodes the body into v.
func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	resp, err := c.do(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("transport_error").Inc()
		return domain.WrapErr(domain.TransportFailure, "fetch", url, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		metrics.UpstreamRequests.WithLabelValues("decode_error").Inc()
		return domain.WrapErr(domain.MalformedResponse, "fetch", fmt.Sprintf("unexpected response shape from %s", url), err)
	}
	metrics.UpstreamRequests.WithLabelValues("ok").Inc()
	return nil
}

// getDocument fetches url as an HTML document for the scrape fallback.
func (c *Client) getDocument(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := c.do(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("decode_error").Inc()
		return nil, domain.WrapErr(domain.MalformedResponse, "fetch", fmt.Sprintf("parse HTML from %s", url), err)
	}
	metrics.UpstreamRequests.WithLabelValues("ok").Inc()
	return doc, nil
}
