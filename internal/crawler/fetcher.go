package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "minispider/1.0 (+https://github.com/nao1215/minispider)"

// DefaultMaxBodySize limits how much of a response body is read.
const DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

// FetchResult is the outcome of a single fetch.
// It belongs to the worker that produced it and is never shared.
type FetchResult struct {
	// Success is true only for a completed request with a 2xx status.
	Success bool

	// StatusCode is the HTTP status, or 0 if no response was received.
	StatusCode int

	// ContentType is the lowercased media type without parameters,
	// e.g. "text/html".
	ContentType string

	// ContentTypeHeader is the raw Content-Type header, kept so the link
	// extractor can honor a declared charset.
	ContentTypeHeader string

	// Body is the response body, read up to the fetcher's size limit.
	// Nil when Success is false.
	Body []byte

	// Err describes why the fetch failed. Nil when Success is true.
	Err error
}

// Fetcher performs single HTTP GET requests with a per-request timeout.
// It never retries; a failed fetch is reported through FetchResult.
type Fetcher struct {
	// client is the HTTP client, possibly routed through a proxy.
	client *http.Client

	// userAgent is the User-Agent header to use.
	userAgent string

	// headers are extra request headers sent with every request.
	headers map[string]string

	// cookie is sent as the Cookie header when non-empty.
	cookie string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// sites maps a host name to its cookie and header overrides.
	sites map[string]SiteRequest

	// limiter, when set, is shared by all workers and caps the total
	// request rate of the run.
	limiter *rate.Limiter
}

// SiteRequest overrides request settings for a single host.
type SiteRequest struct {
	// Cookie replaces the default cookie when non-empty.
	Cookie string

	// Headers are added on top of the default headers.
	Headers map[string]string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHeaders sets extra headers sent with every request.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithCookie sets the Cookie header sent with every request.
func WithCookie(cookie string) FetcherOption {
	return func(f *Fetcher) {
		f.cookie = cookie
	}
}

// WithSiteRequests sets per-host overrides, keyed by host name without port.
func WithSiteRequests(sites map[string]SiteRequest) FetcherOption {
	return func(f *Fetcher) {
		f.sites = sites
	}
}

// WithMaxBodySize sets the maximum response body size.
// Non-positive values keep the default.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithRequestsPerSecond caps the combined request rate of every worker using
// this Fetcher. Zero or negative disables the cap, which is the default; the
// per-worker crawl interval applies either way.
func WithRequestsPerSecond(rps float64) FetcherOption {
	return func(f *Fetcher) {
		if rps > 0 {
			f.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewFetcher creates a Fetcher using client. A nil client uses a plain
// http.Client; timeouts are applied per request by Fetch.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	f := &Fetcher{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch issues one GET for rawURL bounded by timeout.
//
// Transport failures (timeouts, refused connections, DNS errors, broken
// responses) and non-2xx statuses all produce a result with Success false.
// The status code alone decides success; a 404 with a body is still a failure.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, timeout time.Duration) FetchResult {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return FetchResult{Err: fmt.Errorf("rate limiter: %w", err)}
		}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return FetchResult{Err: fmt.Errorf("failed to create request: %w", err)}
	}

	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return FetchResult{Err: err}
	}
	defer resp.Body.Close()

	header := resp.Header.Get("Content-Type")
	result := FetchResult{
		StatusCode:        resp.StatusCode,
		ContentType:       MediaType(header),
		ContentTypeHeader: header,
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Err = fmt.Errorf("unexpected status code %d", resp.StatusCode)
		return result
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		result.Err = fmt.Errorf("failed to read body: %w", err)
		return result
	}

	result.Success = true
	result.Body = body
	return result
}

// setHeaders applies the user agent, the default headers and cookie, and
// then any overrides for the request's host.
func (f *Fetcher) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.userAgent)
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	cookie := f.cookie
	if site, ok := f.sites[req.URL.Hostname()]; ok {
		for k, v := range site.Headers {
			req.Header.Set(k, v)
		}
		if site.Cookie != "" {
			cookie = site.Cookie
		}
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
}
