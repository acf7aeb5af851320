// Package fetch retrieves audited pages over HTTP. It is the only package that
// performs network I/O for an audit.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/projectdiscovery/httpx/common/httpx"
	"github.com/rs/zerolog/log"

	"github.com/theopenlane/consentaudit/internal/domain"
)

const (
	// defaultTimeout is the per-request timeout for page fetches
	defaultTimeout = 10 * time.Second
	// defaultMaxRedirects is the maximum redirect hops followed
	defaultMaxRedirects = 5
	// defaultMaxBodySize is the maximum response body bytes read (2MB)
	defaultMaxBodySize = 2 * 1024 * 1024
	// defaultUserAgent identifies the auditor to the audited site
	defaultUserAgent = "Mozilla/5.0 (compatible; ConsentAudit/1.0)"
)

// Page is a fetched document with the response details the analyzers need
type Page struct {
	// URL is the requested URL
	URL string `json:"url"`
	// FinalURL is the URL after redirects
	FinalURL string `json:"final_url"`
	// StatusCode is the response status
	StatusCode int `json:"status_code"`
	// HTML is the decoded response body
	HTML string `json:"-"`
	// CookieHeader holds the Set-Cookie header values joined by newlines
	CookieHeader string `json:"cookie_header,omitempty"`
	// Headers are the response headers
	Headers map[string][]string `json:"-"`
}

// Options configures page fetching
type Options struct {
	timeout      time.Duration
	maxRedirects int
	maxBodySize  int64
	userAgent    string
}

// Option is a functional option for configuring the fetcher
type Option func(*Options)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithMaxRedirects sets the maximum redirect hops
func WithMaxRedirects(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.maxRedirects = n
		}
	}
}

// WithMaxBodySize sets the maximum response body bytes read
func WithMaxBodySize(n int64) Option {
	return func(o *Options) {
		if n > 0 {
			o.maxBodySize = n
		}
	}
}

// WithUserAgent sets the request User-Agent
func WithUserAgent(ua string) Option {
	return func(o *Options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// HTTPXFetcher fetches pages using projectdiscovery/httpx
type HTTPXFetcher struct {
	options *Options
}

// NewHTTPXFetcher creates a fetcher with the given options
func NewHTTPXFetcher(opts ...Option) *HTTPXFetcher {
	o := &Options{
		timeout:      defaultTimeout,
		maxRedirects: defaultMaxRedirects,
		maxBodySize:  defaultMaxBodySize,
		userAgent:    defaultUserAgent,
	}

	for _, opt := range opts {
		opt(o)
	}

	return &HTTPXFetcher{options: o}
}

// newHTTPXClient creates a configured httpx client
func (f *HTTPXFetcher) newHTTPXClient() (*httpx.HTTPX, error) {
	return httpx.New(&httpx.Options{
		Timeout:                   f.options.timeout,
		FollowRedirects:           f.options.maxRedirects > 0,
		MaxRedirects:              f.options.maxRedirects,
		MaxResponseBodySizeToRead: f.options.maxBodySize,
		DefaultUserAgent:          f.options.userAgent,
	})
}

// FetchPage fetches rawURL and returns its body and Set-Cookie header
func (f *HTTPXFetcher) FetchPage(ctx context.Context, rawURL string) (*Page, error) {
	target, err := domain.NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	client, err := f.newHTTPXClient()
	if err != nil {
		return nil, fmt.Errorf("initializing httpx client: %w", err)
	}

	req, err := client.NewRequestWithContext(ctx, http.MethodGet, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resp, err := client.Do(req, httpx.UnsafeOptions{})
	if err != nil {
		log.Warn().Err(err).Str("url", target).Msg("page fetch failed")
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	page := newPage(target, resp)

	if page.StatusCode != http.StatusOK {
		log.Warn().Str("url", target).Int("status", page.StatusCode).Msg("page returned non-200 status")
		return page, fmt.Errorf("%w: %d", ErrUnexpectedStatus, page.StatusCode)
	}

	if strings.TrimSpace(page.HTML) == "" {
		return page, ErrEmptyBody
	}

	log.Debug().Str("url", target).Str("final_url", page.FinalURL).Int("bytes", len(page.HTML)).Msg("page fetched")

	return page, nil
}

// FetchPolicyText fetches a policy page and reduces it to visible text
func (f *HTTPXFetcher) FetchPolicyText(ctx context.Context, policyURL string) (string, error) {
	page, err := f.FetchPage(ctx, policyURL)
	if err != nil {
		return "", err
	}

	text := StripHTML(page.HTML)
	if text == "" {
		return "", ErrEmptyBody
	}

	return text, nil
}

// newPage builds a Page from an httpx response
func newPage(target string, resp *httpx.Response) *Page {
	finalURL := target
	if resp.HasChain() {
		if last := resp.GetChainLastURL(); last != "" {
			finalURL = last
		}
	}

	headers := http.Header(resp.Headers)

	return &Page{
		URL:          target,
		FinalURL:     finalURL,
		StatusCode:   resp.StatusCode,
		HTML:         string(resp.Data),
		CookieHeader: strings.Join(headers.Values("Set-Cookie"), "\n"),
		Headers:      resp.Headers,
	}
}
