package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"videocrawl/internal/model"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

// ErrStatus marks a response with a non-2xx status code
var ErrStatus = errors.New("unexpected http status")

// ErrBodyTooLarge marks a response body longer than maxBodyBytes
var ErrBodyTooLarge = errors.New("response body too large")

// maxBodyBytes caps how much of a page is read into memory
const maxBodyBytes = 8 * 1024 * 1024

// HTTPClient is the narrow client surface the scrapers depend on
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// browserTransport sends requests through a tls-client session so the
// handshake looks like a desktop browser.
type browserTransport struct {
	session tls_client.HttpClient
}

func (b *browserTransport) Do(req *http.Request) (*http.Response, error) {
	resp, err := b.session.Do(toBrowserRequest(req))
	if err != nil {
		return nil, err
	}
	return fromBrowserResponse(resp, req), nil
}

// toBrowserRequest copies req into the fhttp types tls-client expects.
// The body is shared, not copied.
func toBrowserRequest(req *http.Request) *fhttp.Request {
	out := &fhttp.Request{
		Method:        req.Method,
		URL:           req.URL,
		Proto:         req.Proto,
		ProtoMajor:    req.ProtoMajor,
		ProtoMinor:    req.ProtoMinor,
		Header:        fhttp.Header(cloneHeader(req.Header)),
		Body:          req.Body,
		ContentLength: req.ContentLength,
		Host:          req.Host,
	}
	return out.WithContext(req.Context())
}

func fromBrowserResponse(resp *fhttp.Response, req *http.Request) *http.Response {
	return &http.Response{
		Status:           resp.Status,
		StatusCode:       resp.StatusCode,
		Proto:            resp.Proto,
		ProtoMajor:       resp.ProtoMajor,
		ProtoMinor:       resp.ProtoMinor,
		Header:           cloneHeader(resp.Header),
		Body:             resp.Body,
		ContentLength:    resp.ContentLength,
		TransferEncoding: resp.TransferEncoding,
		Uncompressed:     resp.Uncompressed,
		Request:          req,
	}
}

// cloneHeader copies a header map; both header packages share map[string][]string
func cloneHeader(h map[string][]string) http.Header {
	out := make(http.Header, len(h))
	for k, v := range h {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// headerClient stamps the fixed browser identity onto every request
type headerClient struct {
	inner          HTTPClient
	userAgent      string
	acceptLanguage string
}

func (h *headerClient) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept-Language", h.acceptLanguage)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml")
	}
	return h.inner.Do(req)
}

// WithHeaders wraps inner so every request carries the given user agent and language.
func WithHeaders(inner HTTPClient, userAgent, acceptLanguage string) HTTPClient {
	return &headerClient{inner: inner, userAgent: userAgent, acceptLanguage: acceptLanguage}
}

// NewHTTPClient builds the outbound client described by cfg. With BrowserTLS the
// TLS handshake mimics a desktop Chrome, otherwise net/http is used.
func NewHTTPClient(cfg *model.HTTPConfig) (HTTPClient, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30
	}

	var inner HTTPClient
	if cfg.BrowserTLS {
		jar := tls_client.NewCookieJar()
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(timeout),
			tls_client.WithClientProfile(profiles.DefaultClientProfile),
			tls_client.WithRandomTLSExtensionOrder(),
			tls_client.WithCookieJar(jar),
		}
		c, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create tls client: %w", err)
		}
		inner = &browserTransport{session: c}
	} else {
		inner = &http.Client{Timeout: time.Duration(timeout) * time.Second}
	}

	return WithHeaders(inner, cfg.UserAgent, cfg.AcceptLanguage), nil
}

// Get fetches rawURL and returns the body. Non-2xx statuses wrap ErrStatus.
func Get(ctx context.Context, c HTTPClient, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	return readLimited(resp.Body, maxBodyBytes)
}

// readLimited reads all of r, failing with ErrBodyTooLarge past limit bytes
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, limit)
	}
	return body, nil
}
