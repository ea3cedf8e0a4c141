package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	tls2 "github.com/refraction-networking/utls"
)

const maxBodySize = 10 * 1024 * 1024 // 10 MB cap

// Fetcher performs HTTP requests with a Chrome TLS fingerprint (utls).
// Plain http:// URLs bypass the TLS dialer and use the default transport
// path, so local test servers work unchanged.
type Fetcher struct {
	timeout time.Duration
}

// NewFetcher creates a fetcher whose individual requests are bounded by
// timeout on top of whatever deadline the caller's context carries.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{timeout: timeout}
}

// fetchResult is one successful HTTP response body.
type fetchResult struct {
	body        []byte
	contentType string
	finalURL    string
}

// Get fetches the URL with the given headers. Non-2xx/3xx statuses are
// errors; the cascade treats any error as "no candidate from this attempt".
func (f *Fetcher) Get(ctx context.Context, targetURL string, headers map[string]string) (*fetchResult, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	transport := &http.Transport{
		DialTLSContext: dialTLSChrome,
	}
	client := &http.Client{Transport: transport}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch: HTTP %d for %s", resp.StatusCode, targetURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}

	finalURL := targetURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return &fetchResult{
		body:        body,
		contentType: resp.Header.Get("Content-Type"),
		finalURL:    finalURL,
	}, nil
}

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint
// via utls. The outer http.Transport speaks HTTP/1.1 over it.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls2.UClient(rawConn, &tls2.Config{
		ServerName: host,
	}, tls2.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}
