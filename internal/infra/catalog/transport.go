package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bibliotech-bot/internal/infra/metrics"
)

// StatusError is returned for any non-2xx upstream response. It is always
// terminal: the retry layer never re-issues a request that the upstream
// answered.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d", e.Code)
}

// Transport issues JSON requests against the BiblioTech backend. It owns the
// connection pool and the connect timeout; per-request deadlines come from
// the caller so the catalog and AI paths can differ. No retry or cache logic
// lives here.
type Transport struct {
	baseURL string
	client  *http.Client
}

func NewTransport(baseURL string, connectTimeout time.Duration) *Transport {
	dialer := &net.Dialer{Timeout: connectTimeout}
	return &Transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Transport: &http.Transport{
				DialContext:         dialer.DialContext,
				MaxIdleConns:        16,
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// GetJSON performs a GET and decodes the body into out. The timeout bounds
// this single request; the ctx bounds the caller's whole operation.
func (t *Transport) GetJSON(ctx context.Context, path string, query url.Values, timeout time.Duration, out any) error {
	u := t.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return t.do(req, timeout, out)
}

// PostJSON performs a POST with a JSON body and decodes the response into out.
func (t *Transport) PostJSON(ctx context.Context, path string, body any, timeout time.Duration, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return t.do(req, timeout, out)
}

func (t *Transport) do(req *http.Request, timeout time.Duration, out any) error {
	ctx := req.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	op := strings.TrimPrefix(req.URL.Path, "/")
	if err != nil {
		metrics.ObserveCatalogCall(op, time.Since(start).Milliseconds(), false)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveCatalogCall(op, time.Since(start).Milliseconds(), false)
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			metrics.ObserveCatalogCall(op, time.Since(start).Milliseconds(), false)
			return fmt.Errorf("decode response: %w", err)
		}
	}
	metrics.ObserveCatalogCall(op, time.Since(start).Milliseconds(), true)
	return nil
}

// CloseIdleConnections releases pooled connections on shutdown.
func (t *Transport) CloseIdleConnections() {
	t.client.CloseIdleConnections()
}
