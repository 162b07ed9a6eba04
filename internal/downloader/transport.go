package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"

	"github.com/tanq16/redl/internal/utils"
)

// Response is the status line, headers and body of one attempt.
type Response struct {
	StatusCode    int
	Header        http.Header
	ContentLength int64
	Body          io.ReadCloser
}

type transport struct {
	client utils.HTTPDoer
}

// open issues a GET for rawURL. onConnect runs once the underlying connection
// (direct or to the proxy) is established. Cancelling ctx aborts the request
// and any in-flight body read.
func (t *transport) open(ctx context.Context, rawURL string, onConnect func()) (*Response, error) {
	trace := &httptrace.ClientTrace{
		GotConn: func(httptrace.GotConnInfo) { onConnect() },
	}
	req, err := http.NewRequestWithContext(httptrace.WithClientTrace(ctx, trace), http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating GET request: %w", err)
	}
	req.Header.Set("Connection", "keep-alive")
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode:    resp.StatusCode,
		Header:        resp.Header,
		ContentLength: resp.ContentLength,
		Body:          resp.Body,
	}, nil
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

func parseDownloadURL(rawURL string) (*url.URL, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid URL: missing host in %q", rawURL)
	}
	return parsed, nil
}

// resolveLocation resolves a Location header against the URL that produced it.
func resolveLocation(current, location string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("invalid redirect location: %w", err)
	}
	next := base.ResolveReference(ref).String()
	if _, err := parseDownloadURL(next); err != nil {
		return "", err
	}
	return next, nil
}
