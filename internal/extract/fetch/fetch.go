// Package fetch retrieves a posting page's HTML through a cascade of public
// CORS proxies. Proxies are tried in order, each under its own timeout;
// the cascade is deliberately sequential so at most one request per target
// is in flight against rate-limited third parties.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultProxies are public URL-rewriting services with no SLA; the cascade
// exists precisely because any of them can be down at any moment.
var DefaultProxies = []string{
	"https://api.allorigins.win/raw?url=%s",
	"https://corsproxy.io/?%s",
	"https://api.codetabs.com/v1/proxy?quest=%s",
}

const (
	// bodies shorter than this are error pages, not postings
	minBodyLen = 100

	maxBodyLen = 4 << 20
)

var ErrAllProxiesFailed = errors.New("all proxies failed")

type Fetcher struct {
	proxies []string
	hc      *http.Client
	limiter *HostLimiter
	timeout time.Duration
}

func New(proxies []string, timeout time.Duration, limiter *HostLimiter) *Fetcher {
	if len(proxies) == 0 {
		proxies = DefaultProxies
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Fetcher{
		proxies: proxies,
		hc:      &http.Client{Timeout: timeout + time.Second},
		limiter: limiter,
		timeout: timeout,
	}
}

// Fetch returns the page HTML for target, or ErrAllProxiesFailed (wrapped
// with the last attempt's error) once every proxy has been tried.
func (f *Fetcher) Fetch(ctx context.Context, target string) (string, error) {
	var lastErr error

	for _, proxy := range f.proxies {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		html, err := f.fetchVia(ctx, proxy, target)
		if err != nil {
			lastErr = err
			log.Printf("[fetch] proxy failed url=%q err=%v", target, err)
			continue
		}
		return html, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no proxies configured")
	}
	return "", fmt.Errorf("%w: %v", ErrAllProxiesFailed, lastErr)
}

func (f *Fetcher) fetchVia(ctx context.Context, proxyTmpl, target string) (string, error) {
	proxyURL := fmt.Sprintf(proxyTmpl, url.QueryEscape(target))

	if f.limiter != nil {
		if err := f.limiter.WaitURL(ctx, proxyURL); err != nil {
			return "", err
		}
	}

	cctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodGet, proxyURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "JobTrack/1.0 (+local)")

	res, err := f.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("proxy get: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", fmt.Errorf("proxy status %d", res.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, maxBodyLen))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	body := strings.TrimSpace(string(b))
	if len(body) < minBodyLen {
		return "", fmt.Errorf("body too short (%d bytes)", len(body))
	}
	return body, nil
}
