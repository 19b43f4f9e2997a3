// Package ingest imports grant opportunities from outside sources: catalog
// feeds and arbitrary funder pages pasted in by users.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
)

const fetchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher retrieves a single page. The colly implementation below handles
// rate limiting and retries; tests swap in a stub.
type Fetcher interface {
	Fetch(ctx context.Context, targetURL string) (*FetchedPage, error)
}

type FetchedPage struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
	FetchedAt   time.Time
}

type CollyFetcher struct {
	UserAgent      string
	MaxRetries     int
	RequestTimeout time.Duration
	MaxBodySize    int
}

func NewCollyFetcher() *CollyFetcher {
	return &CollyFetcher{
		UserAgent:      fetchUserAgent,
		MaxRetries:     2,
		RequestTimeout: 30 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
	}
}

func (f *CollyFetcher) Fetch(ctx context.Context, targetURL string) (*FetchedPage, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	c := colly.NewCollector(
		colly.UserAgent(f.UserAgent),
		colly.MaxBodySize(f.MaxBodySize),
		// Colly matches allowed domains against the hostname without the
		// port, so the port must be stripped here too.
		colly.AllowedDomains(parsed.Hostname()),
		colly.AllowURLRevisit(),
		colly.DetectCharset(),
	)
	c.SetRequestTimeout(f.RequestTimeout)

	var (
		result   *FetchedPage
		fetchErr error
		once     sync.Once
	)
	// Closed exactly once, whichever callback terminates the fetch.
	fin := make(chan struct{})
	finish := func() { once.Do(func() { close(fin) }) }

	c.OnResponse(func(r *colly.Response) {
		defer finish()
		result = &FetchedPage{
			URL:         r.Request.URL.String(),
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
			Body:        bytes.Clone(r.Body),
			FetchedAt:   time.Now(),
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		retries := 0
		if v := r.Request.Ctx.GetAny("retries"); v != nil {
			retries = v.(int)
		}
		if retries < f.MaxRetries {
			r.Request.Ctx.Put("retries", retries+1)
			select {
			case <-time.After(time.Duration(retries+1) * time.Second):
			case <-ctx.Done():
				fetchErr = ctx.Err()
				finish()
				return
			}
			r.Request.Retry()
			return
		}
		fetchErr = fmt.Errorf("fetch failed after %d retries: %w", f.MaxRetries, err)
		finish()
	})

	if err := c.Visit(targetURL); err != nil {
		return nil, fmt.Errorf("visit failed: %w", err)
	}
	c.Wait()

	// A completed fetch wins over a context canceled after the fact.
	select {
	case <-fin:
	default:
		select {
		case <-fin:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if fetchErr != nil {
		return nil, fetchErr
	}
	if result == nil {
		return nil, fmt.Errorf("no response received for %s", targetURL)
	}
	return result, nil
}

// ValidateExternalURL rejects URLs whose host resolves to private or special
// address space. Users paste arbitrary URLs, so this runs before any fetch.
func ValidateExternalURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}
	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("URL has no host")
	}

	ips, err := net.LookupIP(host)
	if err != nil {
		return fmt.Errorf("host lookup failed: %w", err)
	}
	for _, ip := range ips {
		if isPrivateOrSpecialIP(ip) {
			return fmt.Errorf("host %s resolves to a restricted address", host)
		}
	}
	return nil
}

func isPrivateOrSpecialIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || ip.IsMulticast() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}
	if ip4 := ip.To4(); ip4 != nil {
		// 100.64.0.0/10 carrier NAT.
		if ip4[0] == 100 && ip4[1]&0xC0 == 64 {
			return true
		}
	}
	return false
}
