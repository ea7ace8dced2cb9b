// Package web downloads pages for URL ingestion.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.WebFetcher = (*Fetcher)(nil)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultMaxBytes = 10 << 20
	userAgent       = "sercha-research/1.0 (+document ingestion)"
)

// Config holds fetcher settings
type Config struct {
	Timeout  time.Duration
	MaxBytes int64
	// AllowPrivateHosts disables the local/private address check.
	AllowPrivateHosts bool
}

// Fetcher retrieves public http(s) pages.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	allowAll bool
}

// NewFetcher creates a fetcher. Zero config values take the defaults.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}

	f := &Fetcher{maxBytes: cfg.MaxBytes, allowAll: cfg.AllowPrivateHosts}

	dialer := &net.Dialer{Timeout: cfg.Timeout}
	if !cfg.AllowPrivateHosts {
		// Checked again at connect time so a public name cannot resolve to a private address.
		dialer.Control = func(_, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			if ip := net.ParseIP(host); ip != nil && blockedIP(ip) {
				return fmt.Errorf("%w: %s", domain.ErrBlockedURL, host)
			}
			return nil
		}
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.Proxy = nil

	f.client = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("too many redirects")
			}
			return f.checkURL(req.URL)
		},
	}
	return f
}

// Fetch validates rawURL and downloads it.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.RawDocument, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid url %q", domain.ErrInvalidInput, rawURL)
	}
	if err := f.checkURL(u); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, domain.ErrBlockedURL) {
			return nil, fmt.Errorf("%w: %s", domain.ErrBlockedURL, u.Host)
		}
		return nil, fmt.Errorf("fetch %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: status %d", u.Redacted(), resp.StatusCode)
	}
	if resp.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("%w: page is %d bytes", domain.ErrFileTooLarge, resp.ContentLength)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u.Redacted(), err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: page exceeds %d bytes", domain.ErrFileTooLarge, f.maxBytes)
	}

	return &domain.RawDocument{
		Name:      u.Hostname(),
		MimeType:  mimeType(resp.Header.Get("Content-Type")),
		Content:   body,
		SourceURL: resp.Request.URL.String(),
	}, nil
}

// checkURL enforces http(s) and, unless disabled, a public host.
func (f *Fetcher) checkURL(u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: only http and https urls are supported", domain.ErrInvalidInput)
	}
	if f.allowAll {
		return nil
	}
	if blockedHost(u.Hostname()) {
		return fmt.Errorf("%w: %s", domain.ErrBlockedURL, u.Hostname())
	}
	return nil
}

func blockedHost(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" || host == "localhost" || strings.HasSuffix(host, ".localhost") ||
		strings.HasSuffix(host, ".local") || strings.HasSuffix(host, ".internal") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return blockedIP(ip)
	}
	return false
}

func blockedIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsInterfaceLocalMulticast()
}

// mimeType strips parameters; HTML is assumed when the server says nothing.
func mimeType(contentType string) string {
	if contentType == "" {
		return "text/html"
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "text/html"
	}
	if mt == "application/xhtml+xml" {
		return "text/html"
	}
	return mt
}
