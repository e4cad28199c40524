package extract

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// ErrForbiddenHost is returned for URLs that resolve into private or
// special-use address space.
var ErrForbiddenHost = errors.New("internal network access forbidden")

// Fetcher downloads a remote solicitation document. DIBBS-style hosts
// reject bare clients, so requests carry browser-like headers.
type Fetcher struct {
	UserAgent      string
	RequestTimeout time.Duration
	MaxBodySize    int
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		RequestTimeout: 30 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
	}
}

// Fetch downloads the document at targetURL and returns its bytes plus the
// reported content type.
func (f *Fetcher) Fetch(targetURL string) ([]byte, string, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, "", fmt.Errorf("invalid document URL: %s", targetURL)
	}
	if err := checkHost(parsed.Hostname()); err != nil {
		return nil, "", err
	}

	c := colly.NewCollector(
		colly.UserAgent(f.UserAgent),
		colly.MaxBodySize(f.MaxBodySize),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	c.SetRequestTimeout(f.RequestTimeout)

	var body []byte
	var contentType string
	var fetchErr error

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/pdf,application/xhtml+xml,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
	})
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		contentType = r.Headers.Get("Content-Type")
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(targetURL); err != nil {
		return nil, "", fmt.Errorf("document fetch failed: %w", err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, "", fmt.Errorf("document fetch failed: %w", fetchErr)
	}
	if len(body) == 0 {
		return nil, "", fmt.Errorf("%w: remote document was empty", ErrExtractionUnavailable)
	}

	return body, contentType, nil
}

// checkHost rejects hosts that resolve to loopback/private/link-local
// space before any request is made.
func checkHost(host string) error {
	if host == "" {
		return fmt.Errorf("document URL host is required")
	}
	lower := strings.ToLower(host)
	if lower == "localhost" || strings.HasSuffix(lower, ".local") {
		return ErrForbiddenHost
	}

	ips, err := net.LookupIP(host)
	if err != nil {
		return fmt.Errorf("unable to resolve document host: %w", err)
	}
	for _, ip := range ips {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
			ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsMulticast() {
			return ErrForbiddenHost
		}
	}
	return nil
}
