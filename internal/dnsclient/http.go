package dnsclient

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// SafeHTTPClient fetches pages for fingerprinting. Redirect responses are
// returned to the caller rather than followed, and targets naming private or
// reserved address space are refused before any connection is made.
type SafeHTTPClient struct {
	client    *http.Client
	userAgent string
}

func NewSafeHTTPClient() *SafeHTTPClient {
	return NewSafeHTTPClientWithTimeout(15 * time.Second)
}

func NewSafeHTTPClientWithTimeout(timeout time.Duration) *SafeHTTPClient {
	return &SafeHTTPClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				IdleConnTimeout:     30 * time.Second,
				DisableKeepAlives:   false,
				MaxIdleConnsPerHost: 5,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent: UserAgent,
	}
}

// SetTransport replaces the underlying transport.
func (s *SafeHTTPClient) SetTransport(rt http.RoundTripper) {
	s.client.Transport = rt
}

func (s *SafeHTTPClient) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, err
	}
	if IsPrivateHost(req.URL.Hostname()) {
		return nil, fmt.Errorf("SSRF protection: target %q is in private or reserved address space", req.URL.Hostname())
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	return s.client.Do(req)
}

func (s *SafeHTTPClient) ReadBody(resp *http.Response, maxBytes int64) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, maxBytes))
}

func IsPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}

	if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return true
	}

	if ip4 := ip.To4(); ip4 != nil {
		if ip4[0] == 100 && ip4[1] >= 64 && ip4[1] <= 127 {
			return true
		}
		if ip4[0] == 192 && ip4[1] == 0 && ip4[2] == 0 {
			return true
		}
		if ip4[0] == 198 && (ip4[1] == 18 || ip4[1] == 19) {
			return true
		}
	}

	return false
}

// IsPrivateHost reports whether a hostname names local or private address
// space without resolving it: IP literals are checked against reserved
// ranges, and localhost / .local names always count as private.
func IsPrivateHost(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if host == "" {
		return true
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") ||
		strings.HasSuffix(host, ".local") {
		return true
	}
	if ip := net.ParseIP(strings.Trim(host, "[]")); ip != nil {
		return IsPrivateIP(ip.String())
	}
	return false
}
