// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package dnsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/miekg/dns"
	"codeberg.org/miekg/dns/dnsutil"
)

type ResolverConfig struct {
	Name string
	IP   string
	DoH  string
}

var DefaultResolvers = []ResolverConfig{
	{Name: "Yandex", IP: "77.88.8.8"},
	{Name: "Google", IP: "8.8.8.8", DoH: "https://dns.google/resolve"},
	{Name: "Cloudflare", IP: "1.1.1.1", DoH: "https://cloudflare-dns.com/dns-query"},
	{Name: "Quad9", IP: "9.9.9.9"},
}

var UserAgent = "HostOrigin-HostingAudit/1.0 (+https://hostorigin.ru)"

func SetUserAgentVersion(version string) {
	UserAgent = fmt.Sprintf("HostOrigin-HostingAudit/%s (+https://hostorigin.ru)", version)
}

const (
	dohGoogleURL   = "https://dns.google/resolve"
	defaultTimeout = 2 * time.Second
)

// ErrNXDomain reports that the queried name does not exist.
var ErrNXDomain = errors.New("NXDOMAIN")

type Client struct {
	resolvers  []ResolverConfig
	httpClient *http.Client
	timeout    time.Duration
}

type Option func(*Client)

func WithResolvers(r []ResolverConfig) Option {
	return func(c *Client) { c.resolvers = r }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithTimeout(t time.Duration) Option {
	return func(c *Client) { c.timeout = t }
}

func New(opts ...Option) *Client {
	c := &Client{
		resolvers: DefaultResolvers,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				IdleConnTimeout:     30 * time.Second,
				DisableKeepAlives:   false,
				MaxIdleConnsPerHost: 5,
			},
		},
		timeout: defaultTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func dnsTypeFromString(recordType string) (uint16, error) {
	switch strings.ToUpper(recordType) {
	case "A":
		return dns.TypeA, nil
	case "AAAA":
		return dns.TypeAAAA, nil
	case "NS":
		return dns.TypeNS, nil
	case "CNAME":
		return dns.TypeCNAME, nil
	case "PTR":
		return dns.TypePTR, nil
	default:
		return 0, fmt.Errorf("unsupported record type: %s", recordType)
	}
}

func rrToString(rr dns.RR) string {
	switch v := rr.(type) {
	case *dns.A:
		return v.A.Addr.String()
	case *dns.AAAA:
		return v.AAAA.Addr.String()
	case *dns.NS:
		return v.NS.Ns
	case *dns.CNAME:
		return v.CNAME.Target
	default:
		hdr := rr.Header()
		full := rr.String()
		prefix := hdr.String()
		return strings.TrimPrefix(full, prefix)
	}
}

// QueryDNS resolves one record type for a name. DoH is tried first, then
// each configured resolver over UDP. NXDOMAIN surfaces as ErrNXDomain; an
// empty slice with a nil error means the name exists but carries no records
// of the requested type.
func (c *Client) QueryDNS(ctx context.Context, recordType, domain string) ([]string, error) {
	if domain == "" || recordType == "" {
		return nil, fmt.Errorf("empty DNS query")
	}

	records, err := c.dohQuery(ctx, domain, recordType)
	if err == nil {
		return records, nil
	}
	if errors.Is(err, ErrNXDomain) {
		return nil, ErrNXDomain
	}
	slog.Debug("DoH query failed, falling back to UDP", "domain", domain, "type", recordType, "error", err)

	var lastErr error
	for _, resolver := range c.resolvers {
		records, err = c.udpQuery(ctx, domain, recordType, resolver.IP)
		if err == nil {
			return records, nil
		}
		if errors.Is(err, ErrNXDomain) {
			return nil, ErrNXDomain
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) udpQuery(ctx context.Context, domain, recordType, resolverIP string) ([]string, error) {
	qtype, err := dnsTypeFromString(recordType)
	if err != nil {
		return nil, err
	}

	fqdn := dnsutil.Fqdn(domain)
	msg := dns.NewMsg(fqdn, qtype)
	msg.RecursionDesired = true

	dnsClient := newDNSClient(c.timeout)

	r, _, err := dnsClient.Exchange(ctx, msg, "udp", net.JoinHostPort(resolverIP, "53"))
	if err != nil {
		return nil, err
	}

	if r.Rcode == dns.RcodeNameError {
		return nil, ErrNXDomain
	}

	var results []string
	for _, rr := range r.Answer {
		if s := rrToString(rr); s != "" {
			results = append(results, s)
		}
	}
	return results, nil
}

type dohResponse struct {
	Status int `json:"Status"`
	Answer []struct {
		Data string `json:"data"`
	} `json:"Answer"`
}

func (c *Client) dohQuery(ctx context.Context, domain, recordType string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", dohGoogleURL, nil)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("name", domain)
	q.Set("type", strings.ToUpper(recordType))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/dns-json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DoH status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	return parseDohResponse(body)
}

func parseDohResponse(body []byte) ([]string, error) {
	var data dohResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, err
	}

	switch data.Status {
	case 0:
	case 3:
		return nil, ErrNXDomain
	default:
		return nil, fmt.Errorf("DoH rcode %d", data.Status)
	}

	var results []string
	seen := make(map[string]bool)
	for _, answer := range data.Answer {
		rd := strings.TrimSpace(answer.Data)
		if rd == "" || seen[rd] {
			continue
		}
		results = append(results, rd)
		seen[rd] = true
	}
	return results, nil
}

func newDNSClient(timeout time.Duration) *dns.Client {
	return &dns.Client{
		Transport: &dns.Transport{
			Dialer: &net.Dialer{
				Timeout: timeout,
			},
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
	}
}
