// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package hosting decides whether a domain's serving infrastructure lives
// inside Russia. Three collectors feed an arbiter: DNS fingerprints run
// first, an HTTP platform scan runs alongside them, and WHOIS is consulted
// only when DNS came back inconclusive. Every verdict carries the evidence
// trail that produced it.
package hosting

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"hostorigin/internal/dnsclient"
	"hostorigin/internal/metrics"
)

// whoisTriggerConfidence is the DNS confidence below which the WHOIS
// fallback is consulted.
const whoisTriggerConfidence = 0.6

// dnsResolver is the slice of the DNS client the collectors need.
type dnsResolver interface {
	QueryDNS(ctx context.Context, recordType, domain string) ([]string, error)
}

// Checker runs hosting-origin checks. It is stateless across calls and safe
// for concurrent use.
type Checker struct {
	dns          dnsResolver
	http         *dnsclient.SafeHTTPClient
	metrics      *metrics.Metrics
	lookupHost   func(host string) ([]string, error)
	whoisServers map[string]string
	httpTimeout  time.Duration
}

// Option configures a Checker.
type Option func(*Checker)

// WithDNSClient replaces the default resolver chain.
func WithDNSClient(d *dnsclient.Client) Option {
	return func(c *Checker) { c.dns = d }
}

// WithHTTPClient replaces the platform fingerprinter's HTTP client.
func WithHTTPClient(h *dnsclient.SafeHTTPClient) Option {
	return func(c *Checker) { c.http = h }
}

// WithMetrics wires Prometheus instrumentation. Nil is fine.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Checker) { c.metrics = m }
}

// WithHTTPTimeout bounds the single platform-scan request.
func WithHTTPTimeout(t time.Duration) Option {
	return func(c *Checker) { c.httpTimeout = t }
}

const defaultHTTPTimeout = 15 * time.Second

// New builds a Checker with production defaults.
func New(opts ...Option) *Checker {
	c := &Checker{
		lookupHost:   net.LookupHost,
		whoisServers: whoisServers,
		httpTimeout:  defaultHTTPTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.dns == nil {
		c.dns = dnsclient.New()
	}
	if c.http == nil {
		c.http = dnsclient.NewSafeHTTPClientWithTimeout(c.httpTimeout)
	}
	return c
}

// Check classifies where the target's serving infrastructure lives. It never
// returns an error: anything that goes wrong is folded into the result as
// evidence, and a total signal failure comes back as unknown with zero
// confidence. The target may be a bare domain, a URL, or an IDN form.
func (c *Checker) Check(ctx context.Context, target string) *HostingCheckResult {
	started := time.Now()

	host, err := dnsclient.NormalizeTarget(target)
	if err != nil {
		return c.invalidTarget(fmt.Sprintf("invalid target %q: %v", target, err))
	}
	// IP literals skip hostname validation so the private-address refusal
	// in the platform scan stays observable for them too.
	if net.ParseIP(host) == nil && !dnsclient.ValidateDomain(host) {
		return c.invalidTarget(fmt.Sprintf("%q is not a valid public hostname", host))
	}

	var (
		dnsSig      DnsSignal
		platformSig PlatformSignal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t := time.Now()
		dnsSig = c.collectDNS(gctx, host)
		c.metrics.ObserveSignal("dns", time.Since(t))
		return nil
	})
	g.Go(func() error {
		t := time.Now()
		platformSig = c.fingerprintPlatform(gctx, host)
		c.metrics.ObserveSignal("platform", time.Since(t))
		return nil
	})
	// Collectors never fail, they degrade into evidence.
	_ = g.Wait()

	whoisSig := WhoisSignal{Status: StatusUnknown}
	if dnsSig.Status == StatusUnknown || dnsSig.Confidence < whoisTriggerConfidence {
		t := time.Now()
		whoisSig = c.collectWhois(ctx, host)
		c.metrics.ObserveSignal("whois", time.Since(t))
		c.metrics.IncrementWhoisQuery()
	}

	result := arbitrate(dnsSig, whoisSig, &platformSig)

	elapsed := time.Since(started)
	c.metrics.IncrementCheck(string(result.Status))
	c.metrics.ObserveCheck(elapsed)
	slog.Info("hosting check completed",
		"domain", host,
		"status", result.Status,
		"confidence", result.Confidence,
		"whois_used", result.Whois.Used,
		"duration_ms", elapsed.Milliseconds())

	return result
}

func (c *Checker) invalidTarget(reason string) *HostingCheckResult {
	c.metrics.IncrementCheck(string(StatusUnknown))
	return &HostingCheckResult{
		Status:    StatusUnknown,
		Evidence:  []string{reason},
		Whois:     WhoisSignal{Status: StatusUnknown},
		DnsStatus: StatusUnknown,
	}
}
