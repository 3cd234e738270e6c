// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under AGPL-3.0 — See LICENSE for terms.
// Analysis intelligence — also maintained under separate proprietary license.
package hosting

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"hostorigin/internal/dnsclient"
)

// maxPTRLookups bounds the reverse lookups per check. Sites rarely spread
// across more providers than that, and PTR queries are the slow part.
const maxPTRLookups = 3

type lookupResult struct {
	recordType string
	records    []string
	err        error
}

// collectDNS resolves the domain and classifies it from reverse-DNS,
// nameserver and ccTLD fingerprints. It never fails: lookup errors become
// evidence lines and the signal degrades toward unknown.
func (c *Checker) collectDNS(ctx context.Context, domain string) DnsSignal {
	sig := DnsSignal{Status: StatusUnknown}

	// A and AAAA run in parallel and fail independently: losing one
	// family must not hide addresses from the other.
	results := make(chan lookupResult, 2)
	for _, recordType := range []string{"A", "AAAA"} {
		go func(recordType string) {
			records, err := c.dns.QueryDNS(ctx, recordType, domain)
			results <- lookupResult{recordType: recordType, records: records, err: err}
		}(recordType)
	}
	byType := make(map[string]lookupResult, 2)
	for i := 0; i < 2; i++ {
		res := <-results
		byType[res.recordType] = res
	}

	seen := make(map[string]bool)
	for _, recordType := range []string{"A", "AAAA"} {
		res := byType[recordType]
		if res.err != nil {
			if errors.Is(res.err, dnsclient.ErrNXDomain) {
				sig.Evidence = append(sig.Evidence, fmt.Sprintf("DNS %s: NXDOMAIN for %s", recordType, domain))
			} else {
				sig.Evidence = append(sig.Evidence, fmt.Sprintf("DNS %s lookup failed: %v", recordType, res.err))
			}
			continue
		}
		for _, record := range res.records {
			// Resolver answers can interleave CNAME targets with
			// addresses. Only real IPs move forward.
			if net.ParseIP(record) == nil {
				continue
			}
			if !seen[record] {
				seen[record] = true
				sig.ResolvedIPs = append(sig.ResolvedIPs, record)
			}
		}
	}

	if len(sig.ResolvedIPs) == 0 {
		sig.Evidence = append(sig.Evidence, "DNS: no addresses resolved")
	} else {
		sig.Evidence = append(sig.Evidence, fmt.Sprintf("DNS: resolved to %s", strings.Join(sig.ResolvedIPs, ", ")))
	}

	c.classifyPTR(ctx, &sig)
	c.classifyNS(ctx, domain, &sig)

	if sig.Status == StatusUnknown {
		for _, suffix := range domesticCcTLDs {
			if strings.HasSuffix(domain, suffix) {
				sig.Status = StatusDomestic
				sig.Confidence = 0.3
				sig.Evidence = append(sig.Evidence, fmt.Sprintf("ccTLD %s weakly suggests Russian hosting", suffix))
				break
			}
		}
	}

	return sig
}

// classifyPTR reverse-resolves the first few addresses and matches the names
// against the provider tables. A domestic match on any address outranks a
// foreign match on another: multi-homed sites with a Russian leg count as
// reachable domestically.
func (c *Checker) classifyPTR(ctx context.Context, sig *DnsSignal) {
	var domestic, foreign providerPattern

	for i, ip := range sig.ResolvedIPs {
		if i >= maxPTRLookups {
			break
		}
		arpa := dnsclient.ReverseName(ip)
		if arpa == "" {
			continue
		}
		ptrs, err := c.dns.QueryDNS(ctx, "PTR", arpa)
		if err != nil {
			if errors.Is(err, dnsclient.ErrNXDomain) {
				sig.Evidence = append(sig.Evidence, fmt.Sprintf("PTR %s: no reverse record", ip))
			} else {
				sig.Evidence = append(sig.Evidence, fmt.Sprintf("PTR %s lookup failed: %v", ip, err))
			}
			continue
		}
		for _, ptr := range ptrs {
			name := strings.ToLower(strings.TrimSuffix(ptr, "."))
			if m, ok := matchPattern(domesticPTRPatterns, name); ok {
				sig.Evidence = append(sig.Evidence, fmt.Sprintf("PTR %s → %s identifies %s (Russian hosting)", ip, name, m.provider))
				if m.confidence > domestic.confidence {
					domestic = m
				}
				break
			}
			if m, ok := matchPattern(foreignProviderPatterns, name); ok {
				sig.Evidence = append(sig.Evidence, fmt.Sprintf("PTR %s → %s identifies %s (foreign)", ip, name, m.provider))
				if m.confidence > foreign.confidence {
					foreign = m
				}
				break
			}
		}
	}

	switch {
	case domestic.provider != "":
		sig.Status = StatusDomestic
		sig.Confidence = domestic.confidence
		sig.ProviderGuess = domestic.provider
	case foreign.provider != "":
		sig.Status = StatusForeign
		sig.Confidence = foreign.confidence
		sig.ProviderGuess = foreign.provider
	}
}

// classifyNS matches the authoritative nameservers against the domestic
// table. The NS verdict only takes over when it beats whatever the PTR stage
// established; otherwise it stays evidence.
func (c *Checker) classifyNS(ctx context.Context, domain string, sig *DnsSignal) {
	nameservers, err := c.dns.QueryDNS(ctx, "NS", domain)
	if err != nil {
		if !errors.Is(err, dnsclient.ErrNXDomain) {
			sig.Evidence = append(sig.Evidence, fmt.Sprintf("NS lookup failed: %v", err))
		}
		return
	}

	for _, ns := range nameservers {
		name := strings.ToLower(strings.TrimSuffix(ns, "."))
		m, ok := matchPattern(domesticNSPatterns, name)
		if !ok {
			continue
		}
		sig.Evidence = append(sig.Evidence, fmt.Sprintf("NS %s belongs to %s (Russian DNS hosting)", name, m.provider))
		if m.confidence > sig.Confidence {
			sig.Status = StatusDomestic
			sig.Confidence = m.confidence
			if sig.ProviderGuess == "" {
				sig.ProviderGuess = m.provider
			}
		}
	}
}
