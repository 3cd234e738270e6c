// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under AGPL-3.0 — See LICENSE for terms.
// Analysis intelligence — also maintained under separate proprietary license.
package hosting

import "fmt"

const platformEvidenceSeparator = "--- HTTP platform analysis ---"

// arbitrate merges the three collector verdicts into one result. Precedence
// is platform over WHOIS over DNS: a platform detection proves where content
// is actually rendered regardless of what the DNS chain looks like, and WHOIS
// only speaks when it is more confident than DNS. The raw DNS opinion stays
// visible in DnsStatus and DnsProviderGuess.
func arbitrate(dns DnsSignal, whois WhoisSignal, platform *PlatformSignal) *HostingCheckResult {
	result := &HostingCheckResult{
		Status:           dns.Status,
		Confidence:       dns.Confidence,
		ResolvedIPs:      dns.ResolvedIPs,
		ProviderGuess:    dns.ProviderGuess,
		Evidence:         dns.Evidence,
		Whois:            whois,
		Platform:         platform,
		DnsStatus:        dns.Status,
		DnsProviderGuess: dns.ProviderGuess,
	}

	switch {
	case platform != nil && platform.Detected:
		status := StatusForeign
		if domesticPlatformAllowlist[platform.Provider] {
			status = StatusDomestic
		}
		result.Status = status
		result.Confidence = platform.Confidence
		result.ProviderGuess = platform.Provider

		evidence := make([]string, 0, len(dns.Evidence)+len(platform.Evidence)+4)
		evidence = append(evidence, dns.Evidence...)
		evidence = append(evidence, platformEvidenceSeparator)
		evidence = append(evidence, platform.Evidence...)
		if dns.Status == StatusDomestic && status == StatusForeign {
			evidence = append(evidence, fmt.Sprintf(
				"Conflict: DNS points at Russian infrastructure (%s) but content is served by foreign platform %s",
				orUnidentified(dns.ProviderGuess), platform.Provider))
		}
		if platform.ActualHostingURL != "" {
			evidence = append(evidence, "Actual hosting: "+platform.ActualHostingURL)
		}
		if whois.Used {
			evidence = append(evidence, whois.Evidence...)
		}
		result.Evidence = evidence

	case whois.Used && whois.Status != StatusUnknown && whois.Confidence > dns.Confidence:
		result.Status = whois.Status
		result.Confidence = whois.Confidence
		evidence := make([]string, 0, len(dns.Evidence)+len(whois.Evidence))
		evidence = append(evidence, dns.Evidence...)
		evidence = append(evidence, whois.Evidence...)
		result.Evidence = evidence
	}

	return result
}

func orUnidentified(provider string) string {
	if provider == "" {
		return "unidentified provider"
	}
	return provider
}
