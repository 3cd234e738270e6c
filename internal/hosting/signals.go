// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package hosting

// Status classifies where a site's serving infrastructure lives relative to
// the Russian jurisdiction.
type Status string

const (
	StatusDomestic Status = "domestic"
	StatusForeign  Status = "foreign"
	StatusUnknown  Status = "unknown"
)

// DnsSignal is the DNS-layer verdict: addresses, reverse-DNS and nameserver
// fingerprints. Built once per check and never mutated afterwards.
type DnsSignal struct {
	Status        Status   `json:"status"`
	Confidence    float64  `json:"confidence"`
	ResolvedIPs   []string `json:"ips"`
	ProviderGuess string   `json:"providerGuess,omitempty"`
	Evidence      []string `json:"evidence"`
}

// WhoisSignal is the registrar-layer verdict. Used is false when the lookup
// was skipped because DNS was already confident.
type WhoisSignal struct {
	Used       bool     `json:"used"`
	Status     Status   `json:"status"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`
	Note       string   `json:"note,omitempty"`
}

// PlatformSignal records an HTTP-visible indirection: DNS points one way but
// the content is actually rendered by a hosting platform somewhere else.
type PlatformSignal struct {
	Detected         bool     `json:"detected"`
	Provider         string   `json:"provider,omitempty"`
	Confidence       float64  `json:"confidence"`
	Evidence         []string `json:"evidence"`
	ActualHostingURL string   `json:"actualHostingUrl,omitempty"`
}

// HostingCheckResult is the published artifact of one check. DnsStatus and
// DnsProviderGuess keep the raw DNS opinion visible even when the final
// status was decided by another layer.
type HostingCheckResult struct {
	Status           Status          `json:"status"`
	Confidence       float64         `json:"confidence"`
	ResolvedIPs      []string        `json:"ips"`
	ProviderGuess    string          `json:"providerGuess,omitempty"`
	Evidence         []string        `json:"evidence"`
	Whois            WhoisSignal     `json:"whois"`
	Platform         *PlatformSignal `json:"platform,omitempty"`
	DnsStatus        Status          `json:"dnsStatus"`
	DnsProviderGuess string          `json:"dnsProviderGuess,omitempty"`
}
