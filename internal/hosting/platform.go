// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under AGPL-3.0 — See LICENSE for terms.
// Analysis intelligence — also maintained under separate proprietary license.
package hosting

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"hostorigin/internal/dnsclient"
)

const (
	// maxBodyBytes bounds the HTML scan. Builder fingerprints live in the
	// head and the first screens of markup, so 256 KiB is plenty.
	maxBodyBytes = 256 * 1024
	// maxScriptOrigins bounds how many external script origins are tested.
	maxScriptOrigins = 10
)

// fingerprintPlatform issues one GET without following redirects and scans
// status, headers and markup for platform indirections: the DNS answer may
// point at a Russian reverse proxy while the actual rendering happens on a
// site builder abroad. Refuses to touch private or reserved address space.
func (c *Checker) fingerprintPlatform(ctx context.Context, domain string) PlatformSignal {
	sig := PlatformSignal{}

	if dnsclient.IsPrivateHost(domain) {
		sig.Evidence = append(sig.Evidence, fmt.Sprintf("HTTP scan refused: %s is a private or local address", domain))
		return sig
	}
	if addrs, err := c.lookupHost(domain); err == nil {
		for _, addr := range addrs {
			if dnsclient.IsPrivateIP(addr) {
				sig.Evidence = append(sig.Evidence, fmt.Sprintf("HTTP scan refused: %s resolves to private address %s", domain, addr))
				return sig
			}
		}
	}
	// A failed pre-resolution falls through: the GET below surfaces its
	// own error as evidence.

	pageURL := "https://" + domain + "/"
	resp, err := c.http.Get(ctx, pageURL)
	if err != nil {
		sig.Evidence = append(sig.Evidence, fmt.Sprintf("HTTP fetch of %s failed: %v", pageURL, err))
		return sig
	}

	for _, hf := range headerFingerprints {
		if resp.Header.Get(hf.header) != "" {
			sig.Evidence = append(sig.Evidence, fmt.Sprintf("response header %s present (%s edge)", hf.header, hf.provider))
		}
	}
	if server := resp.Header.Get("Server"); server != "" {
		sig.Evidence = append(sig.Evidence, "Server: "+server)
	}

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		location := resp.Header.Get("Location")
		resp.Body.Close()
		if location == "" {
			sig.Evidence = append(sig.Evidence, fmt.Sprintf("HTTP %d redirect without Location header", resp.StatusCode))
			return sig
		}
		sig.Evidence = append(sig.Evidence, fmt.Sprintf("HTTP %d redirect to %s", resp.StatusCode, location))
		if m, ok := matchPattern(platformPatterns, strings.ToLower(location)); ok {
			sig.Detected = true
			sig.Provider = m.provider
			sig.Confidence = m.confidence
			sig.ActualHostingURL = location
			sig.Evidence = append(sig.Evidence, fmt.Sprintf("redirect target is served by %s", m.provider))
		}
		return sig
	}

	body, err := c.http.ReadBody(resp, maxBodyBytes)
	if err != nil {
		sig.Evidence = append(sig.Evidence, fmt.Sprintf("reading response body failed: %v", err))
		return sig
	}

	scanMarkup(string(body), domain, &sig)
	return sig
}

// pageRefs is everything one tokenizer pass pulls out of the markup, in
// document order where order matters.
type pageRefs struct {
	iframes     []string
	canonical   string
	metaRefresh string
	scripts     []string
	generator   string
}

// scanMarkup evaluates the extracted references strongest first: embedding
// and canonical indirections prove where the content lives, script origins
// and generator tags only hint at the toolchain. A weaker match never
// overrides an earlier stronger one.
func scanMarkup(body, domain string, sig *PlatformSignal) {
	refs := extractPageRefs(body, domain)
	scan := platformScan{sig: sig}

	for _, iframe := range refs.iframes {
		scan.apply("embedded iframe", iframe, true)
	}
	if refs.canonical != "" {
		scan.apply("canonical link", refs.canonical, true)
	}
	if refs.metaRefresh != "" {
		scan.apply("meta refresh", refs.metaRefresh, true)
	}
	for _, src := range refs.scripts {
		scan.apply("script origin", src, false)
	}
	if refs.generator != "" {
		scan.apply("generator meta", refs.generator, false)
	}

	bodyLower := strings.ToLower(body)
	for _, m := range platformMarkers {
		if m.re.MatchString(bodyLower) {
			sig.Evidence = append(sig.Evidence, fmt.Sprintf("page contains %s marker", m.provider))
			scan.record(m, false, "")
		}
	}
}

// platformScan tracks whether the current verdict came from a structural
// match, which weaker evidence must not displace.
type platformScan struct {
	sig        *PlatformSignal
	structural bool
}

func (s *platformScan) apply(source, value string, structural bool) {
	m, ok := matchPattern(platformPatterns, strings.ToLower(value))
	if !ok {
		return
	}
	s.sig.Evidence = append(s.sig.Evidence, fmt.Sprintf("%s %s points at %s", source, value, m.provider))
	url := ""
	if structural && strings.HasPrefix(strings.ToLower(value), "http") {
		url = value
	}
	s.record(m, structural, url)
}

func (s *platformScan) record(m providerPattern, structural bool, url string) {
	replace := !s.sig.Detected ||
		(structural && !s.structural) ||
		(structural == s.structural && m.confidence > s.sig.Confidence)
	if !replace {
		return
	}
	s.sig.Detected = true
	s.sig.Provider = m.provider
	s.sig.Confidence = m.confidence
	s.structural = s.structural || structural
	if url != "" {
		s.sig.ActualHostingURL = url
	}
}

func extractPageRefs(body, domain string) pageRefs {
	refs := pageRefs{}
	tokenizer := html.NewTokenizer(strings.NewReader(body))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			// io.EOF for well-formed input, truncated markup for the
			// rest. Either way keep what was collected.
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		tn, hasAttr := tokenizer.TagName()
		if !hasAttr {
			continue
		}
		attrs := tagAttrs(tokenizer)
		switch string(tn) {
		case "iframe":
			if src := normalizeRef(attrs["src"], domain); src != "" {
				refs.iframes = append(refs.iframes, src)
			}
		case "link":
			if strings.EqualFold(attrs["rel"], "canonical") && refs.canonical == "" {
				refs.canonical = normalizeRef(attrs["href"], domain)
			}
		case "meta":
			if strings.EqualFold(attrs["http-equiv"], "refresh") && refs.metaRefresh == "" {
				refs.metaRefresh = metaRefreshTarget(attrs["content"])
			}
			if strings.EqualFold(attrs["name"], "generator") && refs.generator == "" {
				refs.generator = strings.TrimSpace(attrs["content"])
			}
		case "script":
			if len(refs.scripts) >= maxScriptOrigins {
				continue
			}
			if src := normalizeRef(attrs["src"], domain); src != "" {
				refs.scripts = append(refs.scripts, src)
			}
		}
	}
	return refs
}

func tagAttrs(tokenizer *html.Tokenizer) map[string]string {
	attrs := make(map[string]string)
	for {
		key, val, more := tokenizer.TagAttr()
		attrs[strings.ToLower(string(key))] = strings.TrimSpace(string(val))
		if !more {
			break
		}
	}
	return attrs
}

func normalizeRef(ref, domain string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}
	if strings.HasPrefix(ref, "/") {
		return fmt.Sprintf("https://%s%s", domain, ref)
	}
	return ref
}

// metaRefreshTarget pulls the url= part out of a refresh directive like
// "0; url=https://example.com/".
func metaRefreshTarget(content string) string {
	for _, part := range strings.Split(content, ";") {
		part = strings.TrimSpace(part)
		if len(part) >= 4 && strings.EqualFold(part[:4], "url=") {
			return strings.Trim(strings.TrimSpace(part[4:]), `'"`)
		}
	}
	return ""
}
