package hosting

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"hostorigin/internal/dnsclient"
)

const (
	whoisDialTimeout = 5 * time.Second
	whoisReadTimeout = 10 * time.Second
	maxWhoisResponse = 32768
)

var (
	// TCI (.ru/.su/.рф) answers in English key / free-form value lines;
	// gTLD registries use the ICANN layout. Both are folded into the same
	// three fields. The Cyrillic alternatives cover proxied RU output.
	whoisRegistrarRe = regexp.MustCompile(`(?im)^[ \t]*(?:sponsoring[ -])?(?:registrar(?:[ -]name)?|регистратор)[ \t]*:[ \t]*(.+)$`)
	whoisOrgRe       = regexp.MustCompile(`(?im)^[ \t]*(?:registrant[ -])?(?:org(?:anization|anisation)?(?:[ -]name)?|организация)[ \t]*:[ \t]*(.+)$`)
	whoisCountryRe   = regexp.MustCompile(`(?im)^[ \t]*(?:registrant[ -]|admin[ -]|tech[ -])?(?:country(?:/economy)?|страна)[ \t]*:[ \t]*(.+)$`)
)

var whoisRestrictedIndicators = []string{
	"not authorised", "not authorized", "access denied",
	"authorization required", "ip address used to perform",
	"exceeded the established limit", "access restricted",
	"query rate limit exceeded", "too many queries",
}

// whoisServers maps a TLD to the registry WHOIS host queried on port 43.
// TLDs absent from the table are not queried at all. Entries may carry an
// explicit port for non-standard setups.
var whoisServers = map[string]string{
	"ru": "whois.tcinet.ru", "su": "whois.tcinet.ru",
	"xn--p1ai": "whois.tcinet.ru", "moscow": "whois.nic.moscow",
	"com": "whois.verisign-grs.com", "net": "whois.verisign-grs.com",
	"org": "whois.pir.org", "io": "whois.nic.io",
	"dev": "whois.nic.google", "app": "whois.nic.google",
	"page": "whois.nic.google", "co": "whois.nic.co",
	"me": "whois.nic.me", "pro": "whois.nic.pro",
	"info": "whois.afilias.net", "biz": "whois.nic.biz",
	"online": "whois.nic.online", "site": "whois.nic.site",
	"store": "whois.nic.store", "tech": "whois.nic.tech",
	"space": "whois.nic.space", "website": "whois.nic.website",
	"fun": "whois.nic.fun", "club": "whois.nic.club",
}

// domesticRegistrars are lowercase substrings of registrar identifiers handed
// out by the Russian registry accreditations. WHOIS output is free-form, so a
// normalized substring match is the most that can be relied on.
var domesticRegistrars = []struct {
	needle string
	name   string
}{
	{"regru", "REG.RU"},
	{"reg.ru", "REG.RU"},
	{"ru-center", "RU-CENTER"},
	{"rucenter", "RU-CENTER"},
	{"regional network information center", "RU-CENTER"},
	{"beget", "Beget"},
	{"timeweb", "Timeweb"},
	{"r01-ru", "R01"},
	{"r01.ru", "R01"},
	{"webnames", "Webnames"},
	{"regtime", "Regtime"},
	{"salenames", "Salenames"},
	{"domenus", "Domenus"},
	{"101domain-ru", "101domain.RU"},
}

type whoisRecord struct {
	registrar string
	org       string
	country   string
}

// collectWhois queries the registry WHOIS for the domain's registrable parent
// and classifies registrar and country fields. It only runs when DNS came
// back inconclusive, and like the other collectors it never fails: every
// outcome is a signal with evidence.
func (c *Checker) collectWhois(ctx context.Context, domain string) WhoisSignal {
	sig := WhoisSignal{Used: true, Status: StatusUnknown}

	lookupDomain := domain
	if registrable, err := dnsclient.RegistrableDomain(domain); err == nil {
		lookupDomain = registrable
	}

	tld := dnsclient.GetTLD(lookupDomain)
	server, ok := c.whoisServers[tld]
	if !ok {
		sig.Evidence = append(sig.Evidence, fmt.Sprintf("WHOIS: no registry server known for .%s, lookup skipped", tld))
		sig.Note = "manual verification recommended"
		return sig
	}

	output, err := whoisQuery(ctx, lookupDomain, server)
	if err != nil {
		sig.Evidence = append(sig.Evidence, fmt.Sprintf("WHOIS query to %s failed: %v", server, err))
		sig.Note = "manual verification recommended"
		return sig
	}

	if isWhoisRestricted(output) {
		sig.Evidence = append(sig.Evidence, fmt.Sprintf("WHOIS response from %s looks rate-limited or restricted", server))
		sig.Note = "manual verification recommended"
		return sig
	}

	classifyWhois(parseWhois(output), &sig)
	return sig
}

// whoisQuery speaks the port-43 protocol: connect, send the bare domain, read
// until EOF or the size cap. The response lives only inside this call.
func whoisQuery(ctx context.Context, domain, server string) (string, error) {
	addr := server
	if _, _, err := net.SplitHostPort(server); err != nil {
		addr = net.JoinHostPort(server, "43")
	}

	dialer := net.Dialer{Timeout: whoisDialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(whoisReadTimeout))

	if _, err := conn.Write([]byte(domain + "\r\n")); err != nil {
		return "", err
	}

	var buf [8192]byte
	var response []byte
	for {
		n, err := conn.Read(buf[:])
		if n > 0 {
			response = append(response, buf[:n]...)
		}
		if err != nil {
			break
		}
		if len(response) > maxWhoisResponse {
			break
		}
	}

	return string(response), nil
}

func isWhoisRestricted(output string) bool {
	if len(strings.TrimSpace(output)) < 50 {
		return true
	}
	outputLower := strings.ToLower(output)
	for _, indicator := range whoisRestrictedIndicators {
		if strings.Contains(outputLower, indicator) {
			return true
		}
	}
	return false
}

func parseWhois(output string) whoisRecord {
	rec := whoisRecord{}
	if m := whoisRegistrarRe.FindStringSubmatch(output); m != nil {
		rec.registrar = cleanWhoisValue(m[1])
	}
	if m := whoisOrgRe.FindStringSubmatch(output); m != nil {
		rec.org = cleanWhoisValue(m[1])
	}
	if m := whoisCountryRe.FindStringSubmatch(output); m != nil {
		rec.country = cleanWhoisValue(m[1])
	}
	return rec
}

func cleanWhoisValue(val string) string {
	val = strings.TrimSpace(val)
	lower := strings.ToLower(val)
	if strings.HasPrefix(lower, "http") || lower == "not available" || strings.Contains(lower, "redacted") {
		return ""
	}
	return val
}

// classifyWhois turns the parsed fields into a verdict. A domestic country
// code is the strongest claim, then a registrar from the Russian
// accreditation list, then any other explicit country.
func classifyWhois(rec whoisRecord, sig *WhoisSignal) {
	if rec.registrar != "" {
		sig.Evidence = append(sig.Evidence, "WHOIS registrar: "+rec.registrar)
	}
	if rec.org != "" {
		sig.Evidence = append(sig.Evidence, "WHOIS registrant org: "+rec.org)
	}
	if rec.country != "" {
		sig.Evidence = append(sig.Evidence, "WHOIS country: "+rec.country)
	}

	registrarMatch := ""
	registrarLower := strings.ToLower(rec.registrar)
	for _, reg := range domesticRegistrars {
		if strings.Contains(registrarLower, reg.needle) {
			registrarMatch = reg.name
			break
		}
	}

	switch {
	case isDomesticCountry(rec.country):
		sig.Status = StatusDomestic
		sig.Confidence = 0.85
		sig.Evidence = append(sig.Evidence, "registrant country is Russia")
	case registrarMatch != "":
		sig.Status = StatusDomestic
		sig.Confidence = 0.75
		sig.Evidence = append(sig.Evidence, fmt.Sprintf("registrar %s is accredited in Russia", registrarMatch))
	case rec.country != "":
		sig.Status = StatusForeign
		sig.Confidence = 0.65
		sig.Evidence = append(sig.Evidence, fmt.Sprintf("registrant country %s is outside Russia", rec.country))
	default:
		sig.Evidence = append(sig.Evidence, "WHOIS returned no usable registrar or country fields")
	}

	if sig.Confidence < 0.6 {
		sig.Note = "manual verification recommended"
	}
}

func isDomesticCountry(country string) bool {
	if country == "" {
		return false
	}
	upper := strings.ToUpper(strings.TrimSpace(country))
	return upper == "RU" || strings.Contains(upper, "RUSSIA") || strings.Contains(upper, "РОССИЯ")
}
