package hosting

import (
	"context"
	"errors"
	"strings"
	"testing"

	"hostorigin/internal/dnsclient"
)

// fakeResolver answers from canned maps keyed by "TYPE name". Missing keys
// come back empty without error, like a clean NOERROR answer.
type fakeResolver struct {
	answers map[string][]string
	errs    map[string]error
}

func (f *fakeResolver) QueryDNS(ctx context.Context, recordType, domain string) ([]string, error) {
	key := recordType + " " + domain
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	return f.answers[key], nil
}

func containsEvidence(evidence []string, substr string) bool {
	for _, line := range evidence {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func TestCollectDNSDomesticPTR(t *testing.T) {
	c := &Checker{dns: &fakeResolver{
		answers: map[string][]string{
			"A example.ru":                 {"92.53.96.10"},
			"PTR 10.96.53.92.in-addr.arpa": {"vh123.timeweb.ru."},
			"NS example.ru":                {"ns1.timeweb.ru.", "ns2.timeweb.ru."},
		},
	}}

	sig := c.collectDNS(context.Background(), "example.ru")

	if sig.Status != StatusDomestic {
		t.Errorf("expected domestic, got %s", sig.Status)
	}
	if sig.Confidence != 0.95 {
		t.Errorf("expected confidence 0.95, got %v", sig.Confidence)
	}
	if sig.ProviderGuess != "Timeweb" {
		t.Errorf("expected provider Timeweb, got %q", sig.ProviderGuess)
	}
	if len(sig.ResolvedIPs) != 1 || sig.ResolvedIPs[0] != "92.53.96.10" {
		t.Errorf("unexpected resolved IPs: %v", sig.ResolvedIPs)
	}
	if !containsEvidence(sig.Evidence, "Russian hosting") {
		t.Errorf("expected PTR evidence, got %v", sig.Evidence)
	}
}

func TestCollectDNSForeignPTR(t *testing.T) {
	c := &Checker{dns: &fakeResolver{
		answers: map[string][]string{
			"A example.com":                {"3.120.10.5"},
			"PTR 5.10.120.3.in-addr.arpa":  {"ec2-3-120-10-5.eu-central-1.compute.amazonaws.com."},
		},
	}}

	sig := c.collectDNS(context.Background(), "example.com")

	if sig.Status != StatusForeign {
		t.Errorf("expected foreign, got %s", sig.Status)
	}
	if sig.Confidence != 0.85 {
		t.Errorf("expected confidence 0.85, got %v", sig.Confidence)
	}
	if sig.ProviderGuess != "Amazon AWS" {
		t.Errorf("expected provider Amazon AWS, got %q", sig.ProviderGuess)
	}
}

func TestCollectDNSDomesticOutranksForeign(t *testing.T) {
	// Multi-homed: one leg on a Russian provider, one abroad. The domestic
	// leg decides regardless of order or confidence.
	c := &Checker{dns: &fakeResolver{
		answers: map[string][]string{
			"A example.ru":                 {"104.21.8.1", "92.53.96.10"},
			"PTR 1.8.21.104.in-addr.arpa":  {"edge.cloudflare.com."},
			"PTR 10.96.53.92.in-addr.arpa": {"vh123.timeweb.ru."},
		},
	}}

	sig := c.collectDNS(context.Background(), "example.ru")

	if sig.Status != StatusDomestic {
		t.Errorf("expected domestic precedence, got %s", sig.Status)
	}
	if sig.ProviderGuess != "Timeweb" {
		t.Errorf("expected provider Timeweb, got %q", sig.ProviderGuess)
	}
	if !containsEvidence(sig.Evidence, "Cloudflare") {
		t.Errorf("foreign PTR should still be evidence, got %v", sig.Evidence)
	}
}

func TestCollectDNSNSFallback(t *testing.T) {
	c := &Checker{dns: &fakeResolver{
		answers: map[string][]string{
			"A example.ru":  {"203.0.113.10"},
			"NS example.ru": {"ns1.reg.ru.", "ns2.reg.ru."},
		},
		errs: map[string]error{
			"PTR 10.113.0.203.in-addr.arpa": dnsclient.ErrNXDomain,
		},
	}}

	sig := c.collectDNS(context.Background(), "example.ru")

	if sig.Status != StatusDomestic {
		t.Errorf("expected domestic from NS, got %s", sig.Status)
	}
	if sig.Confidence != 0.75 {
		t.Errorf("expected confidence 0.75, got %v", sig.Confidence)
	}
	if sig.ProviderGuess != "REG.RU" {
		t.Errorf("expected provider REG.RU, got %q", sig.ProviderGuess)
	}
	if !containsEvidence(sig.Evidence, "no reverse record") {
		t.Errorf("expected PTR NXDOMAIN evidence, got %v", sig.Evidence)
	}
}

func TestCollectDNSNSDoesNotOverrideStrongerSignal(t *testing.T) {
	c := &Checker{dns: &fakeResolver{
		answers: map[string][]string{
			"A example.ru":                 {"104.21.8.1"},
			"PTR 1.8.21.104.in-addr.arpa":  {"edge.cloudflare.com."},
			"NS example.ru":                {"ns1.reg.ru."},
		},
	}}

	sig := c.collectDNS(context.Background(), "example.ru")

	if sig.Status != StatusForeign {
		t.Errorf("NS must not override a stronger foreign PTR, got %s", sig.Status)
	}
	if sig.Confidence != 0.85 {
		t.Errorf("expected confidence 0.85, got %v", sig.Confidence)
	}
	if !containsEvidence(sig.Evidence, "Russian DNS hosting") {
		t.Errorf("NS match should still be evidence, got %v", sig.Evidence)
	}
}

func TestCollectDNSConfidenceIsMaxNotSum(t *testing.T) {
	c := &Checker{dns: &fakeResolver{
		answers: map[string][]string{
			"A example.ru":                 {"92.53.96.10"},
			"PTR 10.96.53.92.in-addr.arpa": {"vh123.timeweb.ru."},
			"NS example.ru":                {"ns1.timeweb.ru."},
		},
	}}

	sig := c.collectDNS(context.Background(), "example.ru")

	if sig.Confidence != 0.95 {
		t.Errorf("confidence must stay at the strongest single signal, got %v", sig.Confidence)
	}
}

func TestCollectDNSCcTLDLastResort(t *testing.T) {
	c := &Checker{dns: &fakeResolver{
		answers: map[string][]string{
			"A example.ru": {"198.51.100.7"},
		},
	}}

	sig := c.collectDNS(context.Background(), "example.ru")

	if sig.Status != StatusDomestic {
		t.Errorf("expected weak domestic from ccTLD, got %s", sig.Status)
	}
	if sig.Confidence != 0.3 {
		t.Errorf("expected confidence 0.3, got %v", sig.Confidence)
	}
	if !containsEvidence(sig.Evidence, "ccTLD") {
		t.Errorf("expected ccTLD evidence, got %v", sig.Evidence)
	}
}

func TestCollectDNSUnknownWithoutSignals(t *testing.T) {
	c := &Checker{dns: &fakeResolver{
		answers: map[string][]string{
			"A example.com": {"198.51.100.7"},
		},
	}}

	sig := c.collectDNS(context.Background(), "example.com")

	if sig.Status != StatusUnknown {
		t.Errorf("expected unknown, got %s", sig.Status)
	}
	if sig.Confidence != 0 {
		t.Errorf("expected zero confidence, got %v", sig.Confidence)
	}
}

func TestCollectDNSNXDomain(t *testing.T) {
	c := &Checker{dns: &fakeResolver{
		errs: map[string]error{
			"A example.com":    dnsclient.ErrNXDomain,
			"AAAA example.com": dnsclient.ErrNXDomain,
		},
	}}

	sig := c.collectDNS(context.Background(), "example.com")

	if sig.Status != StatusUnknown {
		t.Errorf("expected unknown for NXDOMAIN, got %s", sig.Status)
	}
	if len(sig.ResolvedIPs) != 0 {
		t.Errorf("expected no IPs, got %v", sig.ResolvedIPs)
	}
	if !containsEvidence(sig.Evidence, "NXDOMAIN") {
		t.Errorf("expected NXDOMAIN evidence, got %v", sig.Evidence)
	}
}

func TestCollectDNSFamiliesFailIndependently(t *testing.T) {
	c := &Checker{dns: &fakeResolver{
		answers: map[string][]string{
			"AAAA example.com": {"2a05:d014::1"},
		},
		errs: map[string]error{
			"A example.com": errors.New("read udp 127.0.0.1: i/o timeout"),
		},
	}}

	sig := c.collectDNS(context.Background(), "example.com")

	if len(sig.ResolvedIPs) != 1 || sig.ResolvedIPs[0] != "2a05:d014::1" {
		t.Errorf("AAAA answer should survive A failure, got %v", sig.ResolvedIPs)
	}
	if !containsEvidence(sig.Evidence, "DNS A lookup failed") {
		t.Errorf("expected A failure evidence, got %v", sig.Evidence)
	}
}

func TestCollectDNSFiltersNonAddressAnswers(t *testing.T) {
	c := &Checker{dns: &fakeResolver{
		answers: map[string][]string{
			"A example.com": {"cdn.example-edge.net", "198.51.100.7"},
		},
	}}

	sig := c.collectDNS(context.Background(), "example.com")

	if len(sig.ResolvedIPs) != 1 || sig.ResolvedIPs[0] != "198.51.100.7" {
		t.Errorf("CNAME chain entries must be filtered, got %v", sig.ResolvedIPs)
	}
}

func TestCollectDNSLimitsPTRLookups(t *testing.T) {
	// Only the first three addresses get a reverse lookup; a match on the
	// fourth must never be seen.
	c := &Checker{dns: &fakeResolver{
		answers: map[string][]string{
			"A example.com":                {"198.51.100.1", "198.51.100.2", "198.51.100.3", "92.53.96.10"},
			"PTR 10.96.53.92.in-addr.arpa": {"vh123.timeweb.ru."},
		},
	}}

	sig := c.collectDNS(context.Background(), "example.com")

	if sig.Status != StatusUnknown {
		t.Errorf("PTR beyond the lookup cap must not count, got %s", sig.Status)
	}
	if len(sig.ResolvedIPs) != 4 {
		t.Errorf("all resolved IPs should be reported, got %v", sig.ResolvedIPs)
	}
}
