// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package dnsclient

import (
	"errors"
	"testing"
)

func TestParseDohResponse(t *testing.T) {
	t.Run("answers", func(t *testing.T) {
		body := []byte(`{"Status":0,"Answer":[
			{"name":"example.ru.","type":1,"TTL":300,"data":"92.136.123.32"},
			{"name":"example.ru.","type":1,"TTL":300,"data":"92.136.123.33"},
			{"name":"example.ru.","type":1,"TTL":300,"data":"92.136.123.32"}]}`)
		records, err := parseDohResponse(body)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 deduplicated records, got %d: %v", len(records), records)
		}
		if records[0] != "92.136.123.32" || records[1] != "92.136.123.33" {
			t.Errorf("unexpected records: %v", records)
		}
	})

	t.Run("nxdomain", func(t *testing.T) {
		body := []byte(`{"Status":3}`)
		_, err := parseDohResponse(body)
		if !errors.Is(err, ErrNXDomain) {
			t.Errorf("expected ErrNXDomain, got %v", err)
		}
	})

	t.Run("servfail", func(t *testing.T) {
		body := []byte(`{"Status":2}`)
		if _, err := parseDohResponse(body); err == nil {
			t.Error("expected error for SERVFAIL")
		}
	})

	t.Run("no answer section", func(t *testing.T) {
		records, err := parseDohResponse([]byte(`{"Status":0}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected no records, got %v", records)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := parseDohResponse([]byte("not json")); err == nil {
			t.Error("expected error for malformed body")
		}
	})
}

func TestDnsTypeFromString(t *testing.T) {
	for _, rt := range []string{"A", "a", "AAAA", "NS", "ns", "CNAME", "PTR"} {
		if _, err := dnsTypeFromString(rt); err != nil {
			t.Errorf("dnsTypeFromString(%q) unexpected error: %v", rt, err)
		}
	}
	if _, err := dnsTypeFromString("ANY"); err == nil {
		t.Error("expected error for unsupported type")
	}
}
