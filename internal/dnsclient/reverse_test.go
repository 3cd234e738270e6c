// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package dnsclient

import "testing"

func TestReverseName(t *testing.T) {
	tests := []struct {
		ip   string
		want string
	}{
		{"92.136.123.32", "32.123.136.92.in-addr.arpa"},
		{"8.8.8.8", "8.8.8.8.in-addr.arpa"},
		{"2001:db8::1", "1.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.8.b.d.0.1.0.0.2.ip6.arpa"},
		{"2a00:1148:0:0:0:0:0:2", "2.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.8.4.1.1.0.0.a.2.ip6.arpa"},
		{"not-an-ip", ""},
		{"1.2.3", ""},
		{"1:2", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			got := ReverseName(tt.ip)
			if got != tt.want {
				t.Errorf("ReverseName(%q) = %q, want %q", tt.ip, got, tt.want)
			}
		})
	}
}

func TestExpandIPv6(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2001:db8::1", "2001:0db8:0000:0000:0000:0000:0000:0001"},
		{"::1", "0000:0000:0000:0000:0000:0000:0000:0001"},
		{"fe80::", "fe80:0000:0000:0000:0000:0000:0000:0000"},
		{"1:2:3:4:5:6:7:8", "0001:0002:0003:0004:0005:0006:0007:0008"},
		{"1:2:3", ""},
	}
	for _, tt := range tests {
		if got := expandIPv6(tt.in); got != tt.want {
			t.Errorf("expandIPv6(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
