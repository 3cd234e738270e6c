// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under AGPL-3.0 — See LICENSE for terms.
package dnsclient_test

import (
	"testing"

	"hostorigin/internal/dnsclient"
)

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip      string
		private bool
	}{
		{"10.0.0.1", true},
		{"10.255.255.255", true},
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"192.168.0.1", true},
		{"192.168.1.100", true},
		{"127.0.0.1", true},
		{"127.0.0.2", true},
		{"169.254.1.1", true},
		{"100.64.0.1", true},
		{"100.127.255.255", true},
		{"192.0.0.1", true},
		{"198.18.0.1", true},
		{"198.19.255.255", true},
		{"0.0.0.0", true},
		{"::1", true},
		{"fe80::1", true},
		{"fd00::1", true},
		{"8.8.8.8", false},
		{"1.1.1.1", false},
		{"93.184.216.34", false},
		{"172.32.0.1", false},
		{"100.128.0.1", false},
		{"198.20.0.1", false},
		{"192.0.1.1", false},
		{"2a00:1148::1", false},
		{"invalid", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			got := dnsclient.IsPrivateIP(tt.ip)
			if got != tt.private {
				t.Errorf("IsPrivateIP(%q) = %v, want %v", tt.ip, got, tt.private)
			}
		})
	}
}

func TestIsPrivateHost(t *testing.T) {
	tests := []struct {
		host    string
		private bool
	}{
		{"localhost", true},
		{"LOCALHOST", true},
		{"app.localhost", true},
		{"printer.local", true},
		{"127.0.0.1", true},
		{"[::1]", true},
		{"10.1.2.3", true},
		{"192.168.0.10", true},
		{"", true},
		{"example.ru", false},
		{"timeweb.ru", false},
		{"8.8.8.8", false},
		{"local.example.com", false},
		{"mylocalhost.ru", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			got := dnsclient.IsPrivateHost(tt.host)
			if got != tt.private {
				t.Errorf("IsPrivateHost(%q) = %v, want %v", tt.host, got, tt.private)
			}
		})
	}
}
