// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package dnsclient

import (
	"fmt"
	"strings"
)

// ReverseName builds the in-addr.arpa / ip6.arpa name for a PTR query.
// Returns "" for anything that is not a literal IP address.
func ReverseName(ip string) string {
	if strings.Contains(ip, ":") {
		reversed := reverseIPv6(ip)
		if reversed == "" {
			return ""
		}
		return reversed + ".ip6.arpa"
	}
	reversed := reverseIPv4(ip)
	if reversed == "" {
		return ""
	}
	return reversed + ".in-addr.arpa"
}

func reverseIPv4(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return ""
	}
	return fmt.Sprintf("%s.%s.%s.%s", parts[3], parts[2], parts[1], parts[0])
}

func reverseIPv6(ip string) string {
	ip = strings.ToLower(ip)

	parts := strings.Split(ip, ":")
	if len(parts) < 3 {
		return ""
	}

	full := expandIPv6(ip)
	if full == "" {
		return ""
	}

	nibbles := strings.ReplaceAll(full, ":", "")
	if len(nibbles) != 32 {
		return ""
	}

	reversed := make([]byte, 63)
	for i := 0; i < 32; i++ {
		reversed[62-i*2] = nibbles[i]
		if i < 31 {
			reversed[62-i*2-1] = '.'
		}
	}
	return string(reversed)
}

func expandIPv6(ip string) string {
	if strings.Contains(ip, "::") {
		halves := strings.SplitN(ip, "::", 2)
		left := filterEmpty(strings.Split(halves[0], ":"))
		right := filterEmpty(strings.Split(halves[1], ":"))
		missing := 8 - len(left) - len(right)
		if missing < 0 {
			return ""
		}
		var full []string
		full = append(full, left...)
		for i := 0; i < missing; i++ {
			full = append(full, "0000")
		}
		full = append(full, right...)
		for i := range full {
			full[i] = padHex(full[i])
		}
		return strings.Join(full, ":")
	}

	parts := strings.Split(ip, ":")
	if len(parts) != 8 {
		return ""
	}
	for i := range parts {
		parts[i] = padHex(parts[i])
	}
	return strings.Join(parts, ":")
}

func padHex(s string) string {
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}

func filterEmpty(ss []string) []string {
	var result []string
	for _, s := range ss {
		if s != "" {
			result = append(result, s)
		}
	}
	return result
}
