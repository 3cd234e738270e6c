// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package registry checks organizations against the Roskomnadzor registry of
// personal-data operators. The registry has no API: the client drives the
// public search form the way a browser would, session cookies included.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
)

// DefaultBaseURL is the public operators-list search form.
const DefaultBaseURL = "https://pd.rkn.gov.ru/operators-registry/operators-list/"

// ErrBotProtected is returned when the registry serves its interactive
// verification page instead of results. There is no way through it
// server-side, the caller must retry later.
var ErrBotProtected = errors.New("registry requires interactive verification")

const (
	registryTimeout = 15 * time.Second
	maxRegistryBody = 2 << 20

	// The registry rejects non-browser clients, so the session presents
	// itself the way a desktop browser would.
	registryUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

var (
	regNumberRe = regexp.MustCompile(`(\d{2}-\d+-\d+)`)
	regDateRe   = regexp.MustCompile(`(\d{2}\.\d{2}\.\d{4})`)
)

// OperatorInfo is one registry entry. Found is false when the INN is valid
// but absent from the registry, which for an organization processing
// personal data means it has not filed the mandatory notification.
type OperatorInfo struct {
	Found              bool   `json:"found"`
	INN                string `json:"inn"`
	RegistrationNumber string `json:"registrationNumber,omitempty"`
	Name               string `json:"name,omitempty"`
	RegistrationDate   string `json:"registrationDate,omitempty"`
	SourceURL          string `json:"sourceUrl,omitempty"`
}

// Client drives the registry search form. Safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
}

// New builds a registry client. An empty baseURL selects the production
// registry; a nil httpClient gets a cookie-keeping default, which the
// registry requires between the form load and the search post.
func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		jar, _ := cookiejar.New(nil)
		httpClient = &http.Client{Timeout: registryTimeout, Jar: jar}
	}
	return &Client{http: httpClient, baseURL: baseURL}
}

// ValidateINN checks the taxpayer number shape: 10 digits for organizations,
// 12 for sole proprietors.
func ValidateINN(inn string) error {
	inn = normalizeINN(inn)
	if inn == "" {
		return errors.New("empty INN")
	}
	for _, r := range inn {
		if r < '0' || r > '9' {
			return fmt.Errorf("INN %q contains non-digit characters", inn)
		}
	}
	if len(inn) != 10 && len(inn) != 12 {
		return fmt.Errorf("INN must be 10 or 12 digits, got %d", len(inn))
	}
	return nil
}

func normalizeINN(inn string) string {
	return strings.ReplaceAll(strings.TrimSpace(inn), " ", "")
}

// CheckOperator looks the INN up in the registry. The first GET establishes
// the session and reveals bot protection before the search is even tried.
func (c *Client) CheckOperator(ctx context.Context, inn string) (*OperatorInfo, error) {
	inn = normalizeINN(inn)
	if err := ValidateINN(inn); err != nil {
		return nil, err
	}

	page, err := c.fetch(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, fmt.Errorf("loading registry form: %w", err)
	}
	if isBotProtected(page) {
		return nil, ErrBotProtected
	}

	form := url.Values{}
	form.Set("inn", inn)
	form.Set("name", "")
	form.Set("region", "")
	form.Set("action", "search")

	page, err = c.fetch(ctx, http.MethodPost, form)
	if err != nil {
		return nil, fmt.Errorf("searching registry: %w", err)
	}
	if isBotProtected(page) {
		return nil, ErrBotProtected
	}

	info := &OperatorInfo{INN: inn, SourceURL: c.baseURL}

	pageLower := strings.ToLower(page)
	if strings.Contains(page, "Найдено: 0") ||
		strings.Contains(pageLower, "не найдено") ||
		strings.Contains(pageLower, "нет данных") {
		return info, nil
	}

	parseResultTable(page, info)
	if info.Found {
		fillFromText(page, info)
	}
	return info, nil
}

func (c *Client) fetch(ctx context.Context, method string, form url.Values) (string, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", registryUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en;q=0.8")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("registry returned HTTP %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRegistryBody))
	if err != nil {
		return "", err
	}
	return decodeBody(resp, raw), nil
}

// decodeBody converts legacy windows-1251 responses to UTF-8 so the Russian
// status markers match. The registry served cp1251 for years and pages of
// that vintage still surface behind its caches.
func decodeBody(resp *http.Response, raw []byte) string {
	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if strings.Contains(contentType, "windows-1251") || strings.Contains(contentType, "cp1251") {
		if decoded, err := charmap.Windows1251.NewDecoder().Bytes(raw); err == nil {
			return string(decoded)
		}
	}
	return string(raw)
}

func isBotProtected(page string) bool {
	return strings.Contains(page, "Проверка безопасности") ||
		strings.Contains(strings.ToLower(page), "captcha")
}

// parseResultTable walks the first results table: the header row is skipped
// and the first data row carries the registration number and the operator
// name in its first two cells.
func parseResultTable(page string, info *OperatorInfo) {
	tokenizer := html.NewTokenizer(strings.NewReader(page))
	var (
		inTable, inRow, inCell bool
		rowIndex               int
		cells                  []string
		cell                   strings.Builder
	)
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			return
		}
		switch tt {
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "table":
				inTable = true
				rowIndex = -1
			case "tr":
				if inTable {
					rowIndex++
					cells = cells[:0]
					inRow = true
				}
			case "td", "th":
				if inRow {
					inCell = true
					cell.Reset()
				}
			}
		case html.TextToken:
			if inCell {
				cell.Write(tokenizer.Text())
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "td", "th":
				if inCell {
					cells = append(cells, strings.TrimSpace(cell.String()))
					inCell = false
				}
			case "tr":
				if inRow && rowIndex >= 1 && len(cells) >= 2 {
					info.Found = true
					info.RegistrationNumber = cells[0]
					info.Name = cells[1]
					return
				}
				inRow = false
			case "table":
				inTable = false
			}
		}
	}
}

// fillFromText backfills fields the table cells did not yield from the raw
// page, the way the registry renders them outside the table on some skins.
func fillFromText(page string, info *OperatorInfo) {
	if info.RegistrationNumber == "" {
		if m := regNumberRe.FindStringSubmatch(page); m != nil {
			info.RegistrationNumber = m[1]
		}
	}
	if info.RegistrationDate == "" {
		if m := regDateRe.FindStringSubmatch(page); m != nil {
			info.RegistrationDate = m[1]
		}
	}
}
