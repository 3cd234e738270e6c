// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

const registryFormPage = `<html><body><form action="?" method="post">
<input name="inn"><input name="name"><button>Найти</button></form></body></html>`

const registryFoundPage = `<html><body><p>Найдено: 1</p>
<table>
<tr><th>Регистрационный номер</th><th>Наименование оператора</th></tr>
<tr><td>77-12-345678</td><td>ООО "Пример"</td></tr>
</table>
<p>Дата регистрации: 01.02.2024</p>
</body></html>`

const registryEmptyPage = `<html><body><p>Найдено: 0</p></body></html>`

const registryCaptchaPage = `<html><body><h1>Проверка безопасности</h1>
<p>Подтвердите, что вы не робот.</p></body></html>`

func newRegistryServer(t *testing.T, searchPage string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(registryFormPage))
			return
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("bad search form: %v", err)
		}
		if got := r.PostFormValue("action"); got != "search" {
			t.Errorf("expected action=search, got %q", got)
		}
		w.Write([]byte(searchPage))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestValidateINN(t *testing.T) {
	cases := []struct {
		name    string
		inn     string
		wantErr bool
	}{
		{"organization", "7707083893", false},
		{"sole proprietor", "770708389312", false},
		{"spaces stripped", " 7707 083 893 ", false},
		{"empty", "", true},
		{"letters", "77070838AB", true},
		{"too short", "12345", true},
		{"eleven digits", "77070838931", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateINN(tc.inn)
			if tc.wantErr && err == nil {
				t.Errorf("expected error for %q, got none", tc.inn)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("expected %q to validate, got %v", tc.inn, err)
			}
		})
	}
}

func TestCheckOperatorFound(t *testing.T) {
	server := newRegistryServer(t, registryFoundPage)
	client := New(server.URL, server.Client())

	info, err := client.CheckOperator(context.Background(), "7707083893")
	if err != nil {
		t.Fatalf("expected lookup to succeed, got %v", err)
	}
	if !info.Found {
		t.Fatal("expected operator to be found")
	}
	if info.RegistrationNumber != "77-12-345678" {
		t.Errorf("expected registration number 77-12-345678, got %q", info.RegistrationNumber)
	}
	if info.Name != `ООО "Пример"` {
		t.Errorf("expected operator name, got %q", info.Name)
	}
	if info.RegistrationDate != "01.02.2024" {
		t.Errorf("expected registration date 01.02.2024, got %q", info.RegistrationDate)
	}
	if info.INN != "7707083893" {
		t.Errorf("expected INN to round-trip, got %q", info.INN)
	}
	if info.SourceURL != server.URL {
		t.Errorf("expected source URL %s, got %s", server.URL, info.SourceURL)
	}
}

func TestCheckOperatorNotFound(t *testing.T) {
	server := newRegistryServer(t, registryEmptyPage)
	client := New(server.URL, server.Client())

	info, err := client.CheckOperator(context.Background(), "7707083893")
	if err != nil {
		t.Fatalf("expected lookup to succeed, got %v", err)
	}
	if info.Found {
		t.Error("expected operator to be absent")
	}
	if info.INN != "7707083893" {
		t.Errorf("expected INN on the not-found result, got %q", info.INN)
	}
	if info.RegistrationNumber != "" {
		t.Errorf("expected no registration number, got %q", info.RegistrationNumber)
	}
}

func TestCheckOperatorBotProtectedOnLoad(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(registryCaptchaPage))
	}))
	t.Cleanup(server.Close)
	client := New(server.URL, server.Client())

	_, err := client.CheckOperator(context.Background(), "7707083893")
	if !errors.Is(err, ErrBotProtected) {
		t.Fatalf("expected ErrBotProtected, got %v", err)
	}
}

func TestCheckOperatorBotProtectedOnSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(registryFormPage))
			return
		}
		w.Write([]byte(`<html><body>Please solve the CAPTCHA to continue.</body></html>`))
	}))
	t.Cleanup(server.Close)
	client := New(server.URL, server.Client())

	_, err := client.CheckOperator(context.Background(), "7707083893")
	if !errors.Is(err, ErrBotProtected) {
		t.Fatalf("expected ErrBotProtected, got %v", err)
	}
}

func TestCheckOperatorDecodesWindows1251(t *testing.T) {
	encoded, err := charmap.Windows1251.NewEncoder().String(registryFoundPage)
	if err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(registryFormPage))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=windows-1251")
		w.Write([]byte(encoded))
	}))
	t.Cleanup(server.Close)
	client := New(server.URL, server.Client())

	info, err := client.CheckOperator(context.Background(), "7707083893")
	if err != nil {
		t.Fatalf("expected lookup to succeed, got %v", err)
	}
	if !info.Found {
		t.Fatal("expected operator to be found in the decoded page")
	}
	if info.Name != `ООО "Пример"` {
		t.Errorf("expected decoded operator name, got %q", info.Name)
	}
}

func TestCheckOperatorRejectsInvalidINN(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid INN must not reach the registry")
	}))
	t.Cleanup(server.Close)
	client := New(server.URL, server.Client())

	if _, err := client.CheckOperator(context.Background(), "not-an-inn"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestCheckOperatorReportsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)
	client := New(server.URL, server.Client())

	_, err := client.CheckOperator(context.Background(), "7707083893")
	if err == nil {
		t.Fatal("expected an error from an unavailable registry")
	}
	if !strings.Contains(err.Error(), "HTTP 503") {
		t.Errorf("expected the status code in the error, got %v", err)
	}
}

func TestParseResultTableSkipsHeaderRow(t *testing.T) {
	info := &OperatorInfo{}
	parseResultTable(`<table><tr><th>Номер</th><th>Наименование</th></tr></table>`, info)
	if info.Found {
		t.Error("a header-only table must not count as a hit")
	}

	info = &OperatorInfo{}
	parseResultTable(`<table>
<tr><th>Номер</th><th>Наименование</th></tr>
<tr><td>52-10-000001</td><td>АО "Тест"</td></tr>
</table>`, info)
	if !info.Found {
		t.Fatal("expected the data row to register")
	}
	if info.RegistrationNumber != "52-10-000001" || info.Name != `АО "Тест"` {
		t.Errorf("unexpected cells: %q / %q", info.RegistrationNumber, info.Name)
	}
}
