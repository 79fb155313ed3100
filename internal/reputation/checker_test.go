package reputation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func writeBlocklist(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blocklist.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestChecker_Lookup(t *testing.T) {
	t.Parallel()

	whoisOK := func(_ context.Context, domain string) (WhoisRecord, error) {
		return WhoisRecord{Domain: domain, Registrar: "Example Registrar", Created: testNow.AddDate(0, 0, -5)}, nil
	}
	resolveOK := func(_ context.Context, _ string) ([]string, error) {
		return []string{"192.0.2.10"}, nil
	}
	fail := errors.New("boom")

	t.Run("all sources succeed", func(t *testing.T) {
		t.Parallel()

		c := NewChecker(
			WithWhois(whoisOK),
			WithResolver(resolveOK),
			WithBlocklist(NewBlocklist(writeBlocklist(t, "# feed\nevil.example.com\n"))),
			WithClock(func() time.Time { return testNow }),
		)

		rep, err := c.Lookup(context.Background(), "https://user:pw@login.evil.example.com:8443/x")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rep.Host != "login.evil.example.com" {
			t.Errorf("Host = %q", rep.Host)
		}
		if rep.RegistrableDomain != "example.com" {
			t.Errorf("RegistrableDomain = %q", rep.RegistrableDomain)
		}
		if !rep.WhoisChecked || rep.DomainAgeDays != 5 || rep.Registrar != "Example Registrar" {
			t.Errorf("whois data not applied: %+v", rep)
		}
		if rep.DomainCreated == nil || !rep.DomainCreated.Equal(testNow.AddDate(0, 0, -5)) {
			t.Errorf("DomainCreated = %v", rep.DomainCreated)
		}
		if !rep.DNSChecked || !rep.HasDNSRecord || len(rep.Addresses) != 1 {
			t.Errorf("dns data not applied: %+v", rep)
		}
		if !rep.BlocklistChecked || rep.Blocklisted {
			t.Errorf("blocklist: checked=%v listed=%v, expected checked and not listed", rep.BlocklistChecked, rep.Blocklisted)
		}
		if len(rep.Errors) != 0 {
			t.Errorf("unexpected errors: %v", rep.Errors)
		}
	})

	t.Run("registrable domain on blocklist", func(t *testing.T) {
		t.Parallel()

		c := NewChecker(WithBlocklist(NewBlocklist(writeBlocklist(t, "https://example.com/login\n"))))
		rep, err := c.Lookup(context.Background(), "http://a.b.example.com/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !rep.Blocklisted {
			t.Error("expected Blocklisted via registrable domain")
		}
	})

	t.Run("partial failure is recorded", func(t *testing.T) {
		t.Parallel()

		c := NewChecker(
			WithWhois(func(context.Context, string) (WhoisRecord, error) { return WhoisRecord{}, fail }),
			WithResolver(resolveOK),
		)
		rep, err := c.Lookup(context.Background(), "http://example.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rep.Errors[SourceWhois] != "boom" {
			t.Errorf("Errors = %v", rep.Errors)
		}
		if rep.WhoisChecked || rep.DomainAgeDays != -1 {
			t.Errorf("whois must stay unknown: %+v", rep)
		}
		if !rep.HasDNSRecord {
			t.Error("dns result lost")
		}
	})

	t.Run("unregistered domain", func(t *testing.T) {
		t.Parallel()

		c := NewChecker(
			WithWhois(func(context.Context, string) (WhoisRecord, error) { return WhoisRecord{}, ErrDomainNotFound }),
		)
		rep, err := c.Lookup(context.Background(), "http://login.nope-bank.com/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !rep.WhoisChecked || !rep.Unregistered {
			t.Errorf("WhoisChecked = %v, Unregistered = %v, expected both", rep.WhoisChecked, rep.Unregistered)
		}
		if rep.DomainAgeDays != -1 || rep.DomainCreated != nil {
			t.Errorf("age must stay unknown: %+v", rep)
		}
		if len(rep.Errors) != 0 {
			t.Errorf("unexpected errors: %v", rep.Errors)
		}
	})

	t.Run("all sources fail", func(t *testing.T) {
		t.Parallel()

		c := NewChecker(
			WithWhois(func(context.Context, string) (WhoisRecord, error) { return WhoisRecord{}, fail }),
			WithResolver(func(context.Context, string) ([]string, error) { return nil, fail }),
			WithBlocklist(NewBlocklist(filepath.Join(t.TempDir(), "missing.txt"))),
		)
		rep, err := c.Lookup(context.Background(), "http://example.com")
		if !errors.Is(err, ErrAllSourcesFailed) {
			t.Fatalf("expected ErrAllSourcesFailed, got %v", err)
		}
		if !errors.Is(err, fail) || !errors.Is(err, ErrBlocklistFetch) {
			t.Errorf("source errors not wrapped: %v", err)
		}
		if rep == nil || len(rep.Errors) != 3 {
			t.Errorf("expected a report with 3 errors, got %+v", rep)
		}
	})

	t.Run("ip host skips whois and dns", func(t *testing.T) {
		t.Parallel()

		called := false
		c := NewChecker(
			WithWhois(func(context.Context, string) (WhoisRecord, error) { called = true; return WhoisRecord{}, fail }),
			WithResolver(func(context.Context, string) ([]string, error) { called = true; return nil, fail }),
		)
		rep, err := c.Lookup(context.Background(), "http://192.168.1.1/login")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if called {
			t.Error("whois or dns called for an IP literal")
		}
		if rep.Host != "192.168.1.1" {
			t.Errorf("Host = %q", rep.Host)
		}
	})

	t.Run("no host", func(t *testing.T) {
		t.Parallel()

		if _, err := NewChecker().Lookup(context.Background(), "mailto:a@b.c"); err == nil {
			t.Error("expected error for URL without host")
		}
	})

	t.Run("cancelled context stops the rate limiter", func(t *testing.T) {
		t.Parallel()

		c := NewChecker(WithRateLimit(0.001, 1))
		if _, err := c.Lookup(context.Background(), "http://example.com"); err != nil {
			t.Fatalf("first lookup should use the burst: %v", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := c.Lookup(ctx, "http://example.com"); err == nil {
			t.Error("expected rate limiter error")
		}
	})
}
