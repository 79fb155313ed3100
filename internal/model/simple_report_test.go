package model

import (
	"errors"
	"testing"

	"github.com/nao1215/phishscan/internal/feature"
)

func findingTypes(s *SimpleReport) map[string]bool {
	types := make(map[string]bool)
	for _, f := range s.Findings {
		types[f.Type] = true
	}
	return types
}

func TestNewSimpleReport(t *testing.T) {
	t.Parallel()

	t.Run("derives findings from features", func(t *testing.T) {
		t.Parallel()

		r := NewCheckReport("http://192.168.1.1/login.php?user=admin")
		r.Features = feature.Extract(r.URL)
		r.Label = LabelPhishing
		r.Score = 1

		s := NewSimpleReport(r)
		if s.Prediction != "PHISHING" {
			t.Errorf("Prediction = %q", s.Prediction)
		}

		types := findingTypes(s)
		for _, want := range []string{"ip_address_host", "domain_in_subdomains", "sensitive_words", "no_https", "random_string", "deep_subdomains"} {
			if !types[want] {
				t.Errorf("missing finding %q in %v", want, types)
			}
		}
		if types["at_symbol"] {
			t.Error("unexpected at_symbol finding")
		}
		if s.HighCount != 2 {
			t.Errorf("HighCount = %d, expected 2", s.HighCount)
		}
		if s.TotalFindings() != len(s.Findings) || !s.HasFindings() {
			t.Error("TotalFindings/HasFindings inconsistent")
		}
	})

	t.Run("clean URL has no findings", func(t *testing.T) {
		t.Parallel()

		r := NewCheckReport("https://a.com")
		r.Features = feature.Extract(r.URL)
		r.Label = LabelBenign

		s := NewSimpleReport(r)
		if s.HasFindings() {
			t.Errorf("unexpected findings: %+v", s.Findings)
		}
		if s.Prediction != "BENIGN" {
			t.Errorf("Prediction = %q", s.Prediction)
		}
	})

	t.Run("reputation findings", func(t *testing.T) {
		t.Parallel()

		r := NewCheckReport("https://a.com")
		r.Features = feature.Extract(r.URL)
		r.Reputation = NewReputationReport("a.com")
		r.Reputation.Blocklisted = true
		r.Reputation.DomainAgeDays = 2
		r.Reputation.DNSChecked = true

		s := NewSimpleReport(r)
		types := findingTypes(s)
		for _, want := range []string{"blocklisted", "young_domain", "no_dns_record"} {
			if !types[want] {
				t.Errorf("missing finding %q", want)
			}
		}
		if s.CriticalCount != 1 {
			t.Errorf("CriticalCount = %d, expected 1", s.CriticalCount)
		}
		if got := s.GetFindingsBySeverity(SeverityCritical); len(got) != 1 || got[0].Type != "blocklisted" {
			t.Errorf("GetFindingsBySeverity(CRITICAL) = %+v", got)
		}
	})

	t.Run("unregistered domain", func(t *testing.T) {
		t.Parallel()

		r := NewCheckReport("https://login.nope-bank.com")
		r.Features = feature.Extract(r.URL)
		r.Reputation = NewReputationReport("login.nope-bank.com")
		r.Reputation.RegistrableDomain = "nope-bank.com"
		r.Reputation.WhoisChecked = true
		r.Reputation.Unregistered = true

		s := NewSimpleReport(r)
		got := s.GetFindingsBySeverity(SeverityHigh)
		found := false
		for _, f := range got {
			if f.Type == "unregistered_domain" && f.Value == "nope-bank.com" {
				found = true
			}
		}
		if !found {
			t.Errorf("missing unregistered_domain finding: %+v", s.Findings)
		}
	})

	t.Run("error is carried", func(t *testing.T) {
		t.Parallel()

		r := NewCheckReport("x")
		r.SetError(errors.New("classifier unavailable"))
		s := NewSimpleReport(r)
		if s.Error != "classifier unavailable" {
			t.Errorf("Error = %q", s.Error)
		}
		if s.Prediction != "UNKNOWN" {
			t.Errorf("Prediction = %q", s.Prediction)
		}
	})
}
