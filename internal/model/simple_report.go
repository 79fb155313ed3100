package model

import (
	"strconv"
	"time"

	"github.com/nao1215/phishscan/internal/feature"
)

const (
	// DeepSubdomainLevel is the number of dots in the hostname from which
	// the deep_subdomains finding is raised.
	DeepSubdomainLevel = 3

	// LongURLLength is the URL length (in characters) from which the
	// long_url finding is raised.
	LongURLLength = 75

	// YoungDomainDays is the domain age below which the young_domain
	// finding is raised.
	YoungDomainDays = 30
)

// SimpleReport is a summarized, human-readable report.
// It turns the raw feature vector and reputation data into a short list
// of explained findings next to the verdict.
type SimpleReport struct {
	// URL is the checked URL.
	URL string `json:"url"`

	// DateChecked is when the check was performed.
	DateChecked time.Time `json:"date_checked"`

	// Prediction is the verdict text: PHISHING, BENIGN or UNKNOWN.
	Prediction string `json:"prediction"`

	// Score is the classifier score.
	Score float64 `json:"score"`

	// === Severity Summary ===

	// CriticalCount is the number of critical findings.
	CriticalCount int `json:"critical_count"`

	// HighCount is the number of high severity findings.
	HighCount int `json:"high_count"`

	// MediumCount is the number of medium severity findings.
	MediumCount int `json:"medium_count"`

	// LowCount is the number of low severity findings.
	LowCount int `json:"low_count"`

	// InfoCount is the number of informational findings.
	InfoCount int `json:"info_count"`

	// Findings contains all categorized findings.
	Findings []Finding `json:"findings,omitempty"`

	// TimedOut indicates if the check was terminated due to timeout.
	TimedOut bool `json:"timed_out"`

	// Error contains any error message if the check failed.
	Error string `json:"error,omitempty"`
}

// Finding represents a single finding in the simple report.
type Finding struct {
	// Type is the finding type identifier.
	// This maps to findingInfoMapping in severity.go.
	Type string `json:"type"`

	// Severity is the risk level.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`

	// Title is a short description of the finding.
	Title string `json:"title"`

	// Impact explains why the finding matters.
	Impact string `json:"impact,omitempty"`

	// Recommendation provides guidance for the reader.
	Recommendation string `json:"recommendation,omitempty"`

	// Value is the measured value that triggered the finding.
	Value string `json:"value,omitempty"`
}

// NewSimpleReport creates a new SimpleReport from a CheckReport.
func NewSimpleReport(report *CheckReport) *SimpleReport {
	simple := &SimpleReport{
		URL:         report.URL,
		DateChecked: report.DateChecked,
		Prediction:  report.Label.String(),
		Score:       report.Score,
		TimedOut:    report.TimedOut,
	}

	if report.Error != nil {
		simple.Error = report.Error.Error()
	} else if report.ErrorMessage != "" {
		simple.Error = report.ErrorMessage
	}

	simple.collectFeatureFindings(report.Features)
	if report.Reputation != nil {
		simple.collectReputationFindings(report.Reputation)
	}

	simple.countBySeverity()

	return simple
}

// collectFeatureFindings derives findings from the lexical features.
func (s *SimpleReport) collectFeatureFindings(v feature.Vector) {
	if v.Get(feature.IPAddress) == 1 {
		s.addFinding("ip_address_host", "IP Address Host", "")
	}
	if v.Get(feature.DomainInSubdomains) == 1 {
		s.addFinding("domain_in_subdomains", "Domain Repeated in Subdomains", "")
	}
	if n := v.Get(feature.AtSymbol); n > 0 {
		s.addFinding("at_symbol", "'@' Symbol in URL", strconv.Itoa(n))
	}
	if n := v.Get(feature.NumSensitiveWords); n > 0 {
		s.addFinding("sensitive_words", "Sensitive Words", strconv.Itoa(n))
	}
	if v.Get(feature.HTTPSInHostname) == 1 {
		s.addFinding("https_in_hostname", "'https' in Hostname", "")
	}
	if n := v.Get(feature.SubdomainLevel); n >= DeepSubdomainLevel {
		s.addFinding("deep_subdomains", "Deep Subdomain Chain", strconv.Itoa(n))
	}
	if v.Get(feature.NoHTTPS) == 1 {
		s.addFinding("no_https", "No HTTPS", "")
	}
	if v.Get(feature.RandomString) == 1 {
		s.addFinding("random_string", "Random-Looking String", "")
	}
	if v.Get(feature.DoubleSlashInPath) == 1 {
		s.addFinding("double_slash_path", "Double Slash in Path", "")
	}
	if n := v.Get(feature.NumDashInHostname); n > 0 {
		s.addFinding("dash_in_hostname", "Dash in Hostname", strconv.Itoa(n))
	}
	if n := v.Get(feature.URLLength); n >= LongURLLength {
		s.addFinding("long_url", "Long URL", strconv.Itoa(n))
	}
	if n := v.Get(feature.TildeSymbol); n > 0 {
		s.addFinding("tilde_symbol", "'~' Symbol in URL", strconv.Itoa(n))
	}
	if n := v.Get(feature.NumPercent); n > 0 {
		s.addFinding("percent_encoding", "Percent Encoding", strconv.Itoa(n))
	}
}

// collectReputationFindings derives findings from reputation data.
func (s *SimpleReport) collectReputationFindings(rep *ReputationReport) {
	if rep.Blocklisted {
		s.addFinding("blocklisted", "Listed on Blocklist", rep.Host)
	}
	if rep.Unregistered {
		s.addFinding("unregistered_domain", "Unregistered Domain", rep.RegistrableDomain)
	}
	if rep.IsYoung(YoungDomainDays) {
		s.addFinding("young_domain", "Recently Registered Domain",
			strconv.Itoa(rep.DomainAgeDays)+" days")
	}
	if rep.MixedScript {
		s.addFinding("mixed_script_host", "Mixed-Script Hostname", rep.Host)
	} else if rep.Punycode {
		s.addFinding("punycode_host", "Punycode Hostname", rep.Host)
	}
	if rep.DNSChecked && !rep.HasDNSRecord {
		s.addFinding("no_dns_record", "No DNS Record", rep.Host)
	}
}

// addFinding adds a finding to the report.
func (s *SimpleReport) addFinding(findingType, title, value string) {
	info := GetFindingInfo(findingType)
	s.Findings = append(s.Findings, Finding{
		Type:           findingType,
		Severity:       info.Severity,
		SeverityText:   info.Severity.String(),
		Title:          title,
		Impact:         info.Impact,
		Recommendation: info.Recommendation,
		Value:          value,
	})
}

// countBySeverity counts findings by severity level.
func (s *SimpleReport) countBySeverity() {
	for _, f := range s.Findings {
		switch f.Severity {
		case SeverityCritical:
			s.CriticalCount++
		case SeverityHigh:
			s.HighCount++
		case SeverityMedium:
			s.MediumCount++
		case SeverityLow:
			s.LowCount++
		case SeverityInfo:
			s.InfoCount++
		}
	}
}

// TotalFindings returns the total number of findings.
func (s *SimpleReport) TotalFindings() int {
	return len(s.Findings)
}

// HasFindings returns true if there are any findings.
func (s *SimpleReport) HasFindings() bool {
	return len(s.Findings) > 0
}

// GetFindingsBySeverity returns findings filtered by severity.
func (s *SimpleReport) GetFindingsBySeverity(severity Severity) []Finding {
	var result []Finding
	for _, f := range s.Findings {
		if f.Severity == severity {
			result = append(result, f)
		}
	}
	return result
}
