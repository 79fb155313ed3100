package model

import "time"

// ReputationReport holds what external sources know about a URL's domain.
// Each source is optional; a failed source is recorded in Errors and the
// corresponding fields keep their zero values.
type ReputationReport struct {
	// Host is the hostname that was looked up (userinfo and port removed).
	Host string `json:"host"`

	// RegistrableDomain is the eTLD+1 of Host, e.g. "example.co.uk".
	RegistrableDomain string `json:"registrable_domain,omitempty"`

	// Punycode indicates the host contains IDN A-labels ("xn--").
	Punycode bool `json:"punycode"`

	// MixedScript indicates the decoded host mixes Latin letters with
	// letters of another script, a common homograph trick.
	MixedScript bool `json:"mixed_script"`

	// === WHOIS ===

	// WhoisChecked indicates the WHOIS lookup succeeded.
	WhoisChecked bool `json:"whois_checked"`

	// Registrar is the registrar name reported by WHOIS.
	Registrar string `json:"registrar,omitempty"`

	// DomainCreated is the registration date reported by WHOIS.
	DomainCreated *time.Time `json:"domain_created,omitempty"`

	// DomainAgeDays is the age of the domain at check time. -1 if unknown.
	DomainAgeDays int `json:"domain_age_days"`

	// Unregistered indicates the registry answered that the registrable
	// domain does not exist.
	Unregistered bool `json:"unregistered"`

	// === DNS ===

	// DNSChecked indicates the DNS lookup completed.
	DNSChecked bool `json:"dns_checked"`

	// HasDNSRecord indicates the host resolved to at least one A or AAAA record.
	HasDNSRecord bool `json:"has_dns_record"`

	// Addresses lists the resolved addresses.
	Addresses []string `json:"addresses,omitempty"`

	// === Blocklist ===

	// BlocklistChecked indicates a blocklist feed was consulted.
	BlocklistChecked bool `json:"blocklist_checked"`

	// Blocklisted indicates the host or its registrable domain is listed.
	Blocklisted bool `json:"blocklisted"`

	// Errors maps a source name ("whois", "dns", "blocklist") to its failure.
	Errors map[string]string `json:"errors,omitempty"`
}

// NewReputationReport creates an empty ReputationReport for host.
func NewReputationReport(host string) *ReputationReport {
	return &ReputationReport{
		Host:          host,
		DomainAgeDays: -1,
	}
}

// AddError records the failure of one source.
func (r *ReputationReport) AddError(source string, err error) {
	if err == nil {
		return
	}
	if r.Errors == nil {
		r.Errors = make(map[string]string)
	}
	r.Errors[source] = err.Error()
}

// IsYoung reports whether the domain is known to be younger than maxAgeDays.
func (r *ReputationReport) IsYoung(maxAgeDays int) bool {
	return r.DomainAgeDays >= 0 && r.DomainAgeDays < maxAgeDays
}
