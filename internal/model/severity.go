package model

// Severity represents how strongly a finding points at phishing.
// Findings are advisory; the classifier's Label is the verdict.
type Severity int

const (
	// SeverityInfo indicates observations with no direct phishing signal.
	// Examples: a URL without a query, an unusual but harmless port.
	SeverityInfo Severity = iota

	// SeverityLow indicates weak signals that benign URLs also show often.
	// Examples: plain http, long URLs, random-looking tokens.
	SeverityLow

	// SeverityMedium indicates signals that phishing kits use regularly.
	// Examples: credential-themed words, deep subdomain chains.
	SeverityMedium

	// SeverityHigh indicates strong structural signals of impersonation.
	// Examples: raw IP hosts, brand labels repeated in subdomains, '@' tricks.
	SeverityHigh

	// SeverityCritical indicates external confirmation of abuse.
	// Examples: the host is listed on a blocklist feed.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// FindingInfo contains metadata about a finding type including severity,
// impact description, and remediation recommendation.
type FindingInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// findingInfoMapping maps finding types to their metadata.
// It is the single place where indicator severities are assigned.
var findingInfoMapping = map[string]FindingInfo{
	// CRITICAL
	"blocklisted": {
		Severity:       SeverityCritical,
		Impact:         "The host appears on a phishing blocklist feed.",
		Recommendation: "Block the URL and report it to the hosting provider and registrar.",
	},

	// HIGH
	"ip_address_host": {
		Severity:       SeverityHigh,
		Impact:         "The URL points at a raw IPv4 address instead of a domain name, which hides the operator from casual inspection.",
		Recommendation: "Treat links to bare IP addresses as untrusted unless the address is known.",
	},
	"domain_in_subdomains": {
		Severity:       SeverityHigh,
		Impact:         "The registrable label is repeated inside the subdomains, a common way to imitate a trusted brand.",
		Recommendation: "Read the hostname from right to left and verify the registrable domain.",
	},
	"at_symbol": {
		Severity:       SeverityHigh,
		Impact:         "An '@' in the URL can make browsers ignore everything before it, disguising the real destination.",
		Recommendation: "Do not follow URLs whose authority contains '@'.",
	},
	"unregistered_domain": {
		Severity:       SeverityHigh,
		Impact:         "The registry has no record of the domain, so the link cannot lead to a legitimate site.",
		Recommendation: "Do not trust the link; verify the intended domain by hand.",
	},
	"young_domain": {
		Severity:       SeverityHigh,
		Impact:         "The domain was registered very recently. Most phishing domains are used within days of registration.",
		Recommendation: "Apply extra scrutiny to newly registered domains.",
	},
	"mixed_script_host": {
		Severity:       SeverityHigh,
		Impact:         "The hostname mixes Latin letters with lookalike letters from another script to imitate a known domain.",
		Recommendation: "Compare the punycode form of the hostname with the expected domain.",
	},

	// MEDIUM
	"sensitive_words": {
		Severity:       SeverityMedium,
		Impact:         "The URL contains credential-themed words such as login, secure or account.",
		Recommendation: "Verify the domain before entering credentials.",
	},
	"https_in_hostname": {
		Severity:       SeverityMedium,
		Impact:         "The hostname contains the token 'https' to look secure without being so.",
		Recommendation: "Check the actual scheme in the browser, not the text of the hostname.",
	},
	"deep_subdomains": {
		Severity:       SeverityMedium,
		Impact:         "The hostname has many subdomain levels, which pushes the registrable domain out of view.",
		Recommendation: "Verify the rightmost labels of the hostname.",
	},
	"no_dns_record": {
		Severity:       SeverityMedium,
		Impact:         "The domain did not resolve. It may be parked, taken down or not yet live.",
		Recommendation: "Recheck the URL later; short-lived domains are typical for campaigns.",
	},
	"punycode_host": {
		Severity:       SeverityMedium,
		Impact:         "The hostname is an internationalized domain, which can render as a lookalike of a trusted name.",
		Recommendation: "Check the punycode form of the hostname before trusting it.",
	},

	// LOW
	"no_https": {
		Severity:       SeverityLow,
		Impact:         "The URL does not use https, so the connection is not authenticated.",
		Recommendation: "Avoid submitting data over plain http.",
	},
	"random_string": {
		Severity:       SeverityLow,
		Impact:         "The URL contains high-entropy or long random-looking tokens, typical of generated phishing paths.",
		Recommendation: "Compare the URL with the official address of the service.",
	},
	"double_slash_path": {
		Severity:       SeverityLow,
		Impact:         "The path contains '//', which is used to smuggle a second URL into the path.",
		Recommendation: "Inspect redirects before following the link.",
	},
	"dash_in_hostname": {
		Severity:       SeverityLow,
		Impact:         "The hostname contains dashes, often used to glue a brand to words such as secure or login.",
		Recommendation: "Check that the full registrable domain belongs to the expected organization.",
	},
	"long_url": {
		Severity:       SeverityLow,
		Impact:         "The URL is unusually long, which can hide the important parts.",
		Recommendation: "Inspect the hostname rather than the beginning of the URL.",
	},

	// INFO
	"tilde_symbol": {
		Severity:       SeverityInfo,
		Impact:         "The path contains '~', typical of shared hosting user directories.",
		Recommendation: "Shared hosting is sometimes abused; verify the owner of the page.",
	},
	"percent_encoding": {
		Severity:       SeverityInfo,
		Impact:         "The URL contains percent-encoded characters that may hide readable text.",
		Recommendation: "Decode the URL before judging it.",
	},
}

// GetSeverity returns the severity level for a finding type.
// Returns SeverityInfo if the finding type is not in the mapping.
func GetSeverity(findingType string) Severity {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info.Severity
	}
	return SeverityInfo
}

// GetFindingInfo returns the full finding information for a finding type.
// Returns a default FindingInfo with SeverityInfo if the type is not in the mapping.
func GetFindingInfo(findingType string) FindingInfo {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info
	}
	return FindingInfo{
		Severity:       SeverityInfo,
		Impact:         "Unknown indicator type.",
		Recommendation: "Review the URL manually.",
	}
}
