package feature

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Extractor computes feature vectors. The zero value is not usable; create
// one with NewExtractor. An Extractor is immutable after construction and
// safe for concurrent use.
type Extractor struct {
	// sensitiveWords overrides DefaultSensitiveWords when non-nil.
	sensitiveWords []string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSensitiveWords replaces the sensitive word list for this Extractor.
// Words are matched case-insensitively.
func WithSensitiveWords(words ...string) Option {
	return func(e *Extractor) {
		e.sensitiveWords = make([]string, 0, len(words))
		for _, w := range words {
			e.sensitiveWords = append(e.sensitiveWords, strings.ToLower(w))
		}
	}
}

// NewExtractor creates an Extractor with the given options.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// defaultExtractor backs the package-level Extract.
var defaultExtractor = NewExtractor()

// Extract computes the feature vector of raw with the default settings.
func Extract(raw string) Vector {
	return defaultExtractor.Extract(raw)
}

// Extract computes the feature vector of raw. It never fails; placeholder
// columns are 0.
func (e *Extractor) Extract(raw string) Vector {
	u := Parse(raw)

	var v Vector
	set := func(f Feature, detect func() int) {
		v[f] = guard(detect)
	}

	set(NumDots, func() int { return strings.Count(raw, ".") })
	set(SubdomainLevel, func() int { return strings.Count(u.Hostname, ".") })
	set(PathLevel, func() int { return strings.Count(u.Path, "/") })
	set(URLLength, func() int { return utf8.RuneCountInString(raw) })
	set(NumDash, func() int { return strings.Count(raw, "-") })
	set(NumDashInHostname, func() int { return strings.Count(u.Hostname, "-") })
	set(AtSymbol, func() int { return strings.Count(raw, "@") })
	set(TildeSymbol, func() int { return strings.Count(raw, "~") })
	set(NumUnderscore, func() int { return strings.Count(raw, "_") })
	set(NumPercent, func() int { return strings.Count(raw, "%") })
	set(NumQueryComponents, func() int { return queryComponents(u.Query) })
	set(NumAmpersand, func() int { return strings.Count(u.Query, "&") })
	set(NumHash, func() int { return strings.Count(raw, "#") })
	set(NumNumericChars, func() int { return countDigits(raw) })
	set(NoHTTPS, func() int { return boolToInt(!strings.HasPrefix(raw, "https")) })
	set(RandomString, func() int { return boolToInt(IsRandom(raw)) })
	set(IPAddress, func() int { return boolToInt(IsIPAddress(u.Hostname)) })
	set(DomainInSubdomains, func() int { return boolToInt(HasDomainInSubdomains(u.Hostname)) })
	set(DomainInPaths, func() int { return boolToInt(HasDomainInPaths(u.Path)) })
	set(HTTPSInHostname, func() int { return boolToInt(strings.Contains(u.Hostname, "https")) })
	set(HostnameLength, func() int { return utf8.RuneCountInString(u.Hostname) })
	set(PathLength, func() int { return utf8.RuneCountInString(u.Path) })
	set(QueryLength, func() int { return utf8.RuneCountInString(u.Query) })
	set(DoubleSlashInPath, func() int { return boolToInt(strings.Contains(u.Path, "//")) })
	set(NumSensitiveWords, func() int { return countWords(raw, e.words()) })
	set(EmbeddedBrandName, func() int { return boolToInt(IsBrandEmbedded(raw)) })

	return v
}

// words returns the sensitive word list in effect for e.
func (e *Extractor) words() []string {
	if e.sensitiveWords != nil {
		return e.sensitiveWords
	}
	return DefaultSensitiveWords
}

// guard runs detect and converts a panic into 0, so one faulty detector
// cannot abort the whole extraction.
func guard(detect func() int) (value int) {
	defer func() {
		if recover() != nil {
			value = 0
		}
	}()
	return detect()
}

// queryComponents counts the '&'-separated components of query. An empty
// query has no components.
func queryComponents(query string) int {
	if query == "" {
		return 0
	}
	return strings.Count(query, "&") + 1
}

// countDigits counts the decimal digit code points of s.
func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
