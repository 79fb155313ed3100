package feature

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

const (
	// EntropyThreshold is the Shannon entropy, in bits per character, above
	// which a URL is considered random.
	EntropyThreshold = 4.0

	// MinRandomRunLength is the length of a contiguous ASCII alphanumeric run
	// that marks a URL as random regardless of its entropy.
	MinRandomRunLength = 10
)

// longRunPattern matches a contiguous ASCII alphanumeric run of at least
// MinRandomRunLength characters.
var longRunPattern = regexp.MustCompile(`[a-zA-Z0-9]{` + strconv.Itoa(MinRandomRunLength) + `,}`)

// DefaultSensitiveWords is the word list counted by CountSensitiveWords.
// Entries must be lower-case. Use WithSensitiveWords to substitute a
// different list for a single Extractor.
var DefaultSensitiveWords = []string{"login", "secure", "account", "update", "confirm"}

// ShannonEntropy returns -Σ p·log2(p) over the code-point frequencies of s.
// The entropy of the empty string is 0.
func ShannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}

	freq := make(map[rune]int)
	total := 0
	for _, r := range s {
		freq[r]++
		total++
	}

	// Sum in a fixed order so the result is bit-for-bit reproducible.
	runes := make([]rune, 0, len(freq))
	for r := range freq {
		runes = append(runes, r)
	}
	slices.Sort(runes)

	entropy := 0.0
	for _, r := range runes {
		p := float64(freq[r]) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// IsRandom reports whether s looks randomly generated: its entropy exceeds
// EntropyThreshold or it contains a run of MinRandomRunLength or more ASCII
// letters and digits.
func IsRandom(s string) bool {
	if s != "" && ShannonEntropy(s) > EntropyThreshold {
		return true
	}
	return longRunPattern.MatchString(s)
}

// IsIPAddress reports whether hostname is a dotted-quad IPv4 literal: four
// dot-separated integers each in [0,255]. Whitespace around a segment is
// ignored; unparseable segments yield false. IPv6 and bracketed hosts are
// not recognised.
func IsIPAddress(hostname string) bool {
	parts := strings.Split(hostname, ".")
	if len(parts) != 4 {
		return false
	}
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	return true
}

// HasDomainInSubdomains reports whether the second-from-last label of
// hostname occurs as a substring of any label before it.
//
// This approximates "registrable domain repeated in the subdomains"
// without a public suffix list; classifiers are calibrated to this exact
// label comparison.
func HasDomainInSubdomains(hostname string) bool {
	labels := strings.Split(hostname, ".")
	if len(labels) < 3 {
		return false
	}

	mainLabel := labels[len(labels)-2]
	for _, sub := range labels[:len(labels)-2] {
		if strings.Contains(sub, mainLabel) {
			return true
		}
	}
	return false
}

// HasDomainInPaths reports whether a domain name is embedded in path.
// Not yet implemented: always false.
func HasDomainInPaths(_ string) bool {
	return false
}

// IsBrandEmbedded reports whether a known brand name is embedded in url.
// Not yet implemented: always false.
func IsBrandEmbedded(_ string) bool {
	return false
}

// CountSensitiveWords returns the total number of case-insensitive,
// overlap-inclusive occurrences of DefaultSensitiveWords in url.
func CountSensitiveWords(url string) int {
	return countWords(url, DefaultSensitiveWords)
}

// countWords sums the occurrences of every word of words in s.
func countWords(s string, words []string) int {
	lower := strings.ToLower(s)
	total := 0
	for _, w := range words {
		total += countOverlapping(lower, w)
	}
	return total
}

// countOverlapping counts occurrences of sub in s, including overlapping
// ones. An empty sub counts as 0.
func countOverlapping(s, sub string) int {
	if sub == "" {
		return 0
	}
	n := 0
	for i := 0; i <= len(s)-len(sub); {
		j := strings.Index(s[i:], sub)
		if j < 0 {
			break
		}
		n++
		i += j + 1
	}
	return n
}
