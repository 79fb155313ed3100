// Package hostinfo derives lookup-ready host data from raw URLs: the bare
// hostname, its ASCII and Unicode forms, the registrable domain and a few
// homograph signals.
//
// Unlike the feature package, hostinfo strips userinfo and ports and
// consults the public suffix list, so its output is suited to network
// lookups rather than to the classifier.
package hostinfo

import (
	"errors"
	"net"
	"strings"
	"unicode"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/phishscan/internal/feature"
)

// ErrNoHost is returned when a URL carries no usable hostname.
var ErrNoHost = errors.New("URL has no host")

// Info describes the host of a URL.
type Info struct {
	// Host is the lower-cased hostname without userinfo, port or brackets.
	Host string

	// ASCII is the punycode (A-label) form of Host.
	ASCII string

	// Unicode is the U-label form of Host.
	Unicode string

	// RegistrableDomain is the eTLD+1 of the host. Empty for IP literals
	// and hosts that are themselves public suffixes.
	RegistrableDomain string

	// IsIP reports whether the host is an IPv4 or IPv6 literal.
	IsIP bool

	// Punycode reports whether any label is an A-label ("xn--").
	Punycode bool

	// MixedScript reports whether the Unicode form mixes Latin letters
	// with letters of another script.
	MixedScript bool
}

// Analyze extracts host information from raw.
func Analyze(raw string) (Info, error) {
	host := Hostname(raw)
	if host == "" {
		return Info{}, ErrNoHost
	}

	info := Info{Host: host, ASCII: host, Unicode: host}
	if net.ParseIP(host) != nil {
		info.IsIP = true
		return info, nil
	}

	normalized := norm.NFC.String(host)
	if ascii, err := idna.Lookup.ToASCII(normalized); err == nil && ascii != "" {
		info.ASCII = ascii
	}
	if uni, err := idna.Lookup.ToUnicode(info.ASCII); err == nil && uni != "" {
		info.Unicode = uni
	}

	info.Punycode = strings.Contains(info.ASCII, "xn--")
	info.MixedScript = hasMixedScript(info.Unicode)

	if etld1, err := publicsuffix.EffectiveTLDPlusOne(info.ASCII); err == nil {
		info.RegistrableDomain = etld1
	}
	return info, nil
}

// Hostname returns the bare host of raw: the authority found by
// feature.Parse with userinfo, port and IPv6 brackets removed. Input
// without a scheme is retried with "http://" so that "example.com/login"
// still yields a host.
func Hostname(raw string) string {
	raw = strings.TrimSpace(raw)
	u := feature.Parse(raw)
	authority := u.Hostname
	if authority == "" && u.Scheme == "" {
		authority = feature.Parse("http://" + raw).Hostname
	}

	if i := strings.LastIndex(authority, "@"); i >= 0 {
		authority = authority[i+1:]
	}
	if strings.HasPrefix(authority, "[") {
		if end := strings.Index(authority, "]"); end > 0 {
			return authority[1:end]
		}
		return ""
	}
	if host, _, err := net.SplitHostPort(authority); err == nil {
		authority = host
	}
	return strings.TrimSuffix(authority, ".")
}

// hasMixedScript reports whether s contains Latin letters together with
// letters from any other script.
func hasMixedScript(s string) bool {
	hasLatin, hasOther := false, false
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		if unicode.In(r, unicode.Latin) {
			hasLatin = true
		} else {
			hasOther = true
		}
	}
	return hasLatin && hasOther
}
