package reputation

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
)

// WhoisRecord is the subset of WHOIS data used for reputation.
type WhoisRecord struct {
	Domain    string
	Registrar string
	Created   time.Time
}

// WhoisFunc looks up the WHOIS record of a registrable domain.
type WhoisFunc func(ctx context.Context, domain string) (WhoisRecord, error)

// NewWhoisLookup returns a WhoisFunc backed by likexian/whois with the
// given per-query timeout.
func NewWhoisLookup(timeout time.Duration) WhoisFunc {
	client := whois.NewClient().SetTimeout(timeout)

	return func(ctx context.Context, domain string) (WhoisRecord, error) {
		type whoisResult struct {
			raw string
			err error
		}
		resultChan := make(chan whoisResult, 1)

		go func() {
			raw, err := client.Whois(domain)
			resultChan <- whoisResult{raw: raw, err: err}
		}()

		select {
		case <-ctx.Done():
			return WhoisRecord{}, ctx.Err()
		case res := <-resultChan:
			if res.err != nil {
				return WhoisRecord{}, fmt.Errorf("whois lookup for %q failed: %w", domain, res.err)
			}
			return parseWhoisRecord(res.raw)
		}
	}
}

// notFoundMarkers are the phrases registries use for unregistered domains.
var notFoundMarkers = []string{
	"no match",
	"not found",
	"no data found",
	"no entries found",
	"no matching record",
	"not registered",
	"not been registered",
	"object does not exist",
	"domain name not known",
	"status: free",
	"status: available",
}

func isNotFoundRecord(raw string) bool {
	lower := strings.ToLower(raw)
	for _, m := range notFoundMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// parseWhoisRecord parses raw WHOIS text. whoisparser panics on some
// malformed records; the panic is turned into an error. An answer for an
// unregistered domain yields ErrDomainNotFound.
func parseWhoisRecord(raw string) (rec WhoisRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("whois parser panicked: %v", r)
		}
	}()

	info, err := whoisparser.Parse(raw)
	if errors.Is(err, whoisparser.ErrNotFoundDomain) {
		return WhoisRecord{}, ErrDomainNotFound
	}
	if err != nil {
		return WhoisRecord{}, fmt.Errorf("failed to parse whois record: %w", err)
	}
	// whoisparser accepts some "no match" answers as records without data.
	if (info.Domain == nil || info.Domain.Domain == "") && isNotFoundRecord(raw) {
		return WhoisRecord{}, ErrDomainNotFound
	}
	if info.Domain != nil {
		rec.Domain = strings.ToLower(info.Domain.Domain)
		if created, ok := parseWhoisDate(info.Domain.CreatedDate); ok {
			rec.Created = created
		}
	}
	if info.Registrar != nil {
		rec.Registrar = info.Registrar.Name
	}
	if rec.Created.IsZero() {
		return rec, ErrNoCreationDate
	}
	return rec, nil
}

// compactDatePattern finds a YYYYMMDD date anywhere in a string.
var compactDatePattern = regexp.MustCompile(`\b(\d{8})\b`)

// whoisDateLayouts are the date layouts seen across registries.
var whoisDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02",
	"02-Jan-2006",
	"2006/01/02",
	"2006.01.02",
	"02.01.2006",
	"Mon, 02 Jan 2006 15:04:05 MST",
	"Mon Jan 2 15:04:05 MST 2006",
}

// parseWhoisDate parses the many date formats registries use.
func parseWhoisDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range whoisDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	if m := compactDatePattern.FindStringSubmatch(raw); len(m) > 1 {
		if t, err := time.Parse("20060102", m[1]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
