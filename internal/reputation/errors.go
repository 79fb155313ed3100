package reputation

import "errors"

// Sentinel errors for reputation lookups.
var (
	// ErrAllSourcesFailed is returned when every enabled source failed.
	ErrAllSourcesFailed = errors.New("all reputation sources failed")

	// ErrDNSFailure is returned when a DNS server answers with an error code
	// other than NXDOMAIN.
	ErrDNSFailure = errors.New("dns query failed")

	// ErrNoCreationDate is returned when a WHOIS record has no parsable
	// creation date.
	ErrNoCreationDate = errors.New("whois record has no creation date")

	// ErrDomainNotFound is returned when the registry reports the domain
	// as not registered.
	ErrDomainNotFound = errors.New("domain is not registered")

	// ErrBlocklistFetch is returned when a blocklist feed cannot be fetched.
	ErrBlocklistFetch = errors.New("failed to fetch blocklist")
)
