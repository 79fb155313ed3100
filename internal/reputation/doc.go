// Package reputation enriches a URL check with information from outside
// the URL string: WHOIS registration data, DNS presence and blocklist
// membership.
//
// All lookups are network calls and therefore live outside the feature
// core. The Checker is optional; a failed source is recorded in the
// returned ReputationReport instead of failing the whole check.
package reputation
