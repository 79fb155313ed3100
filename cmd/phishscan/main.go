// Package main provides the entry point for the phishscan CLI.
//
// phishscan classifies URLs as phishing or benign from lexical features
// of the URL string, optionally enriched with WHOIS, DNS and blocklist
// reputation data.
//
// Usage:
//
//	phishscan check <url>
//	phishscan check --list <file>
//	phishscan serve --addr :8080
//
// See --help for all available options.
package main

// main is the entry point for phishscan.
func main() {
	Execute()
}
