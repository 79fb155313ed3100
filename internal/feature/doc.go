// Package feature turns a raw URL string into the fixed, named numeric
// feature vector consumed by the phishing classifier.
//
// Everything in this package is pure: no I/O, no logging, no shared mutable
// state. Any input string is accepted, including malformed or empty URLs,
// and always yields a complete Vector.
//
// # Pipeline
//
//	raw URL ──► Parse ──► sub-detectors ──► Vector
//
// Parse splits the URL once into scheme, hostname, path and query. The
// sub-detectors (lexical counters, IsRandom, IsIPAddress,
// HasDomainInSubdomains, CountSensitiveWords and the brand/path stubs) run
// independently over the parsed components. Each one runs behind a recover
// guard so a defect in one detector zeroes that feature instead of aborting
// the extraction.
//
// # Schema
//
// The key set is enumerated once by the Feature constants and Schema.
// Content-based features (hyperlink ratios, favicon, forms, iframes, ...)
// need the rendered page and are kept in the schema as placeholders fixed
// to 0, so that an externally trained classifier always receives the full
// input row.
//
// # Usage
//
//	v := feature.Extract("http://paypal.secure-login.com/account/update")
//	fmt.Println(v.Get(feature.NumSensitiveWords)) // 4
package feature
