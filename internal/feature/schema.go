package feature

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Feature identifies one column of the published feature schema.
// The numeric order of the constants is the column order.
type Feature int

// Lexical features computed from the URL string.
const (
	NumDots Feature = iota
	SubdomainLevel
	PathLevel
	URLLength
	NumDash
	NumDashInHostname
	AtSymbol
	TildeSymbol
	NumUnderscore
	NumPercent
	NumQueryComponents
	NumAmpersand
	NumHash
	NumNumericChars
	NoHTTPS
	RandomString
	IPAddress
	DomainInSubdomains
	DomainInPaths
	HTTPSInHostname
	HostnameLength
	PathLength
	QueryLength
	DoubleSlashInPath
	NumSensitiveWords
	EmbeddedBrandName

	// Content-based placeholders. They require the fetched page and are
	// always 0 until a detector exists for them.
	PctExtHyperlinks
	PctExtResourceURLs
	ExtFavicon
	InsecureForms
	RelativeFormAction
	ExtFormAction
	AbnormalFormAction
	PctNullSelfRedirectHyperlinks
	FrequentDomainNameMismatch
	FakeLinkInStatusBar
	RightClickDisabled
	PopUpWindow
	SubmitInfoToEmail
	IframeOrFrame
	MissingTitle
	ImagesOnlyInForm
	SubdomainLevelRT
	URLLengthRT
	PctExtResourceURLsRT
	AbnormalExtFormActionR
	ExtMetaScriptLinkRT
	PctExtNullSelfRedirectHyperlinksRT

	numFeatures
)

// NumFeatures is the number of columns in the schema.
const NumFeatures = int(numFeatures)

// featureNames holds the published column names. These are the names the
// classifier was trained on and must never change.
var featureNames = [numFeatures]string{
	NumDots:                            "NumDots",
	SubdomainLevel:                     "SubdomainLevel",
	PathLevel:                          "PathLevel",
	URLLength:                          "UrlLength",
	NumDash:                            "NumDash",
	NumDashInHostname:                  "NumDashInHostname",
	AtSymbol:                           "AtSymbol",
	TildeSymbol:                        "TildeSymbol",
	NumUnderscore:                      "NumUnderscore",
	NumPercent:                         "NumPercent",
	NumQueryComponents:                 "NumQueryComponents",
	NumAmpersand:                       "NumAmpersand",
	NumHash:                            "NumHash",
	NumNumericChars:                    "NumNumericChars",
	NoHTTPS:                            "NoHttps",
	RandomString:                       "RandomString",
	IPAddress:                          "IpAddress",
	DomainInSubdomains:                 "DomainInSubdomains",
	DomainInPaths:                      "DomainInPaths",
	HTTPSInHostname:                    "HttpsInHostname",
	HostnameLength:                     "HostnameLength",
	PathLength:                         "PathLength",
	QueryLength:                        "QueryLength",
	DoubleSlashInPath:                  "DoubleSlashInPath",
	NumSensitiveWords:                  "NumSensitiveWords",
	EmbeddedBrandName:                  "EmbeddedBrandName",
	PctExtHyperlinks:                   "PctExtHyperlinks",
	PctExtResourceURLs:                 "PctExtResourceUrls",
	ExtFavicon:                         "ExtFavicon",
	InsecureForms:                      "InsecureForms",
	RelativeFormAction:                 "RelativeFormAction",
	ExtFormAction:                      "ExtFormAction",
	AbnormalFormAction:                 "AbnormalFormAction",
	PctNullSelfRedirectHyperlinks:      "PctNullSelfRedirectHyperlinks",
	FrequentDomainNameMismatch:         "FrequentDomainNameMismatch",
	FakeLinkInStatusBar:                "FakeLinkInStatusBar",
	RightClickDisabled:                 "RightClickDisabled",
	PopUpWindow:                        "PopUpWindow",
	SubmitInfoToEmail:                  "SubmitInfoToEmail",
	IframeOrFrame:                      "IframeOrFrame",
	MissingTitle:                       "MissingTitle",
	ImagesOnlyInForm:                   "ImagesOnlyInForm",
	SubdomainLevelRT:                   "SubdomainLevelRT",
	URLLengthRT:                        "UrlLengthRT",
	PctExtResourceURLsRT:               "PctExtResourceUrlsRT",
	AbnormalExtFormActionR:             "AbnormalExtFormActionR",
	ExtMetaScriptLinkRT:                "ExtMetaScriptLinkRT",
	PctExtNullSelfRedirectHyperlinksRT: "PctExtNullSelfRedirectHyperlinksRT",
}

// featureByName is the reverse index of featureNames.
var featureByName = func() map[string]Feature {
	m := make(map[string]Feature, numFeatures)
	for i, name := range featureNames {
		m[name] = Feature(i)
	}
	return m
}()

// String returns the published column name of f.
func (f Feature) String() string {
	if !f.Valid() {
		return "Feature(" + strconv.Itoa(int(f)) + ")"
	}
	return featureNames[f]
}

// Valid reports whether f is a column of the schema.
func (f Feature) Valid() bool {
	return f >= 0 && f < numFeatures
}

// IsPlaceholder reports whether f is a content-based column that is
// always 0 in this implementation.
func (f Feature) IsPlaceholder() bool {
	return f >= PctExtHyperlinks && f < numFeatures
}

// ParseFeatureName looks up a column by its published name.
func ParseFeatureName(name string) (Feature, bool) {
	f, ok := featureByName[name]
	return f, ok
}

// Schema returns the published column names in column order.
// The returned slice is a fresh copy.
func Schema() []string {
	names := make([]string, numFeatures)
	copy(names, featureNames[:])
	return names
}

// Vector is one row of classifier input: a value for every column of the
// schema. Booleans are encoded as 0/1.
//
// Vector is an array, so it is copied on assignment and a returned Vector
// cannot be mutated by anyone else. Two vectors extracted from the same
// URL compare equal with ==.
type Vector [numFeatures]int

// Get returns the value of f, or 0 if f is not a schema column.
func (v Vector) Get(f Feature) int {
	if !f.Valid() {
		return 0
	}
	return v[f]
}

// Values returns the values in column order.
func (v Vector) Values() []int {
	values := make([]int, numFeatures)
	copy(values, v[:])
	return values
}

// Map returns the vector keyed by published column name.
func (v Vector) Map() map[string]int {
	m := make(map[string]int, numFeatures)
	for i, name := range featureNames {
		m[name] = v[i]
	}
	return m
}

// Row returns the values as decimal strings in column order, ready to be
// written as one CSV or spreadsheet row under Schema().
func (v Vector) Row() []string {
	row := make([]string, numFeatures)
	for i, value := range v {
		row[i] = strconv.Itoa(value)
	}
	return row
}

// MarshalJSON encodes the vector as a JSON object whose keys follow the
// column order.
func (v Vector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range featureNames {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(name))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(v[i]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object produced by MarshalJSON. The object
// must contain exactly the schema columns.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if len(m) != NumFeatures {
		return fmt.Errorf("feature vector has %d columns, want %d", len(m), NumFeatures)
	}

	var out Vector
	for name, value := range m {
		f, ok := ParseFeatureName(name)
		if !ok {
			return fmt.Errorf("unknown feature %q", name)
		}
		out[f] = value
	}
	*v = out
	return nil
}
