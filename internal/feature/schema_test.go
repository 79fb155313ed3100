package feature

import (
	"encoding/json"
	"strings"
	"testing"
)

// publishedSchema is the column list the deployed classifier was trained
// on. Any change here breaks every externally trained model.
var publishedSchema = []string{
	"NumDots", "SubdomainLevel", "PathLevel", "UrlLength", "NumDash",
	"NumDashInHostname", "AtSymbol", "TildeSymbol", "NumUnderscore", "NumPercent",
	"NumQueryComponents", "NumAmpersand", "NumHash", "NumNumericChars", "NoHttps",
	"RandomString", "IpAddress", "DomainInSubdomains", "DomainInPaths", "HttpsInHostname",
	"HostnameLength", "PathLength", "QueryLength", "DoubleSlashInPath", "NumSensitiveWords",
	"EmbeddedBrandName", "PctExtHyperlinks", "PctExtResourceUrls", "ExtFavicon", "InsecureForms",
	"RelativeFormAction", "ExtFormAction", "AbnormalFormAction", "PctNullSelfRedirectHyperlinks",
	"FrequentDomainNameMismatch", "FakeLinkInStatusBar", "RightClickDisabled", "PopUpWindow",
	"SubmitInfoToEmail", "IframeOrFrame", "MissingTitle", "ImagesOnlyInForm", "SubdomainLevelRT",
	"UrlLengthRT", "PctExtResourceUrlsRT", "AbnormalExtFormActionR", "ExtMetaScriptLinkRT",
	"PctExtNullSelfRedirectHyperlinksRT",
}

func TestSchema(t *testing.T) {
	t.Parallel()

	got := Schema()
	if len(got) != len(publishedSchema) {
		t.Fatalf("schema has %d columns, want %d", len(got), len(publishedSchema))
	}
	for i := range got {
		if got[i] != publishedSchema[i] {
			t.Errorf("column %d = %q, want %q", i, got[i], publishedSchema[i])
		}
	}

	t.Run("names are unique and non-empty", func(t *testing.T) {
		t.Parallel()
		seen := make(map[string]bool)
		for _, name := range Schema() {
			if name == "" {
				t.Error("empty column name")
			}
			if seen[name] {
				t.Errorf("duplicate column %q", name)
			}
			seen[name] = true
		}
	})

	t.Run("returns a copy", func(t *testing.T) {
		t.Parallel()
		s := Schema()
		s[0] = "mutated"
		if Schema()[0] != "NumDots" {
			t.Error("Schema() exposed internal storage")
		}
	})

	t.Run("placeholder count", func(t *testing.T) {
		t.Parallel()
		n := 0
		for i := range NumFeatures {
			if Feature(i).IsPlaceholder() {
				n++
			}
		}
		if n != 22 {
			t.Errorf("placeholder columns = %d, want 22", n)
		}
	})
}

func TestParseFeatureName(t *testing.T) {
	t.Parallel()

	for i, name := range publishedSchema {
		f, ok := ParseFeatureName(name)
		if !ok {
			t.Errorf("ParseFeatureName(%q) not found", name)
			continue
		}
		if int(f) != i {
			t.Errorf("ParseFeatureName(%q) = %d, want %d", name, f, i)
		}
		if f.String() != name {
			t.Errorf("Feature(%d).String() = %q, want %q", f, f.String(), name)
		}
	}

	if _, ok := ParseFeatureName("NumDot"); ok {
		t.Error("ParseFeatureName accepted an unknown name")
	}
	if got := Feature(-1).String(); got != "Feature(-1)" {
		t.Errorf("invalid feature String() = %q", got)
	}
}

func TestVector_KeySet(t *testing.T) {
	t.Parallel()

	for _, u := range []string{"", "http://a.com", "!!!", "https://x.y.z/a?b=c&d#e"} {
		m := Extract(u).Map()
		if len(m) != len(publishedSchema) {
			t.Errorf("Extract(%q) has %d keys, want %d", u, len(m), len(publishedSchema))
		}
		for _, name := range publishedSchema {
			if _, ok := m[name]; !ok {
				t.Errorf("Extract(%q) is missing %q", u, name)
			}
		}
	}
}

func TestVector_JSON(t *testing.T) {
	t.Parallel()

	v := Extract("http://192.168.1.1/login.php?user=admin")

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	t.Run("keys follow column order", func(t *testing.T) {
		t.Parallel()
		s := string(data)
		last := -1
		for _, name := range publishedSchema {
			idx := strings.Index(s, `"`+name+`":`)
			if idx < 0 {
				t.Fatalf("key %q missing from %s", name, s)
			}
			if idx < last {
				t.Errorf("key %q out of order", name)
			}
			last = idx
		}
	})

	t.Run("decodes back", func(t *testing.T) {
		t.Parallel()
		var got Vector
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if got != v {
			t.Errorf("decoded vector differs: %v != %v", got, v)
		}
	})

	t.Run("rejects unknown or missing columns", func(t *testing.T) {
		t.Parallel()
		var got Vector
		if err := json.Unmarshal([]byte(`{"NumDots":1}`), &got); err == nil {
			t.Error("expected error for missing columns")
		}

		m := v.Map()
		delete(m, "NumDots")
		m["NumDot"] = 1
		bad, err := json.Marshal(m)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if err := json.Unmarshal(bad, &got); err == nil {
			t.Error("expected error for unknown column")
		}
	})
}

func TestVector_RowAndValues(t *testing.T) {
	t.Parallel()

	v := Extract("http://a.com")
	row := v.Row()
	values := v.Values()
	if len(row) != NumFeatures || len(values) != NumFeatures {
		t.Fatalf("row/values length = %d/%d, want %d", len(row), len(values), NumFeatures)
	}
	if row[URLLength] != "12" {
		t.Errorf("row[UrlLength] = %q, want 12", row[URLLength])
	}
	values[0] = 99
	if v.Get(NumDots) == 99 {
		t.Error("Values() exposed internal storage")
	}
	if v.Get(Feature(NumFeatures)) != 0 {
		t.Error("Get on an invalid feature should return 0")
	}
}
