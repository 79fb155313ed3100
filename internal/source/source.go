package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// linkPattern matches http(s) links in free text. The match runs to the
// next whitespace, so trailing punctuation is kept.
var linkPattern = regexp.MustCompile(`https?://\S+`)

// htmlLinkAttrs lists the element/attribute pairs harvested from HTML.
var htmlLinkAttrs = []struct {
	selector string
	attr     string
}{
	{"a[href]", "href"},
	{"area[href]", "href"},
	{"form[action]", "action"},
	{"iframe[src]", "src"},
	{"frame[src]", "src"},
	{"link[href]", "href"},
	{"script[src]", "src"},
	{"img[src]", "src"},
}

// ReadList reads one URL per line. Blank lines and lines starting with
// '#' are skipped; surrounding whitespace is trimmed.
func ReadList(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL list: %w", err)
	}
	return urls, nil
}

// ReadListFile opens path and calls ReadList.
func ReadListFile(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // path is provided by the user
	if err != nil {
		return nil, fmt.Errorf("could not open URL list: %w", err)
	}
	defer f.Close()
	return ReadList(f)
}

// FromText returns every http(s) link found in text, in order of
// appearance.
func FromText(text string) []string {
	return linkPattern.FindAllString(text, -1)
}

// FromTextFile reads path and calls FromText.
func FromTextFile(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by the user
	if err != nil {
		return nil, fmt.Errorf("could not read text file: %w", err)
	}
	return FromText(string(data)), nil
}

// FromHTML returns the absolute http(s) links referenced by an HTML
// document's anchors, forms, frames, stylesheets, scripts and images, in
// document order per element kind. Relative links are skipped.
func FromHTML(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var urls []string
	for _, la := range htmlLinkAttrs {
		doc.Find(la.selector).Each(func(_ int, s *goquery.Selection) {
			v, ok := s.Attr(la.attr)
			if !ok {
				return
			}
			v = strings.TrimSpace(v)
			if isAbsoluteHTTP(v) {
				urls = append(urls, v)
			}
		})
	}
	return urls, nil
}

// FromHTMLFile opens path and calls FromHTML.
func FromHTMLFile(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // path is provided by the user
	if err != nil {
		return nil, fmt.Errorf("could not open HTML file: %w", err)
	}
	defer f.Close()
	return FromHTML(f)
}

// Dedup removes duplicates while preserving first-seen order.
func Dedup(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func isAbsoluteHTTP(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
