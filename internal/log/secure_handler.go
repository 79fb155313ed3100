package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// MaskValue replaces every redacted value.
const MaskValue = "***REDACTED***"

// defaultKeys are attribute keys whose values are never logged.
var defaultKeys = []string{
	"authorization", "proxy-authorization", "cookie", "set-cookie",
	"x-api-key", "x-auth-token",
	"password", "passwd", "secret", "token", "access_token", "refresh_token",
	"api_key", "apikey", "api-key", "private_key", "secret_key",
	"session", "session_id", "sessionid", "sid", "jsessionid",
	"credential", "credentials", "auth",
}

// keyFragments hide any key that contains them, e.g. "remote_api_key".
// "key" alone is absent: "cache_key" and "primary_key" are harmless.
var keyFragments = []string{
	"password", "passwd", "secret", "token", "auth", "credential",
	"private", "api_key", "apikey",
}

// secretValues match values that are secrets whatever their key.
var secretValues = []*regexp.Regexp{
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`), // JWT
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
	regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`),
	regexp.MustCompile(`^[a-zA-Z0-9]{32,}$`),
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
}

var (
	// urlPassword matches "scheme://user:password@". A user without a
	// password is left alone: "http://bank.com@evil.example/" is a lure
	// the reader of the log has to see.
	urlPassword = regexp.MustCompile(`(?i)([a-z][a-z0-9+.-]*://[^/?#\s:@]*):[^/?#\s@]*@`)

	// urlCredentialParam matches credential query parameters.
	urlCredentialParam = regexp.MustCompile(`(?i)([?&](?:api_?key|access_token|token|password|passwd|pass|pwd|secret)=)[^&#\s]*`)

	// urlEmailParam matches the local part of an address carried in a
	// query value. Phishing links often embed the target's mailbox.
	urlEmailParam = regexp.MustCompile(`([?&][^=&#\s]*=)[^&#\s@]*?(@|%40)`)
)

// Redactor decides which parts of a log record are hidden.
type Redactor struct {
	keys       map[string]struct{}
	maskEmails bool
}

// RedactorOption configures a Redactor.
type RedactorOption func(*Redactor)

// WithSensitiveKeys hides the values of additional attribute keys.
// Keys are compared case-insensitively.
func WithSensitiveKeys(keys ...string) RedactorOption {
	return func(r *Redactor) {
		for _, k := range keys {
			r.keys[strings.ToLower(k)] = struct{}{}
		}
	}
}

// WithEmailMasking toggles masking of mailbox names in URL query values.
// It is on by default.
func WithEmailMasking(enabled bool) RedactorOption {
	return func(r *Redactor) {
		r.maskEmails = enabled
	}
}

// NewRedactor creates a Redactor with the default rules.
func NewRedactor(opts ...RedactorOption) *Redactor {
	r := &Redactor{
		keys:       make(map[string]struct{}, len(defaultKeys)),
		maskEmails: true,
	}
	for _, k := range defaultKeys {
		r.keys[k] = struct{}{}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SensitiveKey reports whether values logged under key are hidden.
func (r *Redactor) SensitiveKey(key string) bool {
	key = strings.ToLower(key)
	if _, ok := r.keys[key]; ok {
		return true
	}
	for _, fragment := range keyFragments {
		if strings.Contains(key, fragment) {
			return true
		}
	}
	return false
}

// URL masks credentials embedded in the URLs found in s. Hosts, paths
// and ordinary parameters stay readable.
func (r *Redactor) URL(s string) string {
	if !strings.Contains(s, "://") && !strings.ContainsAny(s, "?&") {
		return s
	}
	s = urlPassword.ReplaceAllString(s, "${1}:"+MaskValue+"@")
	s = urlCredentialParam.ReplaceAllString(s, "${1}"+MaskValue)
	if r.maskEmails {
		s = urlEmailParam.ReplaceAllString(s, "${1}"+MaskValue+"${2}")
	}
	return s
}

// Attr returns a with sensitive content replaced. A group under a
// sensitive key is hidden as a whole; other groups are walked.
func (r *Redactor) Attr(a slog.Attr) slog.Attr {
	if r.SensitiveKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}

	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		members := a.Value.Group()
		out := make([]slog.Attr, len(members))
		for i, m := range members {
			out[i] = r.Attr(m)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}

	var s string
	switch a.Value.Kind() {
	case slog.KindString:
		s = a.Value.String()
		if secretValue(s) {
			return slog.String(a.Key, MaskValue)
		}
	case slog.KindAny:
		// net/http and url errors quote the URL they failed on.
		switch v := a.Value.Any().(type) {
		case error:
			s = v.Error()
		case fmt.Stringer:
			s = v.String()
		default:
			return a
		}
	default:
		return a
	}

	if masked := r.URL(s); masked != s {
		return slog.String(a.Key, masked)
	}
	return a
}

func secretValue(s string) bool {
	for _, re := range secretValues {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// MaskURLCredentials is URL with the default Redactor.
func MaskURLCredentials(s string) string {
	return defaultRedactor.URL(s)
}

var defaultRedactor = NewRedactor()

// SecureHandler is an slog.Handler that redacts records before passing
// them on.
type SecureHandler struct {
	next     slog.Handler
	redactor *Redactor
}

// NewSecureHandler wraps next. A nil next uses slog.Default's handler.
func NewSecureHandler(next slog.Handler, opts ...RedactorOption) *SecureHandler {
	if next == nil {
		next = slog.Default().Handler()
	}
	return &SecureHandler{next: next, redactor: NewRedactor(opts...)}
}

// Enabled implements slog.Handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler. The message is scanned for URLs too.
func (h *SecureHandler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, h.redactor.URL(rec.Message), rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redactor.Attr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

// WithAttrs implements slog.Handler.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redactor.Attr(a)
	}
	return &SecureHandler{next: h.next.WithAttrs(redacted), redactor: h.redactor}
}

// WithGroup implements slog.Handler.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{next: h.next.WithGroup(name), redactor: h.redactor}
}

// NewSecureLogger creates a redacting text logger for the CLI.
// verbose selects Debug instead of Warn.
func NewSecureLogger(w io.Writer, verbose bool, opts ...RedactorOption) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, handlerOptions(verbose)), opts...))
}

// NewSecureJSONLogger is NewSecureLogger with JSON lines, for serve.
func NewSecureJSONLogger(w io.Writer, verbose bool, opts ...RedactorOption) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, handlerOptions(verbose)), opts...))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
