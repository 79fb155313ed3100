package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "phishscan"

	// DefaultTimeout bounds a single URL check, reputation lookups included.
	DefaultTimeout = 30 * time.Second

	// DefaultBatchSize is the number of URLs checked concurrently.
	DefaultBatchSize = 10

	// DefaultRemoteTimeout bounds one request to a remote model server.
	DefaultRemoteTimeout = 10 * time.Second

	// DefaultReputationRate is the number of reputation lookups started per
	// second. WHOIS servers throttle aggressive clients.
	DefaultReputationRate = 2.0

	// DefaultReputationBurst is the number of lookups allowed at once.
	DefaultReputationBurst = 1

	// DefaultWhoisTimeout bounds one WHOIS query.
	DefaultWhoisTimeout = 10 * time.Second

	// DefaultDNSServer is the resolver used for DNS presence checks.
	DefaultDNSServer = "8.8.8.8:53"

	// DefaultDNSTimeout bounds one DNS exchange.
	DefaultDNSTimeout = 5 * time.Second

	// DefaultBlocklistTTL is how long a fetched blocklist is reused.
	DefaultBlocklistTTL = time.Hour

	// DefaultListenAddr is the address the HTTP handler listens on.
	DefaultListenAddr = ":8080"

	// DefaultReadTimeout is the HTTP server read timeout.
	DefaultReadTimeout = 10 * time.Second

	// DefaultWriteTimeout is the HTTP server write timeout. It must leave
	// room for a check with reputation lookups.
	DefaultWriteTimeout = 45 * time.Second

	// DefaultShutdownTimeout is how long in-flight requests get on shutdown.
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultMaxRequestBytes limits the request body of POST /predict.
	DefaultMaxRequestBytes = 64 * 1024

	// DefaultHistoryLimit is the number of verdicts `history` prints.
	DefaultHistoryLimit = 20
)

// Config holds all configuration options for phishscan.
// It is populated from defaults, the config file, the environment and CLI
// flags, in that order, and passed down explicitly.
type Config struct {
	// Timeout bounds a single URL check.
	Timeout time.Duration

	// BatchSize is the number of concurrent checks.
	BatchSize int

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is an explicit configuration file path.
	ConfigFilePath string

	// Targets are the URLs given on the command line.
	Targets []string

	// ListFile is a file with one URL per line.
	ListFile string

	// HTMLFiles are local HTML documents to harvest links from.
	HTMLFiles []string

	// TextFiles are local text documents to harvest links from.
	TextFiles []string

	// ModelPath is a YAML linear model. Empty means the embedded baseline.
	ModelPath string

	// RemoteModelURL is the predict endpoint of a remote model server.
	// Mutually exclusive with ModelPath.
	RemoteModelURL string

	// RemoteAPIKey is sent as a bearer token to the remote model server.
	RemoteAPIKey string

	// RemoteTimeout bounds one request to the remote model server.
	RemoteTimeout time.Duration

	// SensitiveWords replaces the default sensitive word list when not empty.
	SensitiveWords []string

	// Reputation enables WHOIS, DNS and blocklist lookups.
	Reputation bool

	// ReputationRate is lookups per second; 0 disables rate limiting.
	ReputationRate float64

	// ReputationBurst is the limiter burst size.
	ReputationBurst int

	// WhoisTimeout bounds one WHOIS query.
	WhoisTimeout time.Duration

	// DNSServer is the resolver address in host:port form.
	DNSServer string

	// DNSTimeout bounds one DNS exchange.
	DNSTimeout time.Duration

	// BlocklistSource is a file path or http(s) URL. Empty disables the
	// blocklist check.
	BlocklistSource string

	// BlocklistTTL is how long a fetched blocklist is reused.
	BlocklistTTL time.Duration

	// JSONReport selects JSON output.
	JSONReport bool

	// MarkdownReport selects Markdown output.
	MarkdownReport bool

	// CSVReport selects CSV output.
	CSVReport bool

	// XLSXFile is a workbook path written in addition to the selected output.
	XLSXFile string

	// ReportFile redirects the report from stdout to a file.
	ReportFile string

	// DBDir is the directory of the verdict database.
	DBDir string

	// SaveToDB stores verdicts in the database.
	SaveToDB bool

	// ListenAddr is the HTTP handler address.
	ListenAddr string

	// ReadTimeout is the HTTP server read timeout.
	ReadTimeout time.Duration

	// WriteTimeout is the HTTP server write timeout.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// MaxRequestBytes limits the POST /predict body.
	MaxRequestBytes int64

	// HistoryLimit is the number of verdicts `history` prints.
	HistoryLimit int
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:         DefaultTimeout,
		BatchSize:       DefaultBatchSize,
		RemoteTimeout:   DefaultRemoteTimeout,
		ReputationRate:  DefaultReputationRate,
		ReputationBurst: DefaultReputationBurst,
		WhoisTimeout:    DefaultWhoisTimeout,
		DNSServer:       DefaultDNSServer,
		DNSTimeout:      DefaultDNSTimeout,
		BlocklistTTL:    DefaultBlocklistTTL,
		DBDir:           XDGDataDir(),
		SaveToDB:        true,
		ListenAddr:      DefaultListenAddr,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		MaxRequestBytes: DefaultMaxRequestBytes,
		HistoryLimit:    DefaultHistoryLimit,
	}
}

// XDGDataDir returns the XDG data directory for phishscan.
// On Linux: ~/.local/share/phishscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for phishscan.
// On Linux: ~/.config/phishscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for phishscan.
// On Linux: ~/.cache/phishscan
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// HasSources reports whether any URL source is configured.
func (c *Config) HasSources() bool {
	return len(c.Targets) > 0 || c.ListFile != "" || len(c.HTMLFiles) > 0 || len(c.TextFiles) > 0
}

// Validate checks the settings shared by every command.
// It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.ModelPath != "" && c.RemoteModelURL != "" {
		return ErrConflictingModels
	}
	if c.RemoteModelURL != "" {
		u, err := url.Parse(c.RemoteModelURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidRemoteURL
		}
	}
	if c.RemoteTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.ReputationRate < 0 {
		return ErrInvalidReputationRate
	}
	if c.ReputationBurst <= 0 && c.ReputationRate > 0 {
		return ErrInvalidReputationRate
	}
	if c.BlocklistTTL < 0 {
		return ErrInvalidBlocklistTTL
	}
	formats := 0
	for _, on := range []bool{c.JSONReport, c.MarkdownReport, c.CSVReport} {
		if on {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}
	if c.MaxRequestBytes <= 0 {
		return ErrInvalidMaxRequestBytes
	}
	return nil
}

// ValidateCheck validates the configuration of the check command, which
// additionally needs at least one URL source.
func (c *Config) ValidateCheck() error {
	if !c.HasSources() {
		return ErrNoTarget
	}
	return c.Validate()
}
