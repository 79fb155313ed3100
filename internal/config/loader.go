package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is the configuration file name looked up in the
	// current and home directories.
	DefaultConfigFile = ".phishscan"

	// XDGConfigFile is the configuration file name inside XDGConfigDir.
	XDGConfigFile = "config.yaml"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .phishscan configuration file.
// Zero values leave the corresponding Config field untouched.
type File struct {
	Timeout        time.Duration  `yaml:"timeout,omitempty"`
	BatchSize      int            `yaml:"batch_size,omitempty"`
	Model          string         `yaml:"model,omitempty"`
	RemoteModel    string         `yaml:"remote_model,omitempty"`
	RemoteTimeout  time.Duration  `yaml:"remote_timeout,omitempty"`
	SensitiveWords []string       `yaml:"sensitive_words,omitempty"`
	Reputation     ReputationFile `yaml:"reputation,omitempty"`
	Server         ServerFile     `yaml:"server,omitempty"`
	Database       DatabaseFile   `yaml:"database,omitempty"`
}

// ReputationFile is the reputation section of the configuration file.
type ReputationFile struct {
	Enabled      *bool         `yaml:"enabled,omitempty"`
	Rate         *float64      `yaml:"rate,omitempty"`
	Burst        int           `yaml:"burst,omitempty"`
	WhoisTimeout time.Duration `yaml:"whois_timeout,omitempty"`
	DNSServer    string        `yaml:"dns_server,omitempty"`
	DNSTimeout   time.Duration `yaml:"dns_timeout,omitempty"`
	Blocklist    string        `yaml:"blocklist,omitempty"`
	BlocklistTTL time.Duration `yaml:"blocklist_ttl,omitempty"`
}

// ServerFile is the server section of the configuration file.
type ServerFile struct {
	Addr            string        `yaml:"addr,omitempty"`
	ReadTimeout     time.Duration `yaml:"read_timeout,omitempty"`
	WriteTimeout    time.Duration `yaml:"write_timeout,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty"`
	MaxRequestBytes int64         `yaml:"max_request_bytes,omitempty"`
}

// DatabaseFile is the database section of the configuration file.
type DatabaseFile struct {
	Dir  string `yaml:"dir,omitempty"`
	Save *bool  `yaml:"save,omitempty"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. configPath, if specified
//  2. .phishscan in the current directory
//  3. .phishscan in the user's home directory
//  4. config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), XDGConfigFile))

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ApplyFile copies every value set in f onto c.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}

	if f.Timeout != 0 {
		c.Timeout = f.Timeout
	}
	if f.BatchSize != 0 {
		c.BatchSize = f.BatchSize
	}
	if f.Model != "" {
		c.ModelPath = f.Model
	}
	if f.RemoteModel != "" {
		c.RemoteModelURL = f.RemoteModel
	}
	if f.RemoteTimeout != 0 {
		c.RemoteTimeout = f.RemoteTimeout
	}
	if len(f.SensitiveWords) > 0 {
		c.SensitiveWords = f.SensitiveWords
	}

	rep := f.Reputation
	if rep.Enabled != nil {
		c.Reputation = *rep.Enabled
	}
	if rep.Rate != nil {
		c.ReputationRate = *rep.Rate
	}
	if rep.Burst != 0 {
		c.ReputationBurst = rep.Burst
	}
	if rep.WhoisTimeout != 0 {
		c.WhoisTimeout = rep.WhoisTimeout
	}
	if rep.DNSServer != "" {
		c.DNSServer = rep.DNSServer
	}
	if rep.DNSTimeout != 0 {
		c.DNSTimeout = rep.DNSTimeout
	}
	if rep.Blocklist != "" {
		c.BlocklistSource = rep.Blocklist
	}
	if rep.BlocklistTTL != 0 {
		c.BlocklistTTL = rep.BlocklistTTL
	}

	srv := f.Server
	if srv.Addr != "" {
		c.ListenAddr = srv.Addr
	}
	if srv.ReadTimeout != 0 {
		c.ReadTimeout = srv.ReadTimeout
	}
	if srv.WriteTimeout != 0 {
		c.WriteTimeout = srv.WriteTimeout
	}
	if srv.ShutdownTimeout != 0 {
		c.ShutdownTimeout = srv.ShutdownTimeout
	}
	if srv.MaxRequestBytes != 0 {
		c.MaxRequestBytes = srv.MaxRequestBytes
	}

	if f.Database.Dir != "" {
		c.DBDir = f.Database.Dir
	}
	if f.Database.Save != nil {
		c.SaveToDB = *f.Database.Save
	}
}

// Load builds a Config from defaults and the configuration file found by
// FindConfigFile. An explicit path that does not exist is an error; a
// missing implicit file is not.
func Load(configPath string) (*Config, error) {
	cfg := NewConfig()
	cfg.ConfigFilePath = configPath

	path := FindConfigFile(configPath)
	if path == "" {
		if configPath != "" {
			return nil, ErrConfigNotFound
		}
		return cfg, nil
	}

	f, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyFile(f)
	return cfg, nil
}
