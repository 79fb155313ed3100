package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig pins the default values so changes to them are intentional.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	tests := []struct {
		name string
		got  any
		want any
	}{
		{name: "Timeout", got: cfg.Timeout, want: 30 * time.Second},
		{name: "BatchSize", got: cfg.BatchSize, want: 10},
		{name: "RemoteTimeout", got: cfg.RemoteTimeout, want: 10 * time.Second},
		{name: "ReputationRate", got: cfg.ReputationRate, want: 2.0},
		{name: "ReputationBurst", got: cfg.ReputationBurst, want: 1},
		{name: "DNSServer", got: cfg.DNSServer, want: "8.8.8.8:53"},
		{name: "BlocklistTTL", got: cfg.BlocklistTTL, want: time.Hour},
		{name: "ListenAddr", got: cfg.ListenAddr, want: ":8080"},
		{name: "SaveToDB", got: cfg.SaveToDB, want: true},
		{name: "DBDir", got: cfg.DBDir, want: XDGDataDir()},
		{name: "MaxRequestBytes", got: cfg.MaxRequestBytes, want: int64(64 * 1024)},
		{name: "HistoryLimit", got: cfg.HistoryLimit, want: 20},
		{name: "Reputation", got: cfg.Reputation, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.got != tt.want {
				t.Errorf("default %s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "defaults", modify: func(*Config) {}, wantErr: nil},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }, wantErr: ErrInvalidTimeout},
		{name: "negative remote timeout", modify: func(c *Config) { c.RemoteTimeout = -time.Second }, wantErr: ErrInvalidTimeout},
		{name: "zero batch size", modify: func(c *Config) { c.BatchSize = 0 }, wantErr: ErrInvalidBatchSize},
		{
			name: "model and remote model",
			modify: func(c *Config) {
				c.ModelPath = "model.yaml"
				c.RemoteModelURL = "http://localhost:9000/predict"
			},
			wantErr: ErrConflictingModels,
		},
		{name: "relative remote URL", modify: func(c *Config) { c.RemoteModelURL = "/predict" }, wantErr: ErrInvalidRemoteURL},
		{name: "ftp remote URL", modify: func(c *Config) { c.RemoteModelURL = "ftp://host/predict" }, wantErr: ErrInvalidRemoteURL},
		{name: "valid remote URL", modify: func(c *Config) { c.RemoteModelURL = "https://models.example/predict" }, wantErr: nil},
		{name: "negative rate", modify: func(c *Config) { c.ReputationRate = -1 }, wantErr: ErrInvalidReputationRate},
		{name: "zero burst with limiter", modify: func(c *Config) { c.ReputationBurst = 0 }, wantErr: ErrInvalidReputationRate},
		{
			name: "zero burst without limiter",
			modify: func(c *Config) {
				c.ReputationRate = 0
				c.ReputationBurst = 0
			},
			wantErr: nil,
		},
		{name: "negative blocklist ttl", modify: func(c *Config) { c.BlocklistTTL = -time.Minute }, wantErr: ErrInvalidBlocklistTTL},
		{
			name: "json and markdown",
			modify: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
		{
			name: "markdown and csv",
			modify: func(c *Config) {
				c.MarkdownReport = true
				c.CSVReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
		{
			name: "csv with xlsx",
			modify: func(c *Config) {
				c.CSVReport = true
				c.XLSXFile = "out.xlsx"
			},
			wantErr: nil,
		},
		{name: "zero request size", modify: func(c *Config) { c.MaxRequestBytes = 0 }, wantErr: ErrInvalidMaxRequestBytes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateCheck(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if err := cfg.ValidateCheck(); !errors.Is(err, ErrNoTarget) {
		t.Errorf("got %v, want ErrNoTarget", err)
	}

	for _, set := range []func(*Config){
		func(c *Config) { c.Targets = []string{"http://a.com"} },
		func(c *Config) { c.ListFile = "urls.txt" },
		func(c *Config) { c.HTMLFiles = []string{"mail.html"} },
		func(c *Config) { c.TextFiles = []string{"mail.txt"} },
	} {
		cfg := NewConfig()
		set(cfg)
		if !cfg.HasSources() {
			t.Error("HasSources() = false")
		}
		if err := cfg.ValidateCheck(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}

	cfg = NewConfig()
	cfg.Targets = []string{"http://a.com"}
	cfg.BatchSize = -1
	if err := cfg.ValidateCheck(); !errors.Is(err, ErrInvalidBatchSize) {
		t.Errorf("got %v, want ErrInvalidBatchSize", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cf, err := LoadConfigFile("/nonexistent/path/.phishscan")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cf != nil {
			t.Error("expected nil file when not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `timeout: 45s
batch_size: 4
model: /etc/phishscan/model.yaml
sensitive_words: [verify, wallet]
reputation:
  enabled: true
  rate: 0
  blocklist: https://feeds.example/blocklist.txt
  blocklist_ttl: 30m
server:
  addr: 127.0.0.1:9090
  write_timeout: 1m
database:
  save: false
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Timeout != 45*time.Second || cf.BatchSize != 4 {
			t.Errorf("timeout/batch = %v/%d", cf.Timeout, cf.BatchSize)
		}
		if cf.Reputation.Enabled == nil || !*cf.Reputation.Enabled {
			t.Error("expected reputation.enabled")
		}
		if cf.Reputation.Rate == nil || *cf.Reputation.Rate != 0 {
			t.Error("expected explicit zero rate")
		}
		if cf.Reputation.BlocklistTTL != 30*time.Minute {
			t.Errorf("blocklist_ttl = %v", cf.Reputation.BlocklistTTL)
		}

		cfg := NewConfig()
		cfg.ApplyFile(cf)
		if cfg.Timeout != 45*time.Second || cfg.BatchSize != 4 {
			t.Errorf("applied timeout/batch = %v/%d", cfg.Timeout, cfg.BatchSize)
		}
		if cfg.ModelPath != "/etc/phishscan/model.yaml" {
			t.Errorf("ModelPath = %q", cfg.ModelPath)
		}
		if !cfg.Reputation || cfg.ReputationRate != 0 {
			t.Errorf("reputation = %v rate %v", cfg.Reputation, cfg.ReputationRate)
		}
		if cfg.BlocklistSource != "https://feeds.example/blocklist.txt" {
			t.Errorf("BlocklistSource = %q", cfg.BlocklistSource)
		}
		if cfg.ListenAddr != "127.0.0.1:9090" || cfg.WriteTimeout != time.Minute {
			t.Errorf("server = %q %v", cfg.ListenAddr, cfg.WriteTimeout)
		}
		if cfg.ReadTimeout != DefaultReadTimeout {
			t.Errorf("unset ReadTimeout changed to %v", cfg.ReadTimeout)
		}
		if cfg.SaveToDB {
			t.Error("expected SaveToDB to be false")
		}
		if strings.Join(cfg.SensitiveWords, ",") != "verify,wallet" {
			t.Errorf("SensitiveWords = %v", cfg.SensitiveWords)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("returns error for a malformed duration", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("timeout: soon\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for malformed duration")
		}
	})
}

func TestApplyFileNil(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.ApplyFile(nil)
	if cfg.Timeout != DefaultTimeout {
		t.Error("ApplyFile(nil) changed the config")
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("timeout: 1s\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		if got := FindConfigFile("/nonexistent/path/config.yaml"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})

	t.Run("finds file in current directory", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)
		if err := os.WriteFile(path, []byte("batch_size: 2\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		t.Chdir(dir)

		got := FindConfigFile("")
		if filepath.Base(got) != DefaultConfigFile || filepath.Base(filepath.Dir(got)) != filepath.Base(dir) {
			t.Errorf("FindConfigFile() = %q, want file in %q", got, dir)
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("explicit missing file is an error", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("got %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("explicit file is applied", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("batch_size: 3\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.BatchSize != 3 || cfg.ConfigFilePath != path {
			t.Errorf("BatchSize/ConfigFilePath = %d/%q", cfg.BatchSize, cfg.ConfigFilePath)
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		EnvRemoteModelURL: "https://models.example/predict",
		EnvRemoteAPIKey:   "s3cret",
		EnvListenAddr:     "0.0.0.0:9000",
		EnvDBDir:          "",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := NewConfig()
	cfg.ApplyEnv(lookup)

	if cfg.RemoteModelURL != "https://models.example/predict" {
		t.Errorf("RemoteModelURL = %q", cfg.RemoteModelURL)
	}
	if cfg.RemoteAPIKey != "s3cret" {
		t.Errorf("RemoteAPIKey = %q", cfg.RemoteAPIKey)
	}
	if cfg.ListenAddr != "0.0.0.0:9000" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.DBDir != XDGDataDir() {
		t.Errorf("empty value should not override DBDir, got %q", cfg.DBDir)
	}
}

func TestReadEnvFile(t *testing.T) {
	t.Parallel()

	t.Run("reads values", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultEnvFile)
		content := "# secrets\nPHISHSCAN_REMOTE_API_KEY=abc123\nPHISHSCAN_LISTEN_ADDR=\":7070\"\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}

		values, err := ReadEnvFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if values[EnvRemoteAPIKey] != "abc123" || values[EnvListenAddr] != ":7070" {
			t.Errorf("values = %v", values)
		}
	})

	t.Run("missing file is empty", func(t *testing.T) {
		t.Parallel()

		values, err := ReadEnvFile(filepath.Join(t.TempDir(), DefaultEnvFile))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(values) != 0 {
			t.Errorf("values = %v", values)
		}
	})
}

func TestEnvLookup(t *testing.T) {
	t.Setenv("PHISHSCAN_TEST_ONLY", "from-process")

	lookup := EnvLookup(map[string]string{
		"PHISHSCAN_TEST_ONLY":   "from-dotenv",
		"PHISHSCAN_DOTENV_ONLY": "dotenv",
	})

	if v, _ := lookup("PHISHSCAN_TEST_ONLY"); v != "from-process" {
		t.Errorf("process environment should win, got %q", v)
	}
	if v, ok := lookup("PHISHSCAN_DOTENV_ONLY"); !ok || v != "dotenv" {
		t.Errorf("dotenv fallback = %q, %v", v, ok)
	}
	if _, ok := lookup("PHISHSCAN_MISSING_KEY"); ok {
		t.Error("missing key reported as present")
	}
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
		"cache":  XDGCacheDir(),
	} {
		if filepath.Base(dir) != AppName {
			t.Errorf("XDG %s dir %q does not end in %q", name, dir, AppName)
		}
	}
}
