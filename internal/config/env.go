package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override the configuration file. They carry
// secrets and deployment settings that do not belong in a shared file.
const (
	EnvModel          = "PHISHSCAN_MODEL"
	EnvRemoteModelURL = "PHISHSCAN_REMOTE_MODEL_URL"
	EnvRemoteAPIKey   = "PHISHSCAN_REMOTE_API_KEY"
	EnvListenAddr     = "PHISHSCAN_LISTEN_ADDR"
	EnvDBDir          = "PHISHSCAN_DB_DIR"
	EnvBlocklist      = "PHISHSCAN_BLOCKLIST"
	EnvDNSServer      = "PHISHSCAN_DNS_SERVER"
)

// DefaultEnvFile is the dotenv file read from the current directory.
const DefaultEnvFile = ".env"

// LookupFunc reports the value of an environment variable.
type LookupFunc func(key string) (string, bool)

// ReadEnvFile reads a dotenv file. A missing file yields an empty map.
func ReadEnvFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return values, nil
}

// EnvLookup returns a LookupFunc that prefers the process environment and
// falls back to the dotenv values.
func EnvLookup(dotenv map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

// ApplyEnv copies every non-empty PHISHSCAN_* value onto c.
func (c *Config) ApplyEnv(lookup LookupFunc) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set(EnvModel, &c.ModelPath)
	set(EnvRemoteModelURL, &c.RemoteModelURL)
	set(EnvRemoteAPIKey, &c.RemoteAPIKey)
	set(EnvListenAddr, &c.ListenAddr)
	set(EnvDBDir, &c.DBDir)
	set(EnvBlocklist, &c.BlocklistSource)
	set(EnvDNSServer, &c.DNSServer)
}
