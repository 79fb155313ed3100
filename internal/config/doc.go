// Package config provides the configuration for phishscan: defaults,
// validation, the optional .phishscan YAML file and environment overrides.
package config
