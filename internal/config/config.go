// Package config implements TOML configuration loading with environment
// overrides for driveshelf. Credentials and folder IDs are optional: an
// unconfigured category is a valid state and means the corresponding
// indexer returns empty results without touching the network.
package config

import (
	"strings"
	"time"
)

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	ServiceAccount ServiceAccountConfig `toml:"service_account"`
	Folders        FoldersConfig        `toml:"folders"`
	Cache          CacheConfig          `toml:"cache"`
	Tree           TreeConfig           `toml:"tree"`
	Network        NetworkConfig        `toml:"network"`
	Logging        LoggingConfig        `toml:"logging"`
}

// ServiceAccountConfig holds the service-account credential used for
// server-to-server authentication against the content store.
// The private key may contain literal newlines or "\n" escapes; both
// forms are accepted (escaped keys are common when the key travels
// through an environment variable).
type ServiceAccountConfig struct {
	ClientEmail  string `toml:"client_email"`
	PrivateKey   string `toml:"private_key"`
	PrivateKeyID string `toml:"private_key_id"`
}

// Configured reports whether all credential fields are present.
func (s ServiceAccountConfig) Configured() bool {
	return s.ClientEmail != "" && s.PrivateKey != "" && s.PrivateKeyID != ""
}

// NormalizedKey returns the private key with "\n" escapes expanded to
// real newlines.
func (s ServiceAccountConfig) NormalizedKey() string {
	return strings.ReplaceAll(s.PrivateKey, `\n`, "\n")
}

// FoldersConfig maps content categories to their top-level folder IDs in
// the remote store. An empty ID disables that category.
type FoldersConfig struct {
	Newsletters string `toml:"newsletters"`
	Recordings  string `toml:"recordings"`
	Resources   string `toml:"resources"`
	Committees  string `toml:"committees"`
}

// CacheConfig controls the edge result cache.
type CacheConfig struct {
	TTL     string `toml:"ttl"`
	Path    string `toml:"path"`
	Enabled bool   `toml:"enabled"`
}

// TTLDuration returns the parsed TTL, falling back to the default when
// unset or malformed.
func (c CacheConfig) TTLDuration() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d <= 0 {
		return DefaultCacheTTL
	}

	return d
}

// TreeConfig bounds the recursive folder-tree builder.
type TreeConfig struct {
	MaxDepth      int `toml:"max_depth"`
	ParallelLists int `toml:"parallel_lists"`
}

// NetworkConfig controls HTTP client behavior.
type NetworkConfig struct {
	Timeout   string `toml:"timeout"`
	UserAgent string `toml:"user_agent"`
}

// TimeoutDuration returns the parsed HTTP timeout, falling back to the
// default when unset or malformed.
func (n NetworkConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(n.Timeout)
	if err != nil || d <= 0 {
		return DefaultHTTPTimeout
	}

	return d
}

// LoggingConfig controls log output behavior.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}
