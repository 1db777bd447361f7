package config

import "time"

// Default values applied before the config file and environment are read.
const (
	// DefaultCacheTTL is how long indexer results stay fresh. Five
	// minutes keeps the site responsive to new uploads without hammering
	// the remote store on every page view.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultHTTPTimeout prevents hung connections from blocking a
	// request indefinitely.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultTreeMaxDepth bounds recursive tree construction. The
	// content store's real trees are 2-3 levels deep; 10 is generous
	// headroom while still terminating on pathological nesting.
	DefaultTreeMaxDepth = 10

	// DefaultTreeParallelLists caps concurrent listing calls per tree
	// build.
	DefaultTreeParallelLists = 8

	// DefaultUserAgent identifies this client to the remote store.
	DefaultUserAgent = "driveshelf/0.1"
)

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			TTL:     DefaultCacheTTL.String(),
			Enabled: true,
		},
		Tree: TreeConfig{
			MaxDepth:      DefaultTreeMaxDepth,
			ParallelLists: DefaultTreeParallelLists,
		},
		Network: NetworkConfig{
			Timeout:   DefaultHTTPTimeout.String(),
			UserAgent: DefaultUserAgent,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
