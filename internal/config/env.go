package config

import "os"

// Environment variable names for overrides. The credential variables
// exist so deployments can keep the private key out of the config file.
const (
	EnvConfig       = "DRIVESHELF_CONFIG"
	EnvClientEmail  = "DRIVESHELF_CLIENT_EMAIL"
	EnvPrivateKey   = "DRIVESHELF_PRIVATE_KEY"
	EnvPrivateKeyID = "DRIVESHELF_PRIVATE_KEY_ID"
	EnvCachePath    = "DRIVESHELF_CACHE_PATH"
)

// ApplyEnvOverrides overlays environment variables onto cfg. Environment
// values win over config file values.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvClientEmail); v != "" {
		cfg.ServiceAccount.ClientEmail = v
	}

	if v := os.Getenv(EnvPrivateKey); v != "" {
		cfg.ServiceAccount.PrivateKey = v
	}

	if v := os.Getenv(EnvPrivateKeyID); v != "" {
		cfg.ServiceAccount.PrivateKeyID = v
	}

	if v := os.Getenv(EnvCachePath); v != "" {
		cfg.Cache.Path = v
	}
}
