// Package env reads process environment variables that are consulted before
// the envconfig-backed configuration is available.
package env

import "os"

// Prefix namespaces every variable owned by this service.
const Prefix = "STOREADMIN_"

// Get returns the prefixed variable, then the bare one, then fallback.
// Bootstrap code such as the logger runs before config.Load, so it accepts
// both spellings.
func Get(key, fallback string) string {
	for _, name := range []string{Prefix + key, key} {
		if val, ok := os.LookupEnv(name); ok && val != "" {
			return val
		}
	}
	return fallback
}
