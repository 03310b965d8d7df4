package env

import "os"

// Get reads an environment variable, falling back when it is unset or
// empty. Used during bootstrap before the full config has loaded.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
