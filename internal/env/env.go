//go:build !js || !wasm

package env

import "os"

// Get returns the value of key and whether it was set to something non-empty.
func Get(key string) (string, bool) {
	value := os.Getenv(key)
	if value == "" {
		return "", false
	}
	return value, true
}
