package env

import (
	"fmt"
	"strconv"
	"time"
)

// GetOrDefault retrieves an environment variable with a default value
func GetOrDefault(key, defaultValue string) string {
	if value, ok := Get(key); ok {
		return value
	}
	return defaultValue
}

// GetDuration parses key as a time.Duration, falling back to defaultValue
// when the variable is unset.
func GetDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, ok := Get(key)
	if !ok {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid duration in %s: %w", key, err)
	}
	return d, nil
}

// GetFloat parses key as a float64, falling back to defaultValue when the
// variable is unset.
func GetFloat(key string, defaultValue float64) (float64, error) {
	value, ok := Get(key)
	if !ok {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid number in %s: %w", key, err)
	}
	return f, nil
}
