package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from one or more .env files. With no
// arguments the default .env in the working directory is loaded. Later files
// take precedence over earlier ones for overlapping keys.
func LoadEnv(files ...string) error {
	if err := godotenv.Overload(files...); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoadEnv works like LoadEnv but panics on failure.
func MustLoadEnv(files ...string) {
	if err := LoadEnv(files...); err != nil {
		panic(fmt.Sprintf("Failed to load env files: %v", err))
	}
}

// ResetCache clears all cached configuration values. Intended for tests that
// mutate the process environment between loads.
func ResetCache() {
	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()
	globalCache.values = make(map[string]any)
	globalCache.onces = make(map[string]*sync.Once)
}

// ForceReloadConfig re-parses the environment into v, replacing any cached
// value for its type.
func ForceReloadConfig[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	typeName := getTypeName[T]()

	globalCache.mu.Lock()
	delete(globalCache.values, typeName)
	delete(globalCache.onces, typeName)
	globalCache.mu.Unlock()

	return Load(v)
}
