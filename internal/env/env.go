// Package env loads .env files and merges them with the process environment.
package env

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Vars represents a simple string-to-string map of variables.
type Vars map[string]string

// FromOS builds a Vars map from the current process environment.
func FromOS() Vars {
	out := make(Vars)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		out[key] = value
	}
	return out
}

// Merge merges several Vars maps into one, later maps overriding earlier keys.
func Merge(sets ...Vars) Vars {
	out := make(Vars)
	for _, s := range sets {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

// LoadEnvFile loads a single .env-style file into Vars.
func LoadEnvFile(path string) (Vars, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	envMap, err := godotenv.Parse(f)
	if err != nil {
		return nil, err
	}
	return Vars(envMap), nil
}

// LoadEnvFiles loads multiple .env-style files and merges them in order.
func LoadEnvFiles(files []string) (Vars, error) {
	result := make(Vars)
	for _, path := range files {
		if strings.TrimSpace(path) == "" {
			continue
		}
		vars, err := LoadEnvFile(path)
		if err != nil {
			return nil, fmt.Errorf("load env file %q: %w", path, err)
		}
		result = Merge(result, vars)
	}
	return result, nil
}

// Resolve loads files and lays the process environment over them, so a variable
// exported by the workflow always wins over one from a file.
func Resolve(files []string) (Vars, error) {
	fromFiles, err := LoadEnvFiles(files)
	if err != nil {
		return nil, err
	}
	return Merge(fromFiles, FromOS()), nil
}

// First returns the first non-blank value among keys.
func (v Vars) First(keys ...string) string {
	for _, k := range keys {
		if val := strings.TrimSpace(v[k]); val != "" {
			return val
		}
	}
	return ""
}
