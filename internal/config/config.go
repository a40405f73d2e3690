// Package config loads the optional .prcomment.yaml file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"

	"github.com/sgex-ci/prcomment/internal/compliance"
	"github.com/sgex-ci/prcomment/internal/githubapi"
	"github.com/sgex-ci/prcomment/internal/managed"
	"github.com/sgex-ci/prcomment/internal/security"
	"github.com/sgex-ci/prcomment/internal/status"
)

// DefaultPath is read when --config is not given.
const DefaultPath = ".prcomment.yaml"

// Config is the file-level configuration. Every field is optional.
type Config struct {
	// APIBaseURL points at a GitHub Enterprise REST root, e.g. https://ghe.example.com/api/v3/.
	APIBaseURL string `yaml:"apiBaseURL,omitempty"`
	// Timeout bounds each REST round trip (Go duration, e.g. "30s").
	Timeout string `yaml:"timeout,omitempty"`
	// AllowedURLHosts replaces the default link allow-list. "*.example.com" matches subdomains.
	AllowedURLHosts []string `yaml:"allowedURLHosts,omitempty"`
	// Markers overrides the base markers of the managed comments.
	Markers Comments `yaml:"markers,omitempty"`
	// Footers overrides the footer line of the managed comments.
	Footers Comments `yaml:"footers,omitempty"`
}

// Comments holds one value per managed comment kind.
type Comments struct {
	Status     string `yaml:"status,omitempty"`
	Compliance string `yaml:"compliance,omitempty"`
	Security   string `yaml:"security,omitempty"`
}

// Load reads and validates the config at path. A missing file yields an empty config
// unless required is set.
func Load(path string, required bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates YAML config data. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("apiBaseURL", c.APIBaseURL, validBaseURL),
		criterio.Run("timeout", c.Timeout, validTimeout),
		c.validateHosts(),
		c.validateMarkers(),
	)
}

func validBaseURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("must be an http(s) URL, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

func validTimeout(raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("must be positive, got %s", raw)
	}
	return nil
}

func (c *Config) validateHosts() error {
	if len(c.AllowedURLHosts) == 0 {
		return nil
	}
	if _, err := managed.NewURLPolicy(c.AllowedURLHosts); err != nil {
		return criterio.NewFieldErrors("allowedURLHosts", err)
	}
	return nil
}

// validateMarkers checks the marker overrides. Unset kinds take their package default,
// so an override cannot collide with a default family either.
func (c *Config) validateMarkers() error {
	var errs criterio.FieldErrorsBuilder
	fields := []struct {
		name     string
		value    string
		fallback string
	}{
		{"markers.status", c.Markers.Status, status.DefaultMarker},
		{"markers.compliance", c.Markers.Compliance, compliance.DefaultMarker},
		{"markers.security", c.Markers.Security, security.DefaultMarker},
	}
	for i, f := range fields {
		if f.value != "" && !isComment(f.value) {
			errs = errs.Append(f.name, fmt.Errorf("must be an HTML comment, got %q", f.value))
			continue
		}
		marker := f.value
		if marker == "" {
			marker = f.fallback
		}
		for _, other := range fields[:i] {
			if (f.value == "" && other.value == "") || (other.value != "" && !isComment(other.value)) {
				continue
			}
			otherMarker := other.value
			if otherMarker == "" {
				otherMarker = other.fallback
			}
			if strings.Contains(otherMarker, managed.FamilyPrefix(marker)) || strings.Contains(marker, managed.FamilyPrefix(otherMarker)) {
				field, against := f.name, other.name
				if f.value == "" {
					field, against = other.name, f.name
				}
				errs = errs.Append(field, fmt.Errorf("overlaps with %s", against))
			}
		}
	}
	return errs.ToError()
}

func isComment(marker string) bool {
	return strings.HasPrefix(marker, "<!--") && strings.HasSuffix(marker, "-->")
}

// TimeoutDuration returns the configured timeout or the client default.
func (c *Config) TimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
		return d
	}
	return githubapi.DefaultTimeout
}

// URLPolicy builds the link allow-list, falling back to the defaults.
func (c *Config) URLPolicy() (managed.URLPolicy, error) {
	if len(c.AllowedURLHosts) == 0 {
		return managed.DefaultURLPolicy(), nil
	}
	return managed.NewURLPolicy(c.AllowedURLHosts)
}

// ClientOptions returns the githubapi options implied by the config.
func (c *Config) ClientOptions() []githubapi.Option {
	opts := []githubapi.Option{githubapi.WithTimeout(c.TimeoutDuration())}
	if c.APIBaseURL != "" {
		opts = append(opts, githubapi.WithBaseURL(c.APIBaseURL))
	}
	return opts
}
