// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIGURATION TYPES
// =============================================================================

// Logical endpoint names accepted by FullURL.
const (
	EndpointUpload    = "upload"
	EndpointDelete    = "delete"
	EndpointDocuments = "documents"
	EndpointQuery     = "query"
	EndpointSignin    = "signin"
	EndpointSignup    = "signup"
)

// Endpoints maps logical operation names to service paths.
type Endpoints struct {
	Upload    string `toml:"upload" json:"upload"`
	Delete    string `toml:"delete" json:"delete"`
	Documents string `toml:"documents" json:"documents"`
	Query     string `toml:"query" json:"query"`
	Signin    string `toml:"signin" json:"signin"`
	Signup    string `toml:"signup" json:"signup"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Backend is "file" (one JSON file per key) or "sqlite"
	Backend string `toml:"backend" json:"backend"`
}

// Config is the endpoint configuration. One instance process-wide; survives
// across sessions via the persisted runtime store.
type Config struct {
	// BaseURL is the root of the document question-answering service
	BaseURL string `toml:"base_url" json:"baseUrl"`

	// Endpoints are the named service paths
	Endpoints Endpoints `toml:"endpoints" json:"endpoints"`

	// Storage selects the local persistence backend. File config only;
	// not part of the persisted runtime state.
	Storage StorageConfig `toml:"storage" json:"-"`
}

// Default returns the stock configuration pointing at a local service.
func Default() *Config {
	return &Config{
		BaseURL: "http://localhost:8000",
		Endpoints: Endpoints{
			Upload:    "/file/upload-file",
			Delete:    "/file/delete-file",
			Documents: "/file/documents",
			Query:     "/rag/query",
			Signin:    "/auth/signin",
			Signup:    "/auth/signup",
		},
		Storage: StorageConfig{
			Backend: "file",
		},
	}
}

// fillDefaults replaces any zero-valued field with its default so a partial
// file or partially persisted state never leaves a hole.
func (c *Config) fillDefaults() {
	def := Default()
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.Endpoints.Upload == "" {
		c.Endpoints.Upload = def.Endpoints.Upload
	}
	if c.Endpoints.Delete == "" {
		c.Endpoints.Delete = def.Endpoints.Delete
	}
	if c.Endpoints.Documents == "" {
		c.Endpoints.Documents = def.Endpoints.Documents
	}
	if c.Endpoints.Query == "" {
		c.Endpoints.Query = def.Endpoints.Query
	}
	if c.Endpoints.Signin == "" {
		c.Endpoints.Signin = def.Endpoints.Signin
	}
	if c.Endpoints.Signup == "" {
		c.Endpoints.Signup = def.Endpoints.Signup
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = def.Storage.Backend
	}
}

// FullURL returns BaseURL joined with the named endpoint path. Unknown
// names return just the base URL so a bad call site still targets the
// configured host.
func (c *Config) FullURL(name string) string {
	base := strings.TrimRight(c.BaseURL, "/")
	var path string
	switch name {
	case EndpointUpload:
		path = c.Endpoints.Upload
	case EndpointDelete:
		path = c.Endpoints.Delete
	case EndpointDocuments:
		path = c.Endpoints.Documents
	case EndpointQuery:
		path = c.Endpoints.Query
	case EndpointSignin:
		path = c.Endpoints.Signin
	case EndpointSignup:
		path = c.Endpoints.Signup
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates all invalid fields found in one pass.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "config: no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration. SECURITY: only http and https base
// URLs are accepted; anything else could smuggle a file:// or custom
// scheme into the HTTP client.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.BaseURL == "" {
		errs = append(errs, &ValidationError{Field: "base_url", Message: "must not be empty"})
	} else {
		parsed, err := url.Parse(c.BaseURL)
		if err != nil {
			errs = append(errs, &ValidationError{Field: "base_url", Message: "not a valid URL"})
		} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
			errs = append(errs, &ValidationError{Field: "base_url", Message: "scheme must be http or https"})
		} else if parsed.Host == "" {
			errs = append(errs, &ValidationError{Field: "base_url", Message: "missing host"})
		}
	}

	switch c.Storage.Backend {
	case "file", "sqlite":
	default:
		errs = append(errs, &ValidationError{Field: "storage.backend", Message: "must be file or sqlite"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// FILE CONFIG
// =============================================================================

// ConfigDir returns the configuration directory, creating it if needed.
// Defaults to ~/.docquery; DOCQUERY_CONFIG_DIR overrides it.
func ConfigDir() (string, error) {
	if dir := os.Getenv("DOCQUERY_CONFIG_DIR"); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create config directory: %w", err)
		}
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	dir := filepath.Join(home, ".docquery")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// LoadFile reads config.toml from the config directory. A missing file
// yields defaults; an unparsable file is an error so a typo is not
// silently ignored.
func LoadFile() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return Default(), err
	}
	return loadFileFrom(filepath.Join(dir, "config.toml"))
}

func loadFileFrom(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}
