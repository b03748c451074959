package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/opennote/opennote/internal/embed"
	"github.com/opennote/opennote/internal/graph"
)

// Duration is a time.Duration that decodes from YAML as either a
// time.ParseDuration string ("1s", "500ms") or a bare integer, which is
// read as milliseconds. yaml.v3 has no native time.Duration handling, and
// a raw integer assigned as nanoseconds would silently collapse any
// configured interval to nothing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!int" {
		var ms int64
		if err := value.Decode(&ms); err != nil {
			return err
		}
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("config: duration must be a string like \"500ms\" or integer milliseconds")
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeAPIKey   = "apikey"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Embedding EmbeddingConfig   `yaml:"embedding"`
	Autosave  AutosaveConfig    `yaml:"autosave"`
	Graph     GraphConfig       `yaml:"graph"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Embedding.Validate(); err != nil {
		return err
	}
	if err := c.Graph.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds the note database location.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// EmbeddingConfig holds the text-to-vector model settings.
type EmbeddingConfig struct {
	BaseURL    string   `yaml:"base_url"`
	Model      string   `yaml:"model"`
	Dimensions int      `yaml:"dimensions"`
	Timeout    Duration `yaml:"timeout"`
}

// Validate validates the embedding configuration.
func (c *EmbeddingConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.Dimensions, validation.Required, validation.Min(1)),
	)
}

// AutosaveConfig holds the debounce quiet period for the autosave
// scheduler.
type AutosaveConfig struct {
	Debounce Duration `yaml:"debounce"`
}

// GraphConfig holds graph derivation settings.
type GraphConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

// Validate validates the graph configuration.
func (c *GraphConfig) Validate() error {
	if c.SimilarityThreshold < -1 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("graph: similarity_threshold must be in [-1, 1], got %v", c.SimilarityThreshold)
	}
	return nil
}

// AuthConfig controls how the REST surface is protected:
//   - "disabled" (default): no auth, suitable for a purely local UI.
//   - "apikey": requests must present a generated API key.
type AuthConfig struct {
	Mode string `yaml:"mode"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeAPIKey)),
	)
}

// AuthEnabled returns true when API key auth is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeAPIKey
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./opennote.db",
		},
		Embedding: EmbeddingConfig{
			BaseURL:    embed.DefaultBaseURL,
			Model:      embed.DefaultModel,
			Dimensions: embed.DefaultDimensions,
			Timeout:    Duration(30 * time.Second),
		},
		Autosave: AutosaveConfig{
			Debounce: Duration(time.Second),
		},
		Graph: GraphConfig{
			SimilarityThreshold: graph.DefaultThreshold,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
