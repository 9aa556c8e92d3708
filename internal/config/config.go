// Package config holds the aggregate service configuration.
package config

import (
	"fmt"
	"time"

	"github.com/skillsenselab/audtext/config"
	"github.com/skillsenselab/audtext/internal/janitor"
	"github.com/skillsenselab/audtext/internal/runner"
	"github.com/skillsenselab/audtext/llm/ollama"
	"github.com/skillsenselab/audtext/logger"
	"github.com/skillsenselab/audtext/server"
	"github.com/skillsenselab/audtext/transcription/whisper"
)

// UploadConfig controls audio intake.
type UploadConfig struct {
	// Dir is the storage root for uploaded files.
	Dir string `mapstructure:"dir"`
	// MaxFileSizeMB rejects uploads larger than this.
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
	// AllowedExtensions lists accepted audio file extensions.
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *UploadConfig) ApplyDefaults() {
	if c.Dir == "" {
		c.Dir = "./data"
	}
	if c.MaxFileSizeMB <= 0 {
		c.MaxFileSizeMB = 500
	}
	if len(c.AllowedExtensions) == 0 {
		c.AllowedExtensions = []string{"mp3", "wav", "m4a", "flac", "ogg", "webm", "mp4"}
	}
}

// Validate checks the upload configuration.
func (c *UploadConfig) Validate() error {
	if c.MaxFileSizeMB <= 0 {
		return fmt.Errorf("upload.max_file_size_mb must be positive (got: %d)", c.MaxFileSizeMB)
	}
	return nil
}

// ObservabilityConfig controls OTLP trace and metric export.
type ObservabilityConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Endpoint string        `mapstructure:"endpoint"`
	Insecure bool          `mapstructure:"insecure"`
	Interval time.Duration `mapstructure:"interval"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *ObservabilityConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.Interval <= 0 {
		c.Interval = 15 * time.Second
	}
}

// Config is the full service configuration.
type Config struct {
	Base          config.BaseConfig   `mapstructure:"base"`
	Logging       logger.Config       `mapstructure:"logging"`
	Server        server.Config       `mapstructure:"server"`
	Upload        UploadConfig        `mapstructure:"upload"`
	Whisper       whisper.Config      `mapstructure:"whisper"`
	Ollama        ollama.Config       `mapstructure:"ollama"`
	Runner        runner.Config       `mapstructure:"runner"`
	Janitor       janitor.Config      `mapstructure:"janitor"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ApplyDefaults applies defaults to every section.
func (c *Config) ApplyDefaults() {
	if c.Base.Name == "" {
		c.Base.Name = "audtext"
	}
	c.Base.ApplyDefaults()
	c.Logging.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Upload.ApplyDefaults()
	c.Whisper.ApplyDefaults()
	c.Ollama.ApplyDefaults()
	c.Runner.ApplyDefaults()
	c.Janitor.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Base.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	return c.Upload.Validate()
}
