// Package config provides the configuration structure for glados-mcp.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// Defaults applied when neither the config file nor the environment names a
// value.
const (
	defaultModelsDir       = "models"
	defaultSoundsDir       = "sounds"
	defaultAnnounceSubject = "glados.announce"
	defaultClipBucket      = "glados-clips"
)

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
	ModelsDir   string `toml:"models_dir"`
	SoundsDir   string `toml:"sounds_dir"`
}

// TTSConfig holds the configuration for the inference runtime.
type TTSConfig struct {
	OnnxRuntimeLibrary string `toml:"onnxruntime_library"`
}

// PlaybackConfig holds the configuration for the output device policy.
type PlaybackConfig struct {
	RejectWhenBusy bool `toml:"reject_when_busy"`
}

// NATSConfig holds the configuration for the optional announce ingress.
type NATSConfig struct {
	URL             string `toml:"url"`
	AnnounceSubject string `toml:"announce_subject"`
	ClipBucket      string `toml:"clip_bucket"`
}

// Config is the root configuration structure.
type Config struct {
	Paths    PathsConfig    `toml:"paths"`
	TTS      TTSConfig      `toml:"tts"`
	Playback PlaybackConfig `toml:"playback"`
	NATS     NATSConfig     `toml:"nats"`
	Debug    bool           `toml:"debug"`
}

// Enabled reports whether the announce ingress should run.
func (c NATSConfig) Enabled() bool {
	return c.URL != ""
}

// Load loads the configuration for glados-mcp. Values resolve in order:
// config file, environment, built-in default.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	cfg.applyEnvironment()
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyEnvironment() {
	fillFromEnv(&c.Paths.BaseLogsDir, "GLADOS_LOG_DIR")
	fillFromEnv(&c.Paths.ModelsDir, "GLADOS_MODELS_DIR")
	fillFromEnv(&c.Paths.SoundsDir, "GLADOS_SOUNDS_DIR")
	fillFromEnv(&c.TTS.OnnxRuntimeLibrary, "ONNXRUNTIME_SHARED_LIBRARY")

	if !c.Debug {
		debug, err := strconv.ParseBool(os.Getenv("GLADOS_DEBUG"))
		if err == nil {
			c.Debug = debug
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Paths.BaseLogsDir == "" {
		c.Paths.BaseLogsDir = os.TempDir()
	}

	if c.Paths.ModelsDir == "" {
		c.Paths.ModelsDir = defaultModelsDir
	}

	if c.Paths.SoundsDir == "" {
		c.Paths.SoundsDir = defaultSoundsDir
	}

	if c.NATS.AnnounceSubject == "" {
		c.NATS.AnnounceSubject = defaultAnnounceSubject
	}

	if c.NATS.ClipBucket == "" {
		c.NATS.ClipBucket = defaultClipBucket
	}
}

func fillFromEnv(target *string, key string) {
	if *target != "" {
		return
	}

	value := os.Getenv(key)
	if value != "" {
		*target = value
	}
}
