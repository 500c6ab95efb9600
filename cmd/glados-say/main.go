// main package for the glados-say command-line client
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/book-expert/logger"

	"github.com/aperture-labs/glados-mcp/internal/config"
	"github.com/aperture-labs/glados-mcp/internal/persona"
	"github.com/aperture-labs/glados-mcp/internal/playback"
	"github.com/aperture-labs/glados-mcp/internal/speech"
	"github.com/aperture-labs/glados-mcp/internal/tts"
	"github.com/aperture-labs/glados-mcp/internal/voice"
)

// Flag names.
const (
	flagText   = "text"
	flagVoice  = "voice"
	flagVolume = "volume"
	flagOutput = "output"
	flagList   = "list"
)

// Flag descriptions.
const (
	flagTextDesc   = "Text to speak"
	flagVoiceDesc  = "Voice to use (default: glados)"
	flagVolumeDesc = "Playback volume from 0.0 to 1.0 (default: the voice's own level)"
	flagOutputDesc = "Write a WAV file instead of playing (.wav)"
	flagListDesc   = "List available voices and exit"
)

// Error messages.
const (
	errTextRequired = "--text is required unless --list is given"
	errVolumeRange  = "--volume must be between 0.0 and 1.0"
)

// volumeUnset marks the volume flag as not provided.
const volumeUnset = -1

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	text   string
	voice  string
	output string
	volume float64
	list   bool
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := parseFlags()

	err := validateArguments(flags)
	if err != nil {
		flag.Usage()

		return err
	}

	bootstrapLog, err := logger.New(os.TempDir(), "glados-say-bootstrap.log")
	if err != nil {
		return fmt.Errorf("failed to create bootstrap logger: %w", err)
	}

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Paths.BaseLogsDir, "glados-say.log")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer func() {
		closeErr := log.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing logger: %v\n", closeErr)
		}
	}()

	return execute(cfg, log, flags)
}

func execute(cfg *config.Config, log *logger.Logger, flags appFlags) error {
	registry, err := voice.New(cfg.Paths.ModelsDir, log)
	if err != nil {
		return fmt.Errorf("failed to build voice registry: %w", err)
	}

	if flags.list {
		printVoices(registry)

		return nil
	}

	engine := tts.New(tts.Config{
		ModelsDir:     cfg.Paths.ModelsDir,
		SharedLibrary: cfg.TTS.OnnxRuntimeLibrary,
	}, log)
	defer engine.Close()

	player := playback.New(log, cfg.Playback.RejectWhenBusy)
	dispatcher := speech.New(registry, engine, player, persona.New(time.Now().UnixNano()), log)

	req := speech.Request{
		Text:    flags.text,
		VoiceID: flags.voice,
		Volume:  volumeOverride(flags.volume),
	}

	ctx := context.Background()

	if flags.output != "" {
		return renderToFile(ctx, dispatcher, req, flags.output)
	}

	result, err := dispatcher.Speak(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to speak: %w", err)
	}

	fmt.Printf("Spoke with %s (%.2fs): %s\n", result.VoiceID, result.Seconds, result.Spoken)

	return nil
}

func renderToFile(
	ctx context.Context,
	dispatcher *speech.Dispatcher,
	req speech.Request,
	path string,
) error {
	result, wavBytes, err := dispatcher.Render(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}

	err = os.WriteFile(path, wavBytes, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Printf("Generated: %s (%s, %.2fs)\n", path, result.VoiceID, result.Seconds)

	return nil
}

func printVoices(registry *voice.Registry) {
	lastCategory := voice.Category("")

	for _, entry := range registry.List() {
		if entry.Category != lastCategory {
			fmt.Printf("%s:\n", entry.Category)

			lastCategory = entry.Category
		}

		fmt.Printf("  %s\n", entry.ID)
	}
}

// parseFlags defines and parses command-line flags, returning them in a struct.
func parseFlags() appFlags {
	var flags appFlags

	flag.StringVar(&flags.text, flagText, "", flagTextDesc)
	flag.StringVar(&flags.voice, flagVoice, "", flagVoiceDesc)
	flag.Float64Var(&flags.volume, flagVolume, volumeUnset, flagVolumeDesc)
	flag.StringVar(&flags.output, flagOutput, "", flagOutputDesc)
	flag.BoolVar(&flags.list, flagList, false, flagListDesc)
	flag.Parse()

	return flags
}

// validateArguments checks required and well-formed flag combinations before
// any synthesis work starts.
func validateArguments(flags appFlags) error {
	if !flags.list && strings.TrimSpace(flags.text) == "" {
		return errors.New(errTextRequired)
	}

	if flags.volume != volumeUnset && (flags.volume < 0 || flags.volume > 1) {
		return errors.New(errVolumeRange)
	}

	return nil
}

func volumeOverride(value float64) *float64 {
	if value == volumeUnset {
		return nil
	}

	return &value
}
