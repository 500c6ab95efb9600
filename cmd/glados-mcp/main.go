// main package for the glados-mcp server
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"github.com/aperture-labs/glados-mcp/internal/announce"
	"github.com/aperture-labs/glados-mcp/internal/config"
	"github.com/aperture-labs/glados-mcp/internal/mcpserver"
	"github.com/aperture-labs/glados-mcp/internal/objectstore"
	"github.com/aperture-labs/glados-mcp/internal/persona"
	"github.com/aperture-labs/glados-mcp/internal/playback"
	"github.com/aperture-labs/glados-mcp/internal/speech"
	"github.com/aperture-labs/glados-mcp/internal/tts"
	"github.com/aperture-labs/glados-mcp/internal/voice"
)

const version = "0.1.0"

func setupLogger(logPath, name string) (*logger.Logger, error) {
	log, err := logger.New(logPath, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

func run() error {
	// 1. Create a temporary logger for the bootstrap process
	bootstrapLog, err := setupLogger(os.TempDir(), "glados-mcp-bootstrap.log")
	if err != nil {
		// If bootstrap logger fails, we can only print to stderr
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	bootstrapLog.Info("Bootstrap logger created.")

	// 2. Load configuration using the central configurator
	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	bootstrapLog.Info("Configuration loaded successfully.")

	// 3. Initialize the final logger based on the loaded configuration
	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir, "glados-mcp.log")
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	return serve(cfg, finalLog)
}

// serve builds the synthesis pipeline and runs the tool server, plus the
// announce ingress when NATS is configured, until a signal arrives.
func serve(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing default-voice artifact fails here, before any tool is served.
	registry, err := voice.New(cfg.Paths.ModelsDir, log)
	if err != nil {
		log.Error("Failed to build voice registry: %v", err)

		return fmt.Errorf("failed to build voice registry: %w", err)
	}

	engine := tts.New(tts.Config{
		ModelsDir:     cfg.Paths.ModelsDir,
		SharedLibrary: cfg.TTS.OnnxRuntimeLibrary,
	}, log)
	defer engine.Close()

	player := playback.New(log, cfg.Playback.RejectWhenBusy)
	sass := persona.New(time.Now().UnixNano())
	dispatcher := speech.New(registry, engine, player, sass, log)
	server := mcpserver.New(dispatcher, registry, player, cfg.Paths.SoundsDir, version, log)

	log.System("GLaDOS MCP server initialized. %d voices ready.", len(registry.List()))
	log.Info("%s", sass.Response(persona.ContextStartup))

	if cfg.Debug {
		log.Info(
			"Models dir: %s. Sounds dir: %s. Reject when busy: %t.",
			cfg.Paths.ModelsDir, cfg.Paths.SoundsDir, cfg.Playback.RejectWhenBusy,
		)
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return server.Run(groupCtx)
	})

	if cfg.NATS.Enabled() {
		worker, natsConnection, announceErr := buildAnnounceWorker(cfg, dispatcher, log)
		if announceErr != nil {
			log.Error("Failed to start announce ingress: %v", announceErr)

			return announceErr
		}

		defer natsConnection.Close()

		group.Go(func() error {
			return worker.Run(groupCtx)
		})
	}

	err = group.Wait()
	if err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

func buildAnnounceWorker(
	cfg *config.Config,
	dispatcher *speech.Dispatcher,
	log *logger.Logger,
) (*announce.Worker, *nats.Conn, error) {
	natsConnection, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	jetstreamContext, err := natsConnection.JetStream()
	if err != nil {
		natsConnection.Close()

		return nil, nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	store, err := objectstore.New(jetstreamContext, cfg.NATS.ClipBucket)
	if err != nil {
		natsConnection.Close()

		return nil, nil, fmt.Errorf("failed to create clip store: %w", err)
	}

	worker := announce.New(natsConnection, cfg.NATS.AnnounceSubject, store, dispatcher, log)

	return worker, natsConnection, nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
