// Package mcpserver exposes the speak, list_voices, and alert tools over the
// Model Context Protocol. It owns no synthesis or playback logic; tool calls
// are translated into dispatcher and player calls and their results formatted
// back in GLaDOS's register.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/book-expert/logger"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/aperture-labs/glados-mcp/internal/speech"
	"github.com/aperture-labs/glados-mcp/internal/voice"
)

// Speaker is the slice of the dispatcher the tools drive.
type Speaker interface {
	Speak(ctx context.Context, req speech.Request) (speech.Result, error)
	Render(ctx context.Context, req speech.Request) (speech.Result, []byte, error)
}

// AlertSink plays packaged notification sounds without blocking on their
// completion.
type AlertSink interface {
	PlayFile(ctx context.Context, path string) error
}

// Server wires the tool surface to the dispatcher, the voice registry, and
// the alert sink.
type Server struct {
	speaker   Speaker
	registry  *voice.Registry
	alerts    AlertSink
	soundsDir string
	version   string
	log       *logger.Logger
}

// New creates a server. soundsDir holds the packaged alert WAVs.
func New(
	speaker Speaker,
	registry *voice.Registry,
	alerts AlertSink,
	soundsDir string,
	version string,
	log *logger.Logger,
) *Server {
	return &Server{
		speaker:   speaker,
		registry:  registry,
		alerts:    alerts,
		soundsDir: soundsDir,
		version:   version,
		log:       log,
	}
}

// Run serves the tools over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	err := s.build().Run(ctx, &mcp.StdioTransport{})
	if err != nil {
		return fmt.Errorf("failed to serve MCP over stdio: %w", err)
	}

	return nil
}

func (s *Server) build() *mcp.Server {
	impl := &mcp.Implementation{
		Name:    "glados-mcp",
		Title:   "GLaDOS Text-to-Speech",
		Version: s.version,
	}

	mcpServer := mcp.NewServer(impl, nil)
	s.registerTools(mcpServer)

	return mcpServer
}
