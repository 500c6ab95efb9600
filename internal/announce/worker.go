// Package announce runs the NATS ingress: speak requests published on a
// subject are synthesized and either played on the local device or stored
// as WAV clips for the requester to fetch.
package announce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/aperture-labs/glados-mcp/internal/core"
	"github.com/aperture-labs/glados-mcp/internal/speech"
)

// handleMessageTimeout bounds one announce request end to end, synthesis
// and playback included.
const handleMessageTimeout = 60 * time.Second

// ErrEmptyRequest indicates a request whose text was missing entirely.
var ErrEmptyRequest = errors.New("announce request carries no text")

// Speaker is the slice of the dispatcher the worker drives.
type Speaker interface {
	Speak(ctx context.Context, req speech.Request) (speech.Result, error)
	Render(ctx context.Context, req speech.Request) (speech.Result, []byte, error)
}

// Request is the JSON payload accepted on the announce subject.
type Request struct {
	Text        string   `json:"text"`
	Voice       string   `json:"voice,omitempty"`
	Volume      *float64 `json:"volume,omitempty"`
	ReturnAudio bool     `json:"return_audio,omitempty"`
}

// Ack is the reply sent when the requester asked for one. AudioKey names the
// stored clip for return_audio requests.
type Ack struct {
	OK        bool   `json:"ok"`
	RequestID string `json:"request_id,omitempty"`
	Voice     string `json:"voice,omitempty"`
	AudioKey  string `json:"audio_key,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Worker listens for announce requests on a NATS subject and dispatches
// them.
type Worker struct {
	conn    *nats.Conn
	subject string
	store   core.ObjectStore
	speaker Speaker
	log     *logger.Logger
}

// New creates a worker bound to the given subject.
func New(
	conn *nats.Conn,
	subject string,
	store core.ObjectStore,
	speaker Speaker,
	log *logger.Logger,
) *Worker {
	return &Worker{
		conn:    conn,
		subject: subject,
		store:   store,
		speaker: speaker,
		log:     log,
	}
}

// Run subscribes and serves until ctx is cancelled, then drains the
// subscription.
func (w *Worker) Run(ctx context.Context) error {
	sub, err := w.conn.Subscribe(w.subject, w.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.subject, err)
	}

	w.log.Info("Announce worker listening on %s.", w.subject)

	<-ctx.Done()

	drainErr := sub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	return nil
}

func (w *Worker) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), handleMessageTimeout)
	defer cancel()

	request, err := parseRequest(msg.Data)
	if err != nil {
		w.log.Error("Failed to parse announce request: %v", err)
		w.reply(msg, Ack{OK: false, RequestID: "", Voice: "", AudioKey: "", Error: err.Error()})

		return
	}

	w.reply(msg, w.process(ctx, request))
}

// process runs one request through the dispatcher. With return_audio set
// the rendered WAV is stored and its key acknowledged instead of playing.
func (w *Worker) process(ctx context.Context, request *Request) Ack {
	speechReq := speech.Request{
		Text:    request.Text,
		VoiceID: request.Voice,
		Volume:  request.Volume,
	}

	if request.ReturnAudio {
		result, wavBytes, err := w.speaker.Render(ctx, speechReq)
		if err != nil {
			w.log.Error("Failed to render announce request: %v", err)

			return Ack{OK: false, RequestID: "", Voice: "", AudioKey: "", Error: err.Error()}
		}

		audioKey := uuid.NewString() + ".wav"

		err = w.store.Upload(ctx, audioKey, wavBytes)
		if err != nil {
			w.log.Error("Failed to store clip '%s': %v", audioKey, err)

			return Ack{OK: false, RequestID: "", Voice: "", AudioKey: "", Error: err.Error()}
		}

		return Ack{
			OK:        true,
			RequestID: result.RequestID,
			Voice:     result.VoiceID,
			AudioKey:  audioKey,
			Error:     "",
		}
	}

	result, err := w.speaker.Speak(ctx, speechReq)
	if err != nil {
		w.log.Error("Failed to speak announce request: %v", err)

		return Ack{OK: false, RequestID: "", Voice: "", AudioKey: "", Error: err.Error()}
	}

	return Ack{
		OK:        true,
		RequestID: result.RequestID,
		Voice:     result.VoiceID,
		AudioKey:  "",
		Error:     "",
	}
}

// reply responds when the requester supplied a reply subject; fire-and-forget
// publishes are served silently.
func (w *Worker) reply(msg *nats.Msg, ack Ack) {
	if msg.Reply == "" {
		return
	}

	payload, err := json.Marshal(ack)
	if err != nil {
		w.log.Error("Failed to marshal announce ack: %v", err)

		return
	}

	err = msg.Respond(payload)
	if err != nil {
		w.log.Error("Failed to reply to announce request: %v", err)
	}
}

// parseRequest unmarshals and screens the payload before it reaches the
// dispatcher.
func parseRequest(data []byte) (*Request, error) {
	var request Request

	err := json.Unmarshal(data, &request)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal announce request: %w", err)
	}

	if strings.TrimSpace(request.Text) == "" {
		return nil, ErrEmptyRequest
	}

	return &request, nil
}
