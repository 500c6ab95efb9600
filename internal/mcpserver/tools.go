package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/aperture-labs/glados-mcp/internal/playback"
	"github.com/aperture-labs/glados-mcp/internal/speech"
	"github.com/aperture-labs/glados-mcp/internal/voice"
)

// Alert types and their packaged sound files.
const (
	alertTypeRadio = "radio"
	alertTypeChime = "chime"

	radioSoundFile = "looping_radio_mix.wav"
	chimeSoundFile = "portal_elevator_chime.wav"
)

type speakParams struct {
	Text        string   `json:"text"                   mcp:"The text to speak aloud"`
	Voice       *string  `json:"voice,omitempty"        mcp:"Voice to use: 'glados' (default, sarcastic) or a Kokoro preset like 'af_bella' or 'am_adam'"`
	Volume      *float64 `json:"volume,omitempty"       mcp:"Playback volume from 0.0 to 1.0 (default: the voice's own level)"`
	ReturnAudio bool     `json:"return_audio,omitempty" mcp:"Return the synthesized WAV as audio content instead of playing it"`
}

type alertParams struct {
	AlertType string `json:"alert_type,omitempty" mcp:"Alert sound: 'radio' (default) loops the radio mix, 'chime' plays the elevator chime"`
}

type listVoicesParams struct{}

type voiceGroup struct {
	Category string   `json:"category"`
	Voices   []string `json:"voices"`
}

type voiceListing struct {
	Status string       `json:"status"`
	Total  int          `json:"total"`
	Voices []voiceGroup `json:"voices"`
}

func (s *Server) registerTools(mcpServer *mcp.Server) {
	speakTool := &mcp.Tool{
		Name:  "speak",
		Title: "Speak",
		Description: "Speaks text aloud using GLaDOS (default, sarcasm included) or one " +
			"of the 26 Kokoro presets for serious communication. Speaking interrupts " +
			"any alert sound still playing. Set return_audio to get the WAV back " +
			"instead of playing it.",
		Annotations: &mcp.ToolAnnotations{
			Title:          "Text-to-Speech",
			ReadOnlyHint:   false,
			IdempotentHint: true,
		},
	}
	mcp.AddTool(mcpServer, speakTool, s.handleSpeak)

	alertTool := &mcp.Tool{
		Name:  "alert",
		Title: "Alert",
		Description: "Plays a Portal sound to get the user's attention when speech " +
			"alone is not sufficient: 'radio' loops an atmospheric mix, 'chime' plays " +
			"a brief elevator notification. Subsequent speak calls interrupt the sound.",
		Annotations: &mcp.ToolAnnotations{
			Title:          "Attention Alert",
			ReadOnlyHint:   false,
			IdempotentHint: true,
		},
	}
	mcp.AddTool(mcpServer, alertTool, s.handleAlert)

	listTool := &mcp.Tool{
		Name:  "list_voices",
		Title: "List Voices",
		Description: "Lists the available voices grouped by category, because " +
			"apparently you cannot remember 27 simple names.",
		Annotations: &mcp.ToolAnnotations{
			Title:          "Voice Listing",
			ReadOnlyHint:   true,
			IdempotentHint: true,
		},
	}
	mcp.AddTool(mcpServer, listTool, s.handleListVoices)
}

func (s *Server) handleSpeak(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input speakParams,
) (*mcp.CallToolResult, any, error) {
	select {
	case <-ctx.Done():
		return errorText("Request cancelled."), nil, nil
	default:
	}

	voiceID := ""
	if input.Voice != nil {
		voiceID = *input.Voice
	}

	req := speech.Request{Text: input.Text, VoiceID: voiceID, Volume: input.Volume}

	if input.ReturnAudio {
		result, wavBytes, err := s.speaker.Render(ctx, req)
		if err != nil {
			s.log.Error("Render failed: %v", err)

			return errorText(s.errorMessage(err, voiceID)), nil, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: formatSpoken(result)},
				&mcp.AudioContent{Data: wavBytes, MIMEType: "audio/wav"},
			},
		}, nil, nil
	}

	result, err := s.speaker.Speak(ctx, req)
	if err != nil {
		s.log.Error("Speak failed: %v", err)

		return errorText(s.errorMessage(err, voiceID)), nil, nil
	}

	return textResult(formatSpoken(result)), nil, nil
}

func (s *Server) handleAlert(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input alertParams,
) (*mcp.CallToolResult, any, error) {
	alertType := input.AlertType
	if alertType == "" {
		alertType = alertTypeRadio
	}

	fileName, message, known := alertSound(alertType)
	if !known {
		return errorText(fmt.Sprintf(
			"Alert type '%s' not recognized. Try 'radio' or 'chime'.", alertType,
		)), nil, nil
	}

	path := filepath.Join(s.soundsDir, fileName)

	_, err := os.Stat(path)
	if err != nil {
		return errorText(fmt.Sprintf(
			"Sound file missing: %s. How disappointing.", fileName,
		)), nil, nil
	}

	err = s.alerts.PlayFile(ctx, path)
	if err != nil {
		s.log.Error("Alert playback failed: %v", err)

		return errorText(fmt.Sprintf(
			"Alert system malfunction: %v. Even my alerts work better than your code.", err,
		)), nil, nil
	}

	s.log.Info("Alert '%s' playing.", alertType)

	return textResult("GLaDOS Alert: " + message), nil, nil
}

func (s *Server) handleListVoices(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ listVoicesParams,
) (*mcp.CallToolResult, any, error) {
	entries := s.registry.List()

	groups := make([]voiceGroup, 0, 5)
	positions := make(map[voice.Category]int)

	for _, entry := range entries {
		position, seen := positions[entry.Category]
		if !seen {
			position = len(groups)
			positions[entry.Category] = position
			groups = append(groups, voiceGroup{Category: string(entry.Category), Voices: nil})
		}

		groups[position].Voices = append(groups[position].Voices, entry.ID)
	}

	listing := voiceListing{
		Status: "Available voices listed below. Try not to forget them immediately.",
		Total:  len(entries),
		Voices: groups,
	}

	payload, err := json.MarshalIndent(listing, "", "  ")
	if err != nil {
		return errorText(fmt.Sprintf("Error: %v", err)), nil, nil
	}

	return textResult(string(payload)), nil, nil
}

// errorMessage translates dispatcher errors into tool replies. voiceID is the
// id the caller asked for, used to flavor the unknown-voice message.
func (s *Server) errorMessage(err error, voiceID string) string {
	switch {
	case errors.Is(err, speech.ErrInvalidInput):
		return "Error: text cannot be empty."
	case errors.Is(err, voice.ErrUnknownVoice):
		return fmt.Sprintf(
			"Voice '%s' not found. Try one of: %s.",
			voiceID, strings.Join(s.registry.IDs(), ", "),
		)
	case errors.Is(err, speech.ErrSynthesis):
		return "Speech synthesis failed. How disappointing."
	case errors.Is(err, playback.ErrDeviceBusy):
		return "The audio device is busy with a previous request. Try again in a moment."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

func formatSpoken(result speech.Result) string {
	if result.Category == voice.CategoryGLaDOS {
		return fmt.Sprintf("GLaDOS: '%s'", result.Spoken)
	}

	return fmt.Sprintf("Kokoro (%s): '%s'", result.VoiceID, result.Spoken)
}

func alertSound(alertType string) (string, string, bool) {
	switch alertType {
	case alertTypeRadio:
		return radioSoundFile,
			"Playing radio transmission. I do hope this gets your attention.",
			true
	case alertTypeChime:
		return chimeSoundFile,
			"Elevator chime activated. How... nostalgic.",
			true
	default:
		return "", "", false
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
