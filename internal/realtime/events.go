// Package realtime implements the typed event protocol between the voice
// agent and the UI. Two agent-to-UI topics (transcript/state and sources)
// and one UI-to-agent topic (voice configuration) multiplex over a single
// transport connection. Delivery is best effort: events emitted while no
// receiver is attached are lost.
package realtime

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
)

// Topic names multiplexed over the transport connection.
const (
	TopicTranscript = "inbox.transcript"
	TopicSources    = "inbox.sources"
	TopicTTSConfig  = "inbox.tts.config"
)

// Event is a decoded message on one of the realtime topics.
type Event interface {
	eventType() string
}

// TranscriptEvent carries user speech text. Only final transcripts are
// surfaced; partials are decoded but marked so receivers can skip them.
type TranscriptEvent struct {
	Text  string
	Final bool
}

func (e TranscriptEvent) eventType() string { return "user_input_transcribed" }

// ConversationItemEvent carries a reply added to the conversation. Content
// from non-assistant roles is ignored by receivers.
type ConversationItemEvent struct {
	Role string
	Text string
}

func (e ConversationItemEvent) eventType() string { return "conversation_item_added" }

// Assistant reports whether the item came from the assistant.
func (e ConversationItemEvent) Assistant() bool {
	return e.Role == "assistant"
}

// AgentStateEvent carries a change of conversational turn state.
type AgentStateEvent struct {
	State domain.AgentState
}

func (e AgentStateEvent) eventType() string { return "agent_state_changed" }

// ErrorEvent carries a message to surface inline in the transcript.
type ErrorEvent struct {
	Message string
}

func (e ErrorEvent) eventType() string { return "error" }

// SourcesEvent carries the source metadata for a completed answer. Emitted
// once per answer on the sources topic; receivers attach it to the most
// recent assistant transcript line that has no sources yet.
type SourcesEvent struct {
	Sources []domain.SourceInfo
}

func (e SourcesEvent) eventType() string { return "sources" }

// TTSConfigEvent is the UI-to-agent voice configuration push. Applied to
// subsequent spoken replies only.
type TTSConfigEvent struct {
	Config domain.TTSConfig
}

func (e TTSConfigEvent) eventType() string { return "tts_config" }

// ErrUnknownEventType marks payloads whose type tag is not part of the
// topic's protocol. Receivers log and skip these rather than failing.
type ErrUnknownEventType struct {
	Topic string
	Type  string
}

func (e *ErrUnknownEventType) Error() string {
	return fmt.Sprintf("unknown event type %q on topic %q", e.Type, e.Topic)
}

// DecodeEvent parses a raw payload for a topic into its closed event set.
// Unknown type tags return *ErrUnknownEventType; malformed JSON returns a
// decode error. Neither may crash the read loop.
func DecodeEvent(topic string, payload []byte) (Event, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}
	typ := strings.TrimSpace(envelope.Type)
	if typ == "" {
		return nil, fmt.Errorf("event missing type")
	}

	switch topic {
	case TopicTranscript:
		return decodeTranscriptEvent(typ, payload)
	case TopicSources:
		return decodeSourcesEvent(typ, payload)
	case TopicTTSConfig:
		return decodeTTSConfigEvent(typ, payload)
	default:
		return nil, &ErrUnknownEventType{Topic: topic, Type: typ}
	}
}

func decodeTranscriptEvent(typ string, payload []byte) (Event, error) {
	switch typ {
	case "user_input_transcribed":
		var raw struct {
			Transcript string `json:"transcript"`
			IsFinal    bool   `json:"is_final"`
		}
		if err := json.Unmarshal(payload, &raw); err != nil {
			return nil, fmt.Errorf("decode user_input_transcribed: %w", err)
		}
		return TranscriptEvent{Text: raw.Transcript, Final: raw.IsFinal}, nil
	case "conversation_item_added":
		var raw struct {
			Role string `json:"role"`
			Text string `json:"text"`
		}
		if err := json.Unmarshal(payload, &raw); err != nil {
			return nil, fmt.Errorf("decode conversation_item_added: %w", err)
		}
		return ConversationItemEvent{Role: raw.Role, Text: raw.Text}, nil
	case "agent_state_changed":
		var raw struct {
			State string `json:"state"`
		}
		if err := json.Unmarshal(payload, &raw); err != nil {
			return nil, fmt.Errorf("decode agent_state_changed: %w", err)
		}
		return AgentStateEvent{State: domain.CoerceAgentState(raw.State)}, nil
	case "error":
		var raw struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload, &raw); err != nil {
			return nil, fmt.Errorf("decode error event: %w", err)
		}
		return ErrorEvent{Message: raw.Message}, nil
	default:
		return nil, &ErrUnknownEventType{Topic: TopicTranscript, Type: typ}
	}
}

func decodeSourcesEvent(typ string, payload []byte) (Event, error) {
	switch typ {
	case "sources":
		var raw struct {
			Sources []domain.SourceInfo `json:"sources"`
		}
		if err := json.Unmarshal(payload, &raw); err != nil {
			return nil, fmt.Errorf("decode sources: %w", err)
		}
		return SourcesEvent{Sources: raw.Sources}, nil
	default:
		return nil, &ErrUnknownEventType{Topic: TopicSources, Type: typ}
	}
}

func decodeTTSConfigEvent(typ string, payload []byte) (Event, error) {
	switch typ {
	case "tts_config":
		var raw struct {
			Model string `json:"model"`
			Voice string `json:"voice"`
		}
		if err := json.Unmarshal(payload, &raw); err != nil {
			return nil, fmt.Errorf("decode tts_config: %w", err)
		}
		return TTSConfigEvent{Config: domain.TTSConfig{Model: raw.Model, Voice: raw.Voice}}, nil
	default:
		return nil, &ErrUnknownEventType{Topic: TopicTTSConfig, Type: typ}
	}
}

// EncodeEvent serialises an event with its type tag for the wire.
func EncodeEvent(event Event) ([]byte, error) {
	switch e := event.(type) {
	case TranscriptEvent:
		return json.Marshal(map[string]interface{}{
			"type":       e.eventType(),
			"transcript": e.Text,
			"is_final":   e.Final,
		})
	case ConversationItemEvent:
		return json.Marshal(map[string]interface{}{
			"type": e.eventType(),
			"role": e.Role,
			"text": e.Text,
		})
	case AgentStateEvent:
		return json.Marshal(map[string]interface{}{
			"type":  e.eventType(),
			"state": string(e.State),
		})
	case ErrorEvent:
		return json.Marshal(map[string]interface{}{
			"type":    e.eventType(),
			"message": e.Message,
		})
	case SourcesEvent:
		return json.Marshal(map[string]interface{}{
			"type":    e.eventType(),
			"sources": e.Sources,
		})
	case TTSConfigEvent:
		return json.Marshal(map[string]interface{}{
			"type":  e.eventType(),
			"model": e.Config.Model,
			"voice": e.Config.Voice,
		})
	default:
		return nil, fmt.Errorf("unsupported event type %T", event)
	}
}

// Topic returns the topic an event travels on.
func Topic(event Event) string {
	switch event.(type) {
	case SourcesEvent:
		return TopicSources
	case TTSConfigEvent:
		return TopicTTSConfig
	default:
		return TopicTranscript
	}
}
