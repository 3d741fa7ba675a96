package realtime

import (
	"errors"
	"testing"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
)

func TestDecodeTranscriptEvents(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    Event
	}{
		{
			name:    "final transcript",
			payload: `{"type":"user_input_transcribed","transcript":"what came in today","is_final":true}`,
			want:    TranscriptEvent{Text: "what came in today", Final: true},
		},
		{
			name:    "partial transcript",
			payload: `{"type":"user_input_transcribed","transcript":"what came","is_final":false}`,
			want:    TranscriptEvent{Text: "what came", Final: false},
		},
		{
			name:    "assistant item",
			payload: `{"type":"conversation_item_added","role":"assistant","text":"You have 3 new emails."}`,
			want:    ConversationItemEvent{Role: "assistant", Text: "You have 3 new emails."},
		},
		{
			name:    "state change",
			payload: `{"type":"agent_state_changed","state":"thinking"}`,
			want:    AgentStateEvent{State: domain.AgentStateThinking},
		},
		{
			name:    "unrecognised state coerces to unknown",
			payload: `{"type":"agent_state_changed","state":"warming_up"}`,
			want:    AgentStateEvent{State: domain.AgentStateUnknown},
		},
		{
			name:    "error",
			payload: `{"type":"error","message":"model overloaded"}`,
			want:    ErrorEvent{Message: "model overloaded"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeEvent(TopicTranscript, []byte(tc.payload))
			if err != nil {
				t.Fatalf("DecodeEvent failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestDecodeSourcesEvent(t *testing.T) {
	payload := `{"type":"sources","sources":[{"id":"m1","subject":"Invoice","from":"Acme","attachments":["invoice.pdf"]}]}`

	got, err := DecodeEvent(TopicSources, []byte(payload))
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	evt, ok := got.(SourcesEvent)
	if !ok {
		t.Fatalf("expected SourcesEvent, got %T", got)
	}
	if len(evt.Sources) != 1 || evt.Sources[0].ID != "m1" {
		t.Errorf("unexpected sources: %+v", evt.Sources)
	}
	if len(evt.Sources[0].Attachments) != 1 || evt.Sources[0].Attachments[0] != "invoice.pdf" {
		t.Errorf("unexpected attachments: %v", evt.Sources[0].Attachments)
	}
}

func TestDecodeTTSConfigEvent(t *testing.T) {
	payload := `{"type":"tts_config","model":"sonic","voice":"amber"}`

	got, err := DecodeEvent(TopicTTSConfig, []byte(payload))
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	want := TTSConfigEvent{Config: domain.TTSConfig{Model: "sonic", Voice: "amber"}}
	if got != want {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := DecodeEvent(TopicTranscript, []byte(`{"type":"dance_request"}`))
	var unknown *ErrUnknownEventType
	if !errors.As(err, &unknown) {
		t.Fatalf("expected *ErrUnknownEventType, got %v", err)
	}
	if unknown.Type != "dance_request" || unknown.Topic != TopicTranscript {
		t.Errorf("unexpected error detail: %+v", unknown)
	}
}

func TestDecodeWrongTopic(t *testing.T) {
	// A sources event dropped on the transcript topic is unknown there.
	_, err := DecodeEvent(TopicTranscript, []byte(`{"type":"sources","sources":[]}`))
	var unknown *ErrUnknownEventType
	if !errors.As(err, &unknown) {
		t.Fatalf("expected *ErrUnknownEventType, got %v", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := DecodeEvent(TopicTranscript, []byte(`{not json`)); err == nil {
		t.Error("expected error for malformed payload")
	}
	if _, err := DecodeEvent(TopicTranscript, []byte(`{"transcript":"no type"}`)); err == nil {
		t.Error("expected error for missing type")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	events := []Event{
		TranscriptEvent{Text: "hello", Final: true},
		ConversationItemEvent{Role: "assistant", Text: "hi"},
		AgentStateEvent{State: domain.AgentStateSpeaking},
		ErrorEvent{Message: "oops"},
		TTSConfigEvent{Config: domain.TTSConfig{Model: "sonic", Voice: "amber"}},
	}

	for _, evt := range events {
		payload, err := EncodeEvent(evt)
		if err != nil {
			t.Fatalf("EncodeEvent(%T) failed: %v", evt, err)
		}
		got, err := DecodeEvent(Topic(evt), payload)
		if err != nil {
			t.Fatalf("DecodeEvent(%T) failed: %v", evt, err)
		}
		if got != evt {
			t.Errorf("round trip mismatch: got %#v, want %#v", got, evt)
		}
	}
}

func TestTopicRouting(t *testing.T) {
	cases := []struct {
		event Event
		topic string
	}{
		{TranscriptEvent{}, TopicTranscript},
		{ConversationItemEvent{}, TopicTranscript},
		{AgentStateEvent{}, TopicTranscript},
		{ErrorEvent{}, TopicTranscript},
		{SourcesEvent{}, TopicSources},
		{TTSConfigEvent{}, TopicTTSConfig},
	}

	for _, tc := range cases {
		if got := Topic(tc.event); got != tc.topic {
			t.Errorf("Topic(%T) = %q, want %q", tc.event, got, tc.topic)
		}
	}
}
