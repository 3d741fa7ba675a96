package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
	"github.com/custodia-labs/voxmail-core/internal/runtime"
)

// ConnectionState is the lifecycle state of a realtime channel.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"

	// StateError is absorbing: a channel that failed setup never leaves it.
	StateError ConnectionState = "error"
)

// Channel multiplexes the protocol topics over one transport connection and
// tracks connection state. The advisory agent state never gates protocol
// activity.
type Channel struct {
	transport Transport
	services  *runtime.Services
	logger    *slog.Logger

	mu         sync.RWMutex
	state      ConnectionState
	agentState domain.AgentState

	events chan Event
	done   chan struct{}
}

// ChannelConfig holds the collaborators for a channel.
type ChannelConfig struct {
	Transport Transport
	Services  *runtime.Services
	Logger    *slog.Logger
}

// NewChannel creates a channel in the disconnected state.
func NewChannel(cfg ChannelConfig) *Channel {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{
		transport:  cfg.Transport,
		services:   cfg.Services,
		logger:     logger,
		state:      StateDisconnected,
		agentState: domain.AgentStateIdle,
		events:     make(chan Event, inboundBuffer),
		done:       make(chan struct{}),
	}
}

// Connect moves disconnected → connecting → connected and starts the read
// loop. Setup failure lands in the absorbing error state.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("cannot connect from state %q", state)
	}
	c.state = StateConnecting
	c.mu.Unlock()

	if err := c.transport.Connect(ctx); err != nil {
		c.mu.Lock()
		c.state = StateError
		c.mu.Unlock()
		return fmt.Errorf("channel setup: %w", err)
	}

	c.mu.Lock()
	c.state = StateConnected
	c.mu.Unlock()

	go c.readLoop()
	return nil
}

// State returns the connection state.
func (c *Channel) State() ConnectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// AgentState returns the advisory conversational turn state.
func (c *Channel) AgentState() domain.AgentState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.agentState
}

// Events returns decoded inbound events, excluding tts_config which is
// applied internally. The channel closes on teardown.
func (c *Channel) Events() <-chan Event {
	return c.events
}

// Done is closed when the channel shuts down, locally or remotely.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Publish sends an event on its topic. Returns domain.ErrChannelClosed when
// the channel is not connected.
func (c *Channel) Publish(ctx context.Context, event Event) error {
	if c.State() != StateConnected {
		return domain.ErrChannelClosed
	}

	payload, err := EncodeEvent(event)
	if err != nil {
		return err
	}
	return c.transport.Send(ctx, Packet{Topic: Topic(event), Payload: payload})
}

// PublishTranscript emits a user transcript line on the transcript topic.
func (c *Channel) PublishTranscript(ctx context.Context, text string, final bool) error {
	return c.Publish(ctx, TranscriptEvent{Text: text, Final: final})
}

// PublishReply emits an assistant conversation item.
func (c *Channel) PublishReply(ctx context.Context, text string) error {
	return c.Publish(ctx, ConversationItemEvent{Role: "assistant", Text: text})
}

// PublishAgentState updates the advisory state and broadcasts the change.
func (c *Channel) PublishAgentState(ctx context.Context, state domain.AgentState) error {
	state = domain.CoerceAgentState(string(state))

	c.mu.Lock()
	c.agentState = state
	c.mu.Unlock()

	return c.Publish(ctx, AgentStateEvent{State: state})
}

// PublishSources emits source metadata for a completed answer. Receivers
// attach it to the most recent assistant line without sources, so it must
// be sent after the reply it describes.
func (c *Channel) PublishSources(ctx context.Context, sources []domain.SourceInfo) error {
	return c.Publish(ctx, SourcesEvent{Sources: sources})
}

// PublishError surfaces an error message inline in the transcript.
func (c *Channel) PublishError(ctx context.Context, message string) error {
	return c.Publish(ctx, ErrorEvent{Message: message})
}

// PublishTTSConfig pushes voice settings on the configuration topic. Sent
// once right after session establishment and again on every change.
func (c *Channel) PublishTTSConfig(ctx context.Context, config domain.TTSConfig) error {
	return c.Publish(ctx, TTSConfigEvent{Config: config})
}

// Close tears the channel down and forces the disconnected state, except
// when already absorbed by the error state.
func (c *Channel) Close() error {
	err := c.transport.Close()

	c.mu.Lock()
	if c.state != StateError {
		c.state = StateDisconnected
	}
	c.mu.Unlock()

	return err
}

// readLoop decodes inbound packets until the transport ends. Remote
// teardown forces the disconnected state.
func (c *Channel) readLoop() {
	defer close(c.done)
	defer close(c.events)

	for packet := range c.transport.Packets() {
		event, err := DecodeEvent(packet.Topic, packet.Payload)
		if err != nil {
			var unknown *ErrUnknownEventType
			if errors.As(err, &unknown) {
				c.logger.Warn("skipping unknown event",
					"topic", unknown.Topic,
					"event_type", unknown.Type,
				)
			} else {
				c.logger.Warn("dropping malformed event",
					"topic", packet.Topic,
					"error", err,
				)
			}
			continue
		}

		if cfg, ok := event.(TTSConfigEvent); ok {
			c.applyTTSConfig(cfg.Config)
			continue
		}

		select {
		case c.events <- event:
		default:
			c.logger.Warn("dropping event, receiver not keeping up",
				"topic", packet.Topic,
			)
		}
	}

	c.mu.Lock()
	if c.state != StateError {
		c.state = StateDisconnected
	}
	c.mu.Unlock()
}

func (c *Channel) applyTTSConfig(config domain.TTSConfig) {
	if c.services == nil {
		return
	}
	applied, changed := c.services.UpdateTTSConfig(config)
	if !changed {
		return
	}
	c.logger.Info("tts config updated",
		"model", applied.Model,
		"voice", applied.Voice,
	)
}
