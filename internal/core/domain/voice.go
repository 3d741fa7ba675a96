package domain

// TTSConfig holds the speech synthesis settings pushed from the UI. Updates
// apply to subsequent spoken replies only, never retroactively.
type TTSConfig struct {
	Model string `json:"model"`
	Voice string `json:"voice"`
}

// Merge returns the config with empty fields filled from the current one.
func (c TTSConfig) Merge(update TTSConfig) TTSConfig {
	next := c
	if update.Model != "" {
		next.Model = update.Model
	}
	if update.Voice != "" {
		next.Voice = update.Voice
	}
	return next
}

// AgentState is the conversational turn state advertised to the UI. It is
// purely advisory and never gates protocol activity.
type AgentState string

const (
	AgentStateListening AgentState = "listening"
	AgentStateThinking  AgentState = "thinking"
	AgentStateSpeaking  AgentState = "speaking"
	AgentStateIdle      AgentState = "idle"
	AgentStateUnknown   AgentState = "unknown"
)

// CoerceAgentState maps a wire value onto the fixed enumeration. Anything
// unrecognised lands in the unknown bucket rather than being rejected.
func CoerceAgentState(raw string) AgentState {
	switch AgentState(raw) {
	case AgentStateListening, AgentStateThinking, AgentStateSpeaking, AgentStateIdle:
		return AgentState(raw)
	default:
		return AgentStateUnknown
	}
}
