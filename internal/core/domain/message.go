package domain

import "time"

// EmailAddress represents a sender or recipient.
type EmailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

// String returns the display form, preferring the name when present.
func (a EmailAddress) String() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Address
}

// Attachment is file metadata attached to a message.
// MessageID identifies the owning message; a download cannot be resolved
// without it.
type Attachment struct {
	ID          string `json:"id"`
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size,omitempty"`
	MessageID   string `json:"message_id"`
}

// Message is a mail message fetched from the provider.
// Messages are fetched fresh per request and never cached; each one is owned
// transiently by a single answer-engine invocation.
type Message struct {
	ID          string         `json:"id"`
	Subject     string         `json:"subject,omitempty"`
	From        []EmailAddress `json:"from"`
	Date        *time.Time     `json:"date,omitempty"`
	BodyText    string         `json:"body_text"`
	Attachments []Attachment   `json:"attachments"`
}

// Sender returns the display form of the first sender, or empty.
func (m *Message) Sender() string {
	if len(m.From) == 0 {
		return ""
	}
	return m.From[0].String()
}

// SourceInfo is a display-oriented projection of a Message, attached to the
// answer that used it. Immutable once built.
type SourceInfo struct {
	ID          string     `json:"id"`
	Subject     string     `json:"subject"`
	From        string     `json:"from"`
	Date        *time.Time `json:"date,omitempty"`
	Attachments []string   `json:"attachments"`
}

// NewSourceInfo builds the projection for a message.
func NewSourceInfo(m *Message) SourceInfo {
	names := make([]string, 0, len(m.Attachments))
	for _, att := range m.Attachments {
		if att.Filename != "" {
			names = append(names, att.Filename)
		}
	}
	return SourceInfo{
		ID:          m.ID,
		Subject:     m.Subject,
		From:        m.Sender(),
		Date:        m.Date,
		Attachments: names,
	}
}
