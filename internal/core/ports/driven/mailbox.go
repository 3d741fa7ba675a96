package driven

import (
	"context"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
)

// ListOptions filters a mailbox listing.
type ListOptions struct {
	// Limit is the maximum number of messages to return.
	Limit int

	// Search is an optional provider-side search filter. Empty means none.
	Search string
}

// AttachmentContent is the raw payload of a downloaded attachment.
type AttachmentContent struct {
	Bytes       []byte
	ContentType string
}

// MailboxProvider lists and fetches messages and downloads attachment bytes.
// Pure I/O: implementations must not cache and must surface a distinguishable
// error (including the raw upstream body) on non-success responses.
type MailboxProvider interface {
	// ListMessages returns message summaries matching the options.
	ListMessages(ctx context.Context, opts ListOptions) ([]*domain.Message, error)

	// GetMessage fetches full message details by id.
	GetMessage(ctx context.Context, id string) (*domain.Message, error)

	// DownloadAttachment fetches attachment bytes. The owning message id is
	// required to resolve the download.
	DownloadAttachment(ctx context.Context, attachmentID, messageID string) (*AttachmentContent, error)
}
