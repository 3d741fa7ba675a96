// Package mailapi is a REST client for the upstream mail provider. It does
// no caching: every call hits the provider so answers always reflect the
// live mailbox.
package mailapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven"
)

// Ensure Client implements MailboxProvider
var _ driven.MailboxProvider = (*Client)(nil)

// APIError is a non-success response from the mail API. Body carries the raw
// upstream payload so callers can log the provider's own diagnostics.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mail API error %d: %s", e.StatusCode, e.Body)
}

// Client provides mail API operations.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new mail API client.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// wireAddress is a sender or recipient in API responses.
type wireAddress struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// wireAttachment is attachment metadata in API responses.
type wireAttachment struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// wireMessage is a message in API responses.
type wireMessage struct {
	ID          string           `json:"id"`
	Subject     string           `json:"subject"`
	From        []wireAddress    `json:"from"`
	Date        *time.Time       `json:"date"`
	Body        string           `json:"body"`
	Snippet     string           `json:"snippet"`
	Attachments []wireAttachment `json:"attachments"`
}

// ListMessages returns message summaries matching the options.
func (c *Client) ListMessages(ctx context.Context, opts driven.ListOptions) ([]*domain.Message, error) {
	q := url.Values{}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	path := "/messages"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	body, err := c.doRequest(ctx, path)
	if err != nil {
		return nil, err
	}

	var listResp struct {
		Messages []*wireMessage `json:"messages"`
	}
	if err := json.Unmarshal(body, &listResp); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}

	messages := make([]*domain.Message, 0, len(listResp.Messages))
	for _, wm := range listResp.Messages {
		messages = append(messages, toDomainMessage(wm))
	}
	return messages, nil
}

// GetMessage fetches full message details by id.
func (c *Client) GetMessage(ctx context.Context, id string) (*domain.Message, error) {
	body, err := c.doRequest(ctx, "/messages/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}

	var wm wireMessage
	if err := json.Unmarshal(body, &wm); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return toDomainMessage(&wm), nil
}

// DownloadAttachment fetches attachment bytes. The owning message id is
// required to resolve the download path.
func (c *Client) DownloadAttachment(ctx context.Context, attachmentID, messageID string) (*driven.AttachmentContent, error) {
	path := fmt.Sprintf("/messages/%s/attachments/%s/download",
		url.PathEscape(messageID), url.PathEscape(attachmentID))

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	return &driven.AttachmentContent{
		Bytes:       data,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// Ping verifies the mail API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ListMessages(ctx, driven.ListOptions{Limit: 1})
	return err
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// doRequest performs a GET and returns the response body, mapping non-2xx
// statuses to *APIError.
func (c *Client) doRequest(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

func toDomainMessage(wm *wireMessage) *domain.Message {
	from := make([]domain.EmailAddress, 0, len(wm.From))
	for _, a := range wm.From {
		from = append(from, domain.EmailAddress{Address: a.Email, Name: a.Name})
	}

	bodyText := wm.Body
	if bodyText == "" {
		bodyText = wm.Snippet
	}

	attachments := make([]domain.Attachment, 0, len(wm.Attachments))
	for _, wa := range wm.Attachments {
		attachments = append(attachments, domain.Attachment{
			ID:          wa.ID,
			Filename:    wa.Filename,
			ContentType: wa.ContentType,
			Size:        wa.Size,
			MessageID:   wm.ID,
		})
	}

	return &domain.Message{
		ID:          wm.ID,
		Subject:     wm.Subject,
		From:        from,
		Date:        wm.Date,
		BodyText:    bodyText,
		Attachments: attachments,
	}
}
