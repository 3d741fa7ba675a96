package mailapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven"
)

func TestClientListMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("expected limit=5, got %q", got)
		}
		if got := r.URL.Query().Get("search"); got != "invoices" {
			t.Errorf("expected search=invoices, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key-123" {
			t.Errorf("unexpected authorization header: %s", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"messages": []map[string]interface{}{
				{
					"id":      "m1",
					"subject": "March invoice",
					"from":    []map[string]string{{"name": "Acme Billing", "email": "billing@acme.test"}},
					"body":    "Please find the invoice attached.",
					"attachments": []map[string]interface{}{
						{"id": "a1", "filename": "invoice.pdf", "content_type": "application/pdf", "size": 84012},
					},
				},
				{
					"id":      "m2",
					"subject": "Re: invoices",
					"from":    []map[string]string{{"email": "pat@example.test"}},
					"snippet": "Looks good to me.",
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient("key-123", server.URL)
	messages, err := client.ListMessages(context.Background(), driven.ListOptions{Limit: 5, Search: "invoices"})
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}

	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].ID != "m1" || messages[0].Subject != "March invoice" {
		t.Errorf("unexpected first message: %+v", messages[0])
	}
	if messages[0].Sender() != "Acme Billing" {
		t.Errorf("expected sender name, got %q", messages[0].Sender())
	}
	if len(messages[0].Attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(messages[0].Attachments))
	}
	if messages[0].Attachments[0].MessageID != "m1" {
		t.Errorf("expected attachment to carry owning message id, got %q", messages[0].Attachments[0].MessageID)
	}
	if messages[1].BodyText != "Looks good to me." {
		t.Errorf("expected snippet fallback for body, got %q", messages[1].BodyText)
	}
}

func TestClientListMessagesOmitsEmptyParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("expected no query params, got %q", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"messages": []interface{}{}})
	}))
	defer server.Close()

	client := NewClient("", server.URL)
	messages, err := client.ListMessages(context.Background(), driven.ListOptions{})
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("expected empty result, got %d", len(messages))
	}
}

func TestClientGetMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages/m1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "m1",
			"subject": "Quarterly report",
			"from":    []map[string]string{{"email": "cfo@example.test"}},
			"body":    "Full report in the attachment.",
		})
	}))
	defer server.Close()

	client := NewClient("key-123", server.URL)
	msg, err := client.GetMessage(context.Background(), "m1")
	if err != nil {
		t.Fatalf("GetMessage failed: %v", err)
	}
	if msg.Subject != "Quarterly report" {
		t.Errorf("unexpected subject: %q", msg.Subject)
	}
	if msg.BodyText != "Full report in the attachment." {
		t.Errorf("unexpected body: %q", msg.BodyText)
	}
}

func TestClientDownloadAttachment(t *testing.T) {
	payload := []byte("%PDF-1.4 fake")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages/m1/attachments/a1/download" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(payload)
	}))
	defer server.Close()

	client := NewClient("key-123", server.URL)
	content, err := client.DownloadAttachment(context.Background(), "a1", "m1")
	if err != nil {
		t.Fatalf("DownloadAttachment failed: %v", err)
	}
	if string(content.Bytes) != string(payload) {
		t.Errorf("unexpected payload: %q", content.Bytes)
	}
	if content.ContentType != "application/pdf" {
		t.Errorf("unexpected content type: %q", content.ContentType)
	}
}

func TestClientAPIErrorCarriesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"mailbox sync in progress"}`))
	}))
	defer server.Close()

	client := NewClient("key-123", server.URL)
	_, err := client.GetMessage(context.Background(), "m1")
	if err == nil {
		t.Fatal("expected error for 503 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", apiErr.StatusCode)
	}
	if apiErr.Body != `{"error":"mailbox sync in progress"}` {
		t.Errorf("expected raw upstream body, got %q", apiErr.Body)
	}
}

func TestClientEscapesPathSegments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/messages/m%2F1" {
			t.Errorf("unexpected escaped path: %s", r.URL.EscapedPath())
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "m/1"})
	}))
	defer server.Close()

	client := NewClient("key-123", server.URL)
	if _, err := client.GetMessage(context.Background(), "m/1"); err != nil {
		t.Fatalf("GetMessage failed: %v", err)
	}
}
