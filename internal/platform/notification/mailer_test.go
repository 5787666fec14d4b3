package notification

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestMailer_SendPasswordReset(t *testing.T) {
	mock := &MockEmailSender{}
	m := NewMailer(mock, "http://localhost:5173", zerolog.New(os.Stderr).Level(zerolog.Disabled))

	err := m.SendPasswordReset(context.Background(), "user@acme.org", "acme", "tok-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 email, got %d", len(calls))
	}
	if calls[0].To != "user@acme.org" {
		t.Errorf("unexpected recipient %s", calls[0].To)
	}
	if !strings.Contains(calls[0].Body, "tenant=acme") || !strings.Contains(calls[0].Body, "token=tok-123") {
		t.Errorf("reset link missing tenant or token: %s", calls[0].Body)
	}
}

func TestMailer_SendFailureSurfaced(t *testing.T) {
	mock := &MockEmailSender{Fail: errors.New("relay down")}
	m := NewMailer(mock, "http://localhost:5173", zerolog.New(os.Stderr).Level(zerolog.Disabled))

	if err := m.SendPasswordReset(context.Background(), "user@acme.org", "acme", "tok"); err == nil {
		t.Error("expected send failure to be returned")
	}
}
