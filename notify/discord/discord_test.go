package discord

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/quillhq/quill/notify"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewNotifier(t *testing.T) {
	logger := discardLogger()

	testCases := []struct {
		name        string
		opts        Options
		logger      *slog.Logger
		expectError bool
		errorMsg    string
	}{
		{
			name:        "Valid options",
			opts:        Options{WebhookURL: "http://test.com"},
			logger:      logger,
			expectError: false,
		},
		{
			name:        "Missing webhook URL",
			opts:        Options{},
			logger:      logger,
			expectError: true,
			errorMsg:    "discord: WebhookURL is required",
		},
		{
			name:        "Missing logger",
			opts:        Options{WebhookURL: "http://test.com"},
			logger:      nil,
			expectError: true,
			errorMsg:    "discord: logger is required",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			notifier, err := New(tc.opts, tc.logger)

			if tc.expectError {
				if err == nil {
					t.Fatalf("Expected an error, but got nil")
				}
				if err.Error() != tc.errorMsg {
					t.Errorf("Expected error message %q, got %q", tc.errorMsg, err.Error())
				}
				if notifier != nil {
					t.Error("Expected notifier to be nil on error")
				}
			} else {
				if err != nil {
					t.Fatalf("Did not expect an error, but got: %v", err)
				}
				if notifier == nil {
					t.Fatal("Expected a notifier, but got nil")
				}
			}
		})
	}
}

func TestFormatMessage(t *testing.T) {
	dn := &Notifier{}

	testCases := []struct {
		name         string
		notification notify.Notification
		contains     []string
		notContains  []string
	}{
		{
			name: "Simple alarm",
			notification: notify.Notification{
				Type:    notify.AlarmNotification,
				Source:  "scheduler",
				Message: "job failed permanently",
			},
			contains: []string{"[Alarm]", "*scheduler*", "job failed permanently"},
		},
		{
			name: "Fields are rendered",
			notification: notify.Notification{
				Type:    notify.MetricNotification,
				Source:  "backup",
				Message: "backup completed",
				Fields: map[string]any{
					"size_bytes": 1024,
				},
			},
			contains: []string{"**Fields**", "size_bytes", "`1024`"},
		},
		{
			name: "Nil and empty fields skipped",
			notification: notify.Notification{
				Type:    notify.AlarmNotification,
				Source:  "queue",
				Message: "oops",
				Fields: map[string]any{
					"nil_value": nil,
					"":          "anonymous",
				},
			},
			notContains: []string{"nil_value", "anonymous"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := dn.formatMessage(tc.notification)
			for _, want := range tc.contains {
				if !strings.Contains(got, want) {
					t.Errorf("message %q should contain %q", got, want)
				}
			}
			for _, unwanted := range tc.notContains {
				if strings.Contains(got, unwanted) {
					t.Errorf("message %q should not contain %q", got, unwanted)
				}
			}
		})
	}
}

func TestFormatMessageTruncation(t *testing.T) {
	dn := &Notifier{}
	n := notify.Notification{
		Type:    notify.AlarmNotification,
		Source:  "test",
		Message: strings.Repeat("x", discordMaxMessageLength+100),
	}

	got := dn.formatMessage(n)
	if len(got) > discordMaxMessageLength {
		t.Errorf("message length = %d, want <= %d", len(got), discordMaxMessageLength)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("truncated message should end with ellipsis")
	}
}

func TestSendPostsWebhook(t *testing.T) {
	received := make(chan payload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("failed to decode webhook body: %v", err)
		}
		received <- p
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	notifier, err := New(Options{WebhookURL: server.URL}, discardLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	err = notifier.Send(context.Background(), notify.Notification{
		Type:    notify.AlarmNotification,
		Source:  "scheduler",
		Message: "job failed permanently",
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	select {
	case p := <-received:
		if !strings.Contains(p.Content, "job failed permanently") {
			t.Errorf("webhook content = %q, want it to contain the message", p.Content)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("webhook was never called")
	}
}

func TestSendDropsWhenRateLimited(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	notifier, err := New(Options{
		WebhookURL:   server.URL,
		APIRateLimit: rate.Every(time.Hour),
		APIBurst:     1,
	}, discardLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	n := notify.Notification{Type: notify.AlarmNotification, Source: "s", Message: "m"}
	// First send consumes the burst token, second is dropped.
	if err := notifier.Send(context.Background(), n); err != nil {
		t.Fatalf("first Send failed: %v", err)
	}
	if err := notifier.Send(context.Background(), n); err != nil {
		t.Fatalf("second Send failed: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	if calls > 1 {
		t.Errorf("webhook called %d times, want at most 1", calls)
	}
}
