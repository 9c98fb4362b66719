package notification

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNtfyClient_Send(t *testing.T) {
	tests := []struct {
		name         string
		notification Notification
		status       int
		body         string
		wantErr      string
		check        func(t *testing.T, payload ntfyMessage)
	}{
		{
			name: "threshold notification",
			notification: Notification{
				Title:   "Work time: 6h reached",
				Message: "You have worked 6h 0m today",
				Time:    time.Now(),
				Pattern: "threshold:6h",
			},
			status: http.StatusOK,
			body:   `{"id":"abc123"}`,
			check: func(t *testing.T, p ntfyMessage) {
				if p.Topic != "work" {
					t.Errorf("topic = %q, want work", p.Topic)
				}
				if p.Title != "Work time: 6h reached" {
					t.Errorf("title = %q", p.Title)
				}
				if p.Priority != 4 || len(p.Tags) != 1 || p.Tags[0] != "hourglass" {
					t.Errorf("threshold markers missing: priority=%d tags=%v", p.Priority, p.Tags)
				}
			},
		},
		{
			name:         "plain notification has no markers",
			notification: Notification{Title: "hello", Message: "world"},
			status:       http.StatusOK,
			check: func(t *testing.T, p ntfyMessage) {
				if p.Priority != 0 || len(p.Tags) != 0 {
					t.Errorf("unexpected markers: priority=%d tags=%v", p.Priority, p.Tags)
				}
			},
		},
		{
			name:         "server error",
			notification: Notification{Title: "t", Message: "m"},
			status:       http.StatusInternalServerError,
			body:         "Internal Server Error",
			wantErr:      "ntfy returned status 500: Internal Server Error",
		},
		{
			name:         "rate limited",
			notification: Notification{Title: "t", Message: "m"},
			status:       http.StatusTooManyRequests,
			body:         "slow down",
			wantErr:      "ntfy returned status 429",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ntfyMessage
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("Method = %v, want POST", r.Method)
				}
				if r.URL.Path != "/" {
					t.Errorf("Path = %v, want /", r.URL.Path)
				}
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("Content-Type = %q", ct)
				}
				body, _ := io.ReadAll(r.Body)
				if err := json.Unmarshal(body, &got); err != nil {
					t.Errorf("Failed to unmarshal body: %v", err)
				}
				w.WriteHeader(tt.status)
				_, _ = fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			err := NewNtfyClient(server.URL+"/", "work").Send(tt.notification)

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Send() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Send() error = %v", err)
			}
			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestNtfyClient_SendNetworkError(t *testing.T) {
	client := NewNtfyClient("http://localhost:0", "work")

	if err := client.Send(Notification{Title: "t", Message: "m"}); err == nil {
		t.Error("Expected error for network failure")
	}
}

func TestNtfyClient_SendInvalidURL(t *testing.T) {
	client := NewNtfyClient("://invalid-url", "work")

	if err := client.Send(Notification{Title: "t", Message: "m"}); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestNewNtfyClient_TrimsTrailingSlash(t *testing.T) {
	client := NewNtfyClient("https://ntfy.example.com//", "work")
	if client.server != "https://ntfy.example.com" {
		t.Errorf("server = %q", client.server)
	}

	var _ Notifier = client
}
