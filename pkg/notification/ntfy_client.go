package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// NtfyClient publishes notifications to an ntfy server.
type NtfyClient struct {
	server     string
	topic      string
	httpClient *http.Client
}

type ntfyMessage struct {
	Topic    string   `json:"topic"`
	Title    string   `json:"title,omitempty"`
	Message  string   `json:"message"`
	Tags     []string `json:"tags,omitempty"`
	Priority int      `json:"priority,omitempty"`
}

// NewNtfyClient creates a client for topic on server.
func NewNtfyClient(server, topic string) *NtfyClient {
	return &NtfyClient{
		server: strings.TrimRight(server, "/"),
		topic:  topic,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send publishes n using ntfy's JSON API.
func (c *NtfyClient) Send(n Notification) error {
	msg := ntfyMessage{
		Topic:   c.topic,
		Title:   n.Title,
		Message: n.Message,
	}
	if strings.HasPrefix(n.Pattern, "threshold:") {
		msg.Tags = []string{"hourglass"}
		msg.Priority = 4
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode ntfy message: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.server+"/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create ntfy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send ntfy request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ntfy returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
