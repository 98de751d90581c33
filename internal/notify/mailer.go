// Package notify dispatches outbound email for the access workflow.
// Delivery is fire-and-forget: failures are logged, never retried, and
// never block the record update that triggered them.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Mailer sends one message to one recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// HTTPMailer posts messages to the mail relay endpoint.
type HTTPMailer struct {
	endpoint string
	http     *http.Client
}

// NewHTTPMailer creates a mailer for the given relay URL.
func NewHTTPMailer(endpoint string, timeout time.Duration) *HTTPMailer {
	return &HTTPMailer{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

type sendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type sendResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Send posts one message to the relay.
func (m *HTTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	payload, err := json.Marshal(sendRequest{To: to, Subject: subject, Message: htmlBody})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sending mail: unexpected status %d", resp.StatusCode)
	}

	var body sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding mail response: %w", err)
	}
	if body.Status != "success" {
		return fmt.Errorf("mail relay rejected message: %s", body.Message)
	}
	return nil
}

// SendAsync fires the message off on its own goroutine and logs a
// failure instead of surfacing it.
func SendAsync(m Mailer, to, subject, htmlBody string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := m.Send(ctx, to, subject, htmlBody); err != nil {
			log.Printf("email to %s failed: %v", to, err)
		}
	}()
}
