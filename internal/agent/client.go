// Package agent is the HTTP client for the lab server agent: telemetry,
// the raw command log, and the JSON blobs backing the statistics pipeline.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/lab-portal/backend/internal/models"
)

// Client talks to one agent deployment. There is no retry policy: a
// failed call surfaces an error and the caller either reports it or
// waits for the next poll tick.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given base URL ("https://api.example.org").
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Stats fetches the telemetry snapshot. file selects a non-default
// monitored server; empty means the default one.
func (c *Client) Stats(ctx context.Context, file string) (*models.ServerTelemetry, error) {
	var body io.Reader
	if file != "" {
		payload, err := json.Marshal(map[string]string{"file": file})
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/server/stats", body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var telemetry models.ServerTelemetry
	if err := c.do(req, &telemetry); err != nil {
		return nil, fmt.Errorf("fetching server stats: %w", err)
	}
	return &telemetry, nil
}

// CommandLog fetches the raw newline-delimited command log.
func (c *Client) CommandLog(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/wsl/download", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching command log: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching command log: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading command log: %w", err)
	}
	return string(data), nil
}

// DownloadJSON fetches a named JSON document (connection_sessions.json,
// access_codes.json) and decodes it into v.
func (c *Client) DownloadJSON(ctx context.Context, filename string, v interface{}) error {
	payload, err := json.Marshal(map[string]string{"filename": filename})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/server/download", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.do(req, v); err != nil {
		return fmt.Errorf("downloading %s: %w", filename, err)
	}
	return nil
}

// Sessions fetches and decodes connection_sessions.json.
func (c *Client) Sessions(ctx context.Context) ([]models.SessionEntry, error) {
	var sessions []models.SessionEntry
	if err := c.DownloadJSON(ctx, "connection_sessions.json", &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// AccessTable fetches and decodes access_codes.json.
func (c *Client) AccessTable(ctx context.Context) (models.AccessTable, error) {
	var table models.AccessTable
	if err := c.DownloadJSON(ctx, "access_codes.json", &table); err != nil {
		return nil, err
	}
	return table, nil
}

// UploadAccessCodes replaces the agent's access_codes.json with the
// given table, sent as a multipart file upload.
func (c *Client) UploadAccessCodes(ctx context.Context, table models.AccessTable) error {
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "access_codes.json")
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/server/access", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("uploading access codes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("uploading access codes: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) do(req *http.Request, v interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if v == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
