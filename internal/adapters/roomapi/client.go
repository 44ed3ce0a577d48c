// Package roomapi is the HTTP room verification collaborator.
package roomapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CheckError carries the relay's rejection message verbatim so it can
// be shown to the user unchanged.
type CheckError struct {
	StatusCode int
	Message    string
}

func (e *CheckError) Error() string { return e.Message }

type Client struct {
	base string
	http *http.Client
}

func New(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

type checkRoomRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type checkRoomResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// CheckRoom verifies the room name/password pair. Any non-2xx response
// is a join failure carrying the server's error field.
func (c *Client) CheckRoom(ctx context.Context, room, password, identity string) error {
	body, err := json.Marshal(checkRoomRequest{Name: room, Password: password, Username: identity})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/check-room", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("check room: %w", err)
	}
	defer resp.Body.Close()

	var parsed checkRoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil && resp.StatusCode < 300 {
		return fmt.Errorf("check room: bad response: %w", err)
	}
	if resp.StatusCode >= 300 {
		msg := parsed.Error
		if msg == "" {
			msg = "Failed to join room"
		}
		return &CheckError{StatusCode: resp.StatusCode, Message: msg}
	}
	if parsed.Status != "success" {
		return &CheckError{StatusCode: resp.StatusCode, Message: "Failed to join room"}
	}
	return nil
}
