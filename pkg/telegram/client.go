// Package telegram provides a small client for the Telegram Bot API.
//
// It covers the calls the outbound queues need: sending messages, creating
// one-use invite links and sending already hosted documents.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

// Client represents a Telegram bot client.
type Client struct {
	token   string       // bot token for authentication
	baseURL string       // API root, overridable for tests
	client  *http.Client // HTTP client used to make requests
}

// NewClient creates a new Telegram Client instance with the given bot token.
func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL points the client at another API root.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// APIError is returned when the Bot API answers with ok=false or a non-200 status.
type APIError struct {
	Method      string
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.StatusCode, e.Description)
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// SendMessage sends text to chatID.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	req := map[string]string{
		"chat_id": chatID, // recipient chat id
		"text":    text,   // message text
	}

	return c.call(ctx, "sendMessage", req, nil)
}

// CreateInviteLink creates an invite link to chatID usable by memberLimit users.
func (c *Client) CreateInviteLink(ctx context.Context, chatID string, memberLimit int) (string, error) {
	req := map[string]any{
		"chat_id":      chatID,
		"member_limit": memberLimit,
	}

	var link struct {
		InviteLink string `json:"invite_link"`
	}
	if err := c.call(ctx, "createChatInviteLink", req, &link); err != nil {
		return "", err
	}

	return link.InviteLink, nil
}

// SendDocument sends the document hosted at url to chatID.
func (c *Client) SendDocument(ctx context.Context, chatID, url, caption string) error {
	req := map[string]string{
		"chat_id":  chatID,
		"document": url,
		"caption":  caption,
	}

	return c.call(ctx, "sendDocument", req, nil)
}

// call posts payload to the given Bot API method and decodes the result into out when set.
func (c *Client) call(ctx context.Context, method string, payload any, out any) error {
	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	var res apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return &APIError{Method: method, StatusCode: resp.StatusCode, Description: resp.Status}
	}

	if resp.StatusCode != http.StatusOK || !res.OK {
		return &APIError{Method: method, StatusCode: resp.StatusCode, Description: res.Description}
	}

	if out != nil {
		if err := json.Unmarshal(res.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}

	return nil
}
