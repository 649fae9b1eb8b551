// Package cliq posts notification cards to a Zoho Cliq channel webhook.
package cliq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client posts messages to a single channel webhook.
type Client struct {
	webhookURL string
	apiKey     string
	botName    string
	httpClient *http.Client
}

// NewClient creates a webhook client. webhookURL is the full incoming
// webhook endpoint for the target channel.
func NewClient(webhookURL, apiKey, botName string) *Client {
	return &Client{
		webhookURL: webhookURL,
		apiKey:     apiKey,
		botName:    botName,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Message is the webhook payload.
type Message struct {
	Text   string  `json:"text"`
	Bot    *Bot    `json:"bot,omitempty"`
	Card   *Card   `json:"card,omitempty"`
	Slides []Slide `json:"slides,omitempty"`
}

type Bot struct {
	Name string `json:"name"`
}

type Card struct {
	Title string `json:"title"`
	Theme string `json:"theme,omitempty"`
}

// Slide renders structured content under the message text. Type "table"
// expects Data of the form {"headers": [...], "rows": [[...], ...]}.
type Slide struct {
	Type  string      `json:"type"`
	Title string      `json:"title,omitempty"`
	Data  interface{} `json:"data"`
}

// Send posts a message to the channel webhook.
func (c *Client) Send(ctx context.Context, msg *Message) error {
	if c.webhookURL == "" {
		return fmt.Errorf("cliq webhook url not configured")
	}

	if c.botName != "" && msg.Bot == nil {
		msg.Bot = &Bot{Name: c.botName}
	}

	bodyBytes, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal cliq message: %w", err)
	}

	url := c.webhookURL
	if c.apiKey != "" {
		url = url + "?zapikey=" + c.apiKey
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("create cliq request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post cliq webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("cliq webhook status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
