package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/madadgarapp/listings-api/internal/application/push"
	"github.com/madadgarapp/listings-api/internal/config"
)

const sendPath = "/fcm/send"

// Client talks to the FCM legacy HTTP API. It implements push.Gateway.
type Client struct {
	endpoint  string
	serverKey string
	http      *http.Client
}

// message is the legacy API request body for a single-device send.
type message struct {
	To           string            `json:"to"`
	Notification notification      `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Android      *androidConfig    `json:"android,omitempty"`
	APNS         *apnsConfig       `json:"apns,omitempty"`
}

type notification struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	Icon        string `json:"icon,omitempty"`
	Sound       string `json:"sound,omitempty"`
	ClickAction string `json:"click_action,omitempty"`
}

type androidConfig struct {
	Notification androidNotification `json:"notification"`
}

type androidNotification struct {
	ChannelID string `json:"channel_id,omitempty"`
	Priority  string `json:"priority,omitempty"`
	Sound     string `json:"sound,omitempty"`
}

type apnsConfig struct {
	Payload apnsPayload `json:"payload"`
}

type apnsPayload struct {
	APS aps `json:"aps"`
}

type aps struct {
	Alert apsAlert `json:"alert"`
	Sound string   `json:"sound,omitempty"`
	Badge int      `json:"badge,omitempty"`
}

type apsAlert struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// sendResponse is the subset of the legacy API response we inspect.
type sendResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

// NewClient builds an FCM client from config. The server key is mandatory;
// without it every send would be rejected upstream, so fail at construction.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.FCMServerKey == "" {
		return nil, fmt.Errorf("fcm: FCM_SERVER_KEY is not set")
	}
	return &Client{
		endpoint:  strings.TrimRight(cfg.FCMEndpoint, "/"),
		serverKey: cfg.FCMServerKey,
		http:      &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Send delivers one message to one registration token. A non-2xx status or
// a response reporting zero successes counts as a failure for that token.
func (c *Client) Send(ctx context.Context, token string, msg push.Message) error {
	body := message{
		To: token,
		Notification: notification{
			Title:       msg.Title,
			Body:        msg.Body,
			Icon:        "ic_notification",
			Sound:       msg.Sound,
			ClickAction: "OPEN_APP",
		},
		Data: msg.Data,
		Android: &androidConfig{
			Notification: androidNotification{
				ChannelID: msg.ChannelID,
				Priority:  msg.Priority,
				Sound:     msg.Sound,
			},
		},
		APNS: &apnsConfig{
			Payload: apnsPayload{
				APS: aps{
					Alert: apsAlert{Title: msg.Title, Body: msg.Body},
					Sound: msg.Sound,
					Badge: 1,
				},
			},
		},
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("fcm: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+sendPath, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("fcm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fcm: send: %w", err)
	}
	defer resp.Body.Close()

	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("fcm: decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || out.Success != 1 {
		if len(out.Results) > 0 && out.Results[0].Error != "" {
			return fmt.Errorf("fcm: %s", out.Results[0].Error)
		}
		return fmt.Errorf("fcm: unknown FCM error (status %d)", resp.StatusCode)
	}
	return nil
}
