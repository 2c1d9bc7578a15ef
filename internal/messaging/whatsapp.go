package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Client talks to the WhatsApp Cloud API (graph.facebook.com).
type Client struct {
	http          *http.Client
	base          string
	token         string
	phoneNumberID string
	logger        *log.Logger
}

// NewClient builds a Cloud API client.
func NewClient(base, token, phoneNumberID string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		http:          &http.Client{Timeout: 30 * time.Second},
		base:          base,
		token:         token,
		phoneNumberID: phoneNumberID,
		logger:        logger,
	}
}

type textPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

type imagePayload struct {
	MessagingProduct string    `json:"messaging_product"`
	To               string    `json:"to"`
	Type             string    `json:"type"`
	Image            imageBody `json:"image"`
}

type imageBody struct {
	Link    string `json:"link"`
	Caption string `json:"caption,omitempty"`
}

// SendText delivers a text message.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	return c.post(ctx, textPayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	})
}

// SendImage delivers an image by public URL with an optional caption.
func (c *Client) SendImage(ctx context.Context, to, imageURL, caption string) error {
	return c.post(ctx, imagePayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "image",
		Image:            imageBody{Link: imageURL, Caption: caption},
	})
}

func (c *Client) post(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/%s/messages", c.base, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("whatsapp: send failed err=%v", err)
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Printf("whatsapp: send status=%d body=%s", resp.StatusCode, data)
		return fmt.Errorf("whatsapp send: status %d", resp.StatusCode)
	}
	return nil
}

type mediaMeta struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

// FetchMedia resolves a media id to its download URL and fetches the bytes.
func (c *Client) FetchMedia(ctx context.Context, mediaID string) ([]byte, string, error) {
	meta, err := c.getJSON(ctx, fmt.Sprintf("%s/%s", c.base, mediaID))
	if err != nil {
		return nil, "", fmt.Errorf("resolve media %s: %w", mediaID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, meta.URL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download media %s: %w", mediaID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("download media %s: status %d", mediaID, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	mime := meta.MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	return data, mime, nil
}

func (c *Client) getJSON(ctx context.Context, url string) (*mediaMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var meta mediaMeta
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
