package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/noah-isme/backend-jewelry/internal/resilience"
)

// WhatsApp sends template messages through the WhatsApp Cloud API.
type WhatsApp struct {
	HTTP          resilience.HTTPClient
	BaseURL       string
	Token         string
	PhoneNumberID string
}

type waParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type waComponent struct {
	Type       string        `json:"type"`
	Parameters []waParameter `json:"parameters"`
}

type waTemplate struct {
	Name       string        `json:"name"`
	Language   waLanguage    `json:"language"`
	Components []waComponent `json:"components,omitempty"`
}

type waLanguage struct {
	Code string `json:"code"`
}

type waRequest struct {
	MessagingProduct string     `json:"messaging_product"`
	To               string     `json:"to"`
	Type             string     `json:"type"`
	Template         waTemplate `json:"template"`
}

type waResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendTemplate implements Messenger.
func (c WhatsApp) SendTemplate(ctx context.Context, msg TemplateMessage) (string, error) {
	to := NormalizePhone(msg.To)
	if to == "" {
		return "", fmt.Errorf("%w: recipient phone missing", ErrRejected)
	}
	body := waRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "template",
		Template:         waTemplate{Name: msg.Template, Language: waLanguage{Code: msg.Language}},
	}
	if len(msg.Params) > 0 {
		params := make([]waParameter, 0, len(msg.Params))
		for _, p := range msg.Params {
			params = append(params, waParameter{Type: "text", Text: p})
		}
		body.Template.Components = []waComponent{{Type: "body", Parameters: params}}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/" + c.PhoneNumberID + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("whatsapp send: %w", err)
	}
	defer resp.Body.Close()

	var out waResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &out); err != nil && resp.StatusCode < 300 {
		return "", fmt.Errorf("whatsapp send: decode response: %w", err)
	}
	if resp.StatusCode >= 300 {
		reason := resp.Status
		if out.Error != nil && out.Error.Message != "" {
			reason = out.Error.Message
		}
		return "", fmt.Errorf("%w: %s", ErrRejected, reason)
	}
	if len(out.Messages) == 0 || out.Messages[0].ID == "" {
		return "", errors.New("whatsapp send: response carried no message id")
	}
	return out.Messages[0].ID, nil
}
