package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"venuebook/models"
	"venuebook/utils"

	"go.uber.org/zap"
)

// WhatsAppGateway posts messages to a WhatsApp-style HTTP messaging API.
type WhatsAppGateway struct {
	URL    string
	Token  string
	Client *http.Client
	Logger *zap.Logger
}

type whatsAppMessage struct {
	To   string `json:"to"`
	Type string `json:"type"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
}

func NewWhatsAppGateway(url, token string, logger *zap.Logger) (*WhatsAppGateway, error) {
	if url == "" {
		return nil, fmt.Errorf("whatsapp gateway initialization error: url is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhatsAppGateway{
		URL:    url,
		Token:  token,
		Client: &http.Client{Timeout: 10 * time.Second},
		Logger: logger,
	}, nil
}

func (g *WhatsAppGateway) Send(ctx context.Context, phone, message string) error {
	payload := whatsAppMessage{To: phone, Type: "text"}
	payload.Text.Body = message
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encoding message: %v", models.ErrDeliveryFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: building request: %v", models.ErrDeliveryFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.Token)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		g.Logger.Warn("WhatsApp delivery failed", zap.String("to", utils.MaskPhone(phone)), zap.Error(err))
		return fmt.Errorf("%w: %v", models.ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		g.Logger.Warn("WhatsApp delivery rejected",
			zap.String("to", utils.MaskPhone(phone)),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet))
		return fmt.Errorf("%w: gateway returned %d", models.ErrDeliveryFailed, resp.StatusCode)
	}
	return nil
}
