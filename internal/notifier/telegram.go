package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Kroner-bit/pivot-stat/internal/logger"
)

// DefaultAPIBase is the Telegram Bot API endpoint.
const DefaultAPIBase = "https://api.telegram.org"

// TelegramNotifier publishes analysis reports to one chat through the Bot API.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	APIBase  string
	Client   *http.Client

	// Retries and Backoff control SendWithRetry: up to Retries extra attempts,
	// waiting Backoff, 2*Backoff, 4*Backoff... in between.
	Retries int
	Backoff time.Duration
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		} else {
			logger.Warnf("ignoring invalid proxy %q: %v", proxyURL, err)
		}
	}
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		APIBase:  DefaultAPIBase,
		Client:   &http.Client{Timeout: 30 * time.Second, Transport: transport},
		Retries:  3,
		Backoff:  time.Second,
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts one HTML message. Texts over MaxMessageLen are refused rather than
// truncated by the API; use SendReport for reports of any length.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	if len(text) > MaxMessageLen {
		return fmt.Errorf("message of %d bytes exceeds the %d byte limit", len(text), MaxMessageLen)
	}
	body, err := json.Marshal(sendMessageRequest{ChatID: t.ChatID, Text: text, ParseMode: "HTML"})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.APIBase, t.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var ar apiResponse
	_ = json.Unmarshal(raw, &ar)
	if resp.StatusCode != http.StatusOK || !ar.OK {
		if ar.Description != "" {
			return fmt.Errorf("telegram API error: status %d: %s", resp.StatusCode, ar.Description)
		}
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(raw))
	}
	return nil
}

// SendWithRetry sends a message, retrying with exponential backoff.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string) error {
	var lastErr error
	for i := 0; i <= t.Retries; i++ {
		err := t.Send(ctx, text)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == t.Retries {
			break
		}
		backoff := t.Backoff << uint(i)
		logger.Warnf("telegram send failed (attempt %d/%d): %v, retrying in %v", i+1, t.Retries+1, err, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", t.Retries+1, lastErr)
}

// SendReport publishes a plain-text report, split into as many messages as it needs.
func (t *TelegramNotifier) SendReport(ctx context.Context, source string, at time.Time, report string) error {
	msgs := ReportMessages(source, at, report)
	for i, msg := range msgs {
		if err := t.SendWithRetry(ctx, msg); err != nil {
			return fmt.Errorf("report part %d/%d: %w", i+1, len(msgs), err)
		}
	}
	logger.Debugf("report sent to chat %s in %d message(s)", t.ChatID, len(msgs))
	return nil
}
