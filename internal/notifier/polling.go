package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Kroner-bit/pivot-stat/internal/logger"
)

// CommandHandler is called when a command arrives from the configured chat. Every
// returned message is sent back in order.
type CommandHandler func(ctx context.Context, command string) []string

// telegramUpdate represents a Telegram update from long polling.
type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// Poll fetches one batch of updates starting at offset and returns the commands sent
// from the configured chat together with the next offset.
func (t *TelegramNotifier) Poll(ctx context.Context, offset int, timeout time.Duration) ([]string, int, error) {
	apiURL := fmt.Sprintf("%s/bot%s/getUpdates?offset=%d&timeout=%d",
		t.APIBase, t.BotToken, offset, int(timeout.Seconds()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, offset, fmt.Errorf("create polling request: %w", err)
	}
	client := &http.Client{Timeout: timeout + 5*time.Second, Transport: t.Client.Transport}
	resp, err := client.Do(req)
	if err != nil {
		return nil, offset, fmt.Errorf("polling request: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, offset, fmt.Errorf("read polling response: %w", err)
	}

	var result struct {
		OK     bool             `json:"ok"`
		Result []telegramUpdate `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, offset, fmt.Errorf("decode polling response: %w", err)
	}
	if !result.OK {
		return nil, offset, fmt.Errorf("telegram API error: %s", string(body))
	}

	var commands []string
	for _, update := range result.Result {
		offset = update.UpdateID + 1
		if update.Message == nil || update.Message.Text == "" {
			continue
		}
		if strconv.FormatInt(update.Message.Chat.ID, 10) != t.ChatID {
			logger.Debugf("ignoring message from chat %d", update.Message.Chat.ID)
			continue
		}
		commands = append(commands, strings.TrimSpace(update.Message.Text))
	}
	return commands, offset, nil
}

// StartPolling long-polls for commands until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := 0
	for {
		if ctx.Err() != nil {
			logger.Infof("telegram polling stopped")
			return
		}
		commands, next, err := t.Poll(ctx, offset, 30*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warnf("%v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}
		offset = next
		for _, cmd := range commands {
			logger.Infof("received command: %s", cmd)
			for _, reply := range handler(ctx, cmd) {
				if err := t.Send(ctx, reply); err != nil {
					logger.Errorf("send reply: %v", err)
					break
				}
			}
		}
	}
}
