package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ReviewInsights/internal/config"
	"ReviewInsights/internal/ports"
)

// maxMessageRunes is the Telegram limit for one message text.
const maxMessageRunes = 4096

// sender is the part of tgbotapi.BotAPI the notifier needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends digests to a Telegram chat via bot API.
type Notifier struct {
	bot    sender
	chatID int64
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier connects the bot and registers the target chat.
func NewNotifier(cfg config.TelegramConfig) (*Notifier, error) {
	chatID, ok := cfg.ChatIDValue()
	if cfg.BotToken == "" || !ok {
		return nil, fmt.Errorf("telegram notifier misconfigured")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}

	return newNotifier(bot, chatID), nil
}

func newNotifier(bot sender, chatID int64) *Notifier {
	return &Notifier{bot: bot, chatID: chatID}
}

// PublishDigest posts the digest as plain text, split to fit the message limit.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	for i, chunk := range splitMessage(digest, maxMessageRunes) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, chunk)); err != nil {
			return fmt.Errorf("send telegram message %d: %w", i+1, err)
		}
	}
	return nil
}

// splitMessage cuts text into chunks of at most limit runes, preferring the
// last newline inside each window.
func splitMessage(text string, limit int) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i > 0; i-- {
			if runes[i] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
		if len(runes) > 0 && runes[0] == '\n' {
			runes = runes[1:]
		}
	}
	return append(chunks, string(runes))
}
