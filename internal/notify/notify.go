// Package notify pushes short summaries to a family Telegram chat. With no
// token or chat id configured every call is a no-op.
package notify

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *log.Logger
}

// New builds a notifier. An empty token or chat id yields a disabled
// notifier rather than an error, so the service runs fine without Telegram.
func New(token, chatID string, logger *log.Logger) *Notifier {
	n := &Notifier{logger: logger}
	if token == "" || chatID == "" {
		return n
	}

	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		logger.Warn("invalid telegram chat id, notifications disabled", "chat_id", chatID)
		return n
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Warn("telegram init failed, notifications disabled", "error", err)
		return n
	}
	n.bot = bot
	n.chatID = id
	return n
}

func (n *Notifier) Enabled() bool {
	return n.bot != nil
}

// ImportSummary reports an import batch. Skipped-only batches are not worth
// a message.
func (n *Notifier) ImportSummary(source string, imported, skipped int) {
	if imported == 0 {
		return
	}
	n.send(fmt.Sprintf("Imported %d transactions from %s (%d duplicates skipped)", imported, source, skipped))
}

// MatchSummary reports an auto-match run that linked or tagged anything.
func (n *Notifier) MatchSummary(matched int) {
	if matched == 0 {
		return
	}
	n.send(fmt.Sprintf("Auto-matched %d transactions", matched))
}

func (n *Notifier) send(text string) {
	if n.bot == nil {
		return
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Warn("telegram send failed", "error", err)
	}
}
