// Package telegram connects the dialog engine to the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ashureev/ipoteka-bot/internal/dialog"
)

// Channel receives Telegram updates, funnels each chat's turns through
// the sequencer into the dialog engine, and sends the replies back.
type Channel struct {
	bot    *tgbotapi.BotAPI
	engine *dialog.Engine
	seq    *sequencer
}

// NewChannel authorizes against the Bot API. ctx bounds the lifetime of
// the per-chat workers and of everything a turn does.
func NewChannel(ctx context.Context, token string, engine *dialog.Engine) (*Channel, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("authorize bot: %w", err)
	}

	c := &Channel{bot: bot, engine: engine}
	c.seq = newSequencer(ctx, c.handleTurn)
	return c, nil
}

// Username returns the bot's Telegram username.
func (c *Channel) Username() string {
	return c.bot.Self.UserName
}

// WebhookPath is the local HTTP path Telegram posts updates to in
// webhook mode. The token keeps the path unguessable.
func (c *Channel) WebhookPath() string {
	return "/telegram/" + c.bot.Token
}

// Start begins receiving updates and blocks until ctx is done. With a
// public URL it registers a webhook and leaves delivery to the HTTP
// server; otherwise it drops any stale webhook and long-polls.
func (c *Channel) Start(ctx context.Context, publicURL string) error {
	if publicURL != "" {
		wh, err := tgbotapi.NewWebhook(publicURL + c.WebhookPath())
		if err != nil {
			return fmt.Errorf("build webhook config: %w", err)
		}
		if _, err := c.bot.Request(wh); err != nil {
			return fmt.Errorf("register webhook: %w", err)
		}

		slog.Info("Telegram webhook registered", "bot", c.Username(), "url", publicURL)
		<-ctx.Done()
		return nil
	}

	// A webhook left over from a previous deployment blocks getUpdates.
	if _, err := c.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete stale webhook: %w", err)
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := c.bot.GetUpdatesChan(cfg)

	slog.Info("Telegram channel polling", "bot", c.Username())
	for {
		select {
		case <-ctx.Done():
			c.bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			c.Enqueue(update)
		}
	}
}

// Enqueue admits one update. Updates that carry no text message are
// ignored; Telegram sends plenty of other kinds.
func (c *Channel) Enqueue(update tgbotapi.Update) {
	turn, ok := turnFromUpdate(update)
	if !ok {
		return
	}
	c.seq.enqueue(turn)
}

func (c *Channel) handleTurn(ctx context.Context, turn dialog.Turn) {
	reply := c.engine.HandleTurn(ctx, turn)

	msg := tgbotapi.NewMessage(turn.ChatID, reply)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := c.bot.Send(msg); err != nil {
		slog.Error("Failed to send reply", "chat_id", turn.ChatID, "error", err)
	}
}

// turnFromUpdate classifies an update into a dialog turn.
func turnFromUpdate(update tgbotapi.Update) (dialog.Turn, bool) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		return dialog.Turn{}, false
	}

	turn := dialog.Turn{ChatID: msg.Chat.ID, Text: msg.Text}
	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			turn.Command = dialog.CommandStart
		case "cancel":
			turn.Command = dialog.CommandCancel
		case "help":
			turn.Command = dialog.CommandHelp
		default:
			turn.Command = dialog.CommandUnknown
		}
	}
	return turn, true
}
