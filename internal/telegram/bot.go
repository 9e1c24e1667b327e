package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"garden-planner/internal/config"
)

const messageTimeout = 30 * time.Second

// Sender delivers outgoing messages. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Handler runs one chat command.
type Handler interface {
	Handle(ctx context.Context, userID int64, text string) []Reply
}

// Bot receives webhook updates and answers allowed users.
type Bot struct {
	api     Sender
	handler Handler
	allowed []int64
	logger  *zap.Logger

	wg sync.WaitGroup
}

// New creates a Bot around an existing sender.
func New(api Sender, handler Handler, allowed []int64, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		api:     api,
		handler: handler,
		allowed: allowed,
		logger:  logger,
	}
}

// NewBot initializes the Telegram API and sets the webhook.
func NewBot(cfg *config.Config, handler Handler, logger *zap.Logger) (*Bot, error) {
	if err := cfg.RequireTelegram(); err != nil {
		return nil, err
	}
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	logger.Info("webhook set", zap.String("response", resp.Description))

	return New(api, handler, cfg.TelegramAllowedUserIDs, logger), nil
}

// RegisterHandlers mounts the webhook on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /webhook", b.handleWebhook)
}

// Wait blocks until every message in flight has been answered.
func (b *Bot) Wait() {
	b.wg.Wait()
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.logger.Warn("error parsing update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	if !slices.Contains(b.allowed, msg.From.ID) {
		b.logger.Warn("unauthorized access attempt",
			zap.Int64("user_id", msg.From.ID),
			zap.String("username", msg.From.UserName))
		return
	}

	// Telegram retries slow webhooks, so answer after responding.
	ctx := context.WithoutCancel(r.Context())
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.processMessage(ctx, msg)
	}()
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(ctx, messageTimeout)
	defer cancel()

	b.logger.Debug("chat command", zap.Int64("user_id", msg.From.ID), zap.String("text", msg.Text))
	for _, reply := range b.handler.Handle(ctx, msg.From.ID, msg.Text) {
		out := tgbotapi.NewMessage(msg.Chat.ID, reply.Text)
		if reply.Markdown {
			out.ParseMode = tgbotapi.ModeMarkdown
		}
		if _, err := b.api.Send(out); err != nil {
			b.logger.Error("failed to send reply", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
			return
		}
	}
}
