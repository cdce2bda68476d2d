// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package social

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"autopress/internal/config"
)

// Telegram sends announcements to a chat or channel through a bot.
type Telegram struct {
	token    string
	chatID   string
	endpoint string
	client   *http.Client

	mu  sync.Mutex
	api *tgbotapi.BotAPI
}

// NewTelegram creates a Telegram notifier. The bot is contacted on first use.
func NewTelegram(cfg config.Telegram) *Telegram {
	return &Telegram{
		token:    cfg.Token,
		chatID:   cfg.ChatID,
		endpoint: tgbotapi.APIEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Notify(ctx context.Context, a Announcement) error {
	api, err := t.bot()
	if err != nil {
		return err
	}

	text := FormatTelegram(a)
	var msg tgbotapi.MessageConfig
	if id, err := strconv.ParseInt(t.chatID, 10, 64); err == nil {
		msg = tgbotapi.NewMessage(id, text)
	} else {
		msg = tgbotapi.NewMessageToChannel(t.chatID, text)
	}
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// bot connects lazily; creating a BotAPI performs a getMe round trip.
func (t *Telegram) bot() (*tgbotapi.BotAPI, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.api != nil {
		return t.api, nil
	}
	api, err := tgbotapi.NewBotAPIWithClient(t.token, t.endpoint, t.client)
	if err != nil {
		return nil, fmt.Errorf("telegram connect: %w", err)
	}
	t.api = api
	return api, nil
}

// FormatTelegram renders an announcement as a Telegram HTML message.
func FormatTelegram(a Announcement) string {
	var b strings.Builder
	b.WriteString("<b>")
	b.WriteString(html.EscapeString(a.Title))
	b.WriteString("</b>\n")
	if a.Excerpt != "" {
		b.WriteString(html.EscapeString(truncate(a.Excerpt, 500)))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "<a href=\"%s\">Read more</a>", html.EscapeString(a.URL))
	return b.String()
}
