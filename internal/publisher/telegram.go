package publisher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	logx "pollcaster/pkg/logx"
)

// maxOpenPeriod is the Bot API limit for poll open_period.
const maxOpenPeriod = 600 * time.Second

type TelegramConfig struct {
	Token  string
	ChatID string
	// URL overrides the Bot API server; empty means the public one.
	URL       string
	Anonymous bool
	Timeout   time.Duration
}

// Telegram sends native polls with the Bot API.
type Telegram struct {
	bot       *tele.Bot
	chat      tele.ChatID
	anonymous bool
	log       logx.Logger
}

func NewTelegram(cfg TelegramConfig, log logx.Logger) (*Telegram, error) {
	var missing []string
	if strings.TrimSpace(cfg.Token) == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if strings.TrimSpace(cfg.ChatID) == "" {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrCredentials, strings.Join(missing, ", "))
	}
	chatID, err := strconv.ParseInt(strings.TrimSpace(cfg.ChatID), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("telegram chat id %q: %w", cfg.ChatID, err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.Token,
		URL:     cfg.URL,
		Offline: true,
		Client:  &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Telegram{
		bot:       b,
		chat:      tele.ChatID(chatID),
		anonymous: cfg.Anonymous,
		log:       log.With(logx.String("comp", "publisher.telegram")),
	}, nil
}

func (t *Telegram) Publish(ctx context.Context, p Poll) (string, error) {
	poll := &tele.Poll{
		Type:      tele.PollRegular,
		Question:  p.question(),
		Anonymous: t.anonymous,
	}
	for _, c := range p.Choices {
		poll.Options = append(poll.Options, tele.PollOption{Text: c})
	}
	if p.Duration > 0 {
		open := min(p.Duration, maxOpenPeriod)
		poll.OpenPeriod = int(open / time.Second)
	}

	// telebot has no per-call context; honour cancellation before sending.
	if err := ctx.Err(); err != nil {
		return "", err
	}
	msg, err := t.bot.Send(t.chat, poll)
	if err != nil {
		var te *tele.Error
		if errors.As(err, &te) {
			return "", &Error{Endpoint: "telegram", StatusCode: te.Code, Body: te.Description}
		}
		return "", fmt.Errorf("telegram: send poll: %w", err)
	}
	return strconv.Itoa(msg.ID), nil
}
