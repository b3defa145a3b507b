package publisher

import (
	"errors"
	"strings"
	"time"

	logx "pollcaster/pkg/logx"
)

// Config selects and configures the delivery endpoint.
//
// Driver values: "x" (default), "telegram", "dryrun".
type Config struct {
	Driver      string
	MinInterval time.Duration
	X           XConfig
	Telegram    TelegramConfig
}

// Option length limits in runes, per endpoint.
const (
	XMaxChoiceLen        = 25
	TelegramMaxChoiceLen = 100
)

// MaxChoiceLen is the option limit of the selected endpoint. dryrun has none.
func (c Config) MaxChoiceLen() int {
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case "", "x", "twitter":
		return XMaxChoiceLen
	case "telegram":
		return TelegramMaxChoiceLen
	default:
		return 0
	}
}

// New builds the configured publisher. Missing credentials fail here, before
// any scheduler state is touched.
func New(cfg Config, log logx.Logger) (Publisher, error) {
	var (
		p   Publisher
		err error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "x", "twitter":
		p, err = NewX(cfg.X, log)
	case "telegram":
		p, err = NewTelegram(cfg.Telegram, log)
	case "dryrun", "dry-run":
		p = NewDryRun(log)
	default:
		return nil, errors.New("unknown publisher driver: " + cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return Limited(p, cfg.MinInterval), nil
}
