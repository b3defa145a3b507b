// Package publisher sends a poll to an external posting endpoint.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"
)

// Poll is what the scheduler hands over for delivery.
type Poll struct {
	// Text is the full post body.
	Text string
	// Question is the bare question for endpoints that render options
	// themselves. Empty means Text.
	Question string
	Choices  []string
	Duration time.Duration
}

func (p Poll) question() string {
	if strings.TrimSpace(p.Question) != "" {
		return p.Question
	}
	return p.Text
}

// Publisher delivers one poll and returns the endpoint's delivery id.
type Publisher interface {
	Publish(ctx context.Context, p Poll) (string, error)
}

// ErrCredentials is wrapped by constructors when credentials are missing.
var ErrCredentials = errors.New("publisher credentials missing")

// Error is a non-success response from the endpoint.
type Error struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: poll failed %d: %s", e.Endpoint, e.StatusCode, truncate(strings.TrimSpace(e.Body), 500))
}

// Limited spaces out calls to p by at least every.
// A zero interval returns p unchanged.
func Limited(p Publisher, every time.Duration) Publisher {
	if every <= 0 {
		return p
	}
	return &limited{next: p, lim: rate.NewLimiter(rate.Every(every), 1)}
}

type limited struct {
	next Publisher
	lim  *rate.Limiter
}

func (l *limited) Publish(ctx context.Context, p Poll) (string, error) {
	if err := l.lim.Wait(ctx); err != nil {
		return "", fmt.Errorf("publish rate limit: %w", err)
	}
	return l.next.Publish(ctx, p)
}

// truncate limits s to maxN runes, marking the cut with "...".
func truncate(s string, maxN int) string {
	if maxN <= 0 || utf8.RuneCountInString(s) <= maxN {
		return s
	}
	r := []rune(s)
	if maxN < 10 {
		return string(r[:maxN])
	}
	return string(r[:maxN-3]) + "..."
}
