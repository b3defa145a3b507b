package content

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	MinChoices = 2
	MaxChoices = 4
)

// Item is one poll: a question and its ordered answer choices.
type Item struct {
	ID      string
	Body    string
	Choices []string
}

// Text is the post body: the question followed by each choice on its own line.
func (it Item) Text() string {
	lines := make([]string, 0, 1+len(it.Choices))
	lines = append(lines, it.Body)
	lines = append(lines, it.Choices...)
	return strings.Join(lines, "\n")
}

// ItemID returns explicit when it is non-blank, else a digest of the trimmed
// body and choices. The digest is stable for unchanged text.
func ItemID(explicit, body string, choices []string) string {
	if s := strings.TrimSpace(explicit); s != "" {
		return s
	}
	h := sha1.New()
	h.Write([]byte(strings.TrimSpace(body)))
	for _, c := range choices {
		h.Write([]byte(strings.TrimSpace(c)))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// NewItem builds an item and resolves its id.
func NewItem(id, body string, choices []string) Item {
	return Item{
		ID:      ItemID(id, body, choices),
		Body:    body,
		Choices: append([]string(nil), choices...),
	}
}

func (it Item) validate() error {
	var errs []error
	if strings.TrimSpace(it.Body) == "" {
		errs = append(errs, errors.New("question is empty"))
	}
	if n := len(it.Choices); n < MinChoices || n > MaxChoices {
		errs = append(errs, fmt.Errorf("needs %d..%d options, got %d", MinChoices, MaxChoices, n))
	}
	for i, c := range it.Choices {
		if strings.TrimSpace(c) == "" {
			errs = append(errs, fmt.Errorf("option %d is empty", i+1))
		}
	}
	return errors.Join(errs...)
}
