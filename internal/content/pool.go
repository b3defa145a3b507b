package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	yaml "go.yaml.in/yaml/v3"
)

// ErrEmptyPool is returned when a pool has no items.
var ErrEmptyPool = errors.New("content pool is empty")

// Pool is an ordered, non-empty list of items with unique ids.
type Pool struct {
	items []Item
	byID  map[string]int
}

// NewPool validates items and keeps their order.
func NewPool(items []Item) (*Pool, error) {
	if len(items) == 0 {
		return nil, ErrEmptyPool
	}
	p := &Pool{items: make([]Item, 0, len(items)), byID: make(map[string]int, len(items))}
	for i, it := range items {
		if err := it.validate(); err != nil {
			return nil, fmt.Errorf("item %d (%s): %w", i+1, it.ID, err)
		}
		if prev, dup := p.byID[it.ID]; dup {
			return nil, fmt.Errorf("item %d: duplicate id %q (also item %d)", i+1, it.ID, prev+1)
		}
		p.byID[it.ID] = i
		p.items = append(p.items, it)
	}
	return p, nil
}

func (p *Pool) Len() int { return len(p.items) }

// Items returns a copy of the pool in rotation order.
func (p *Pool) Items() []Item { return append([]Item(nil), p.items...) }

// Lookup returns the item with the given id.
func (p *Pool) Lookup(id string) (Item, bool) {
	i, ok := p.byID[id]
	if !ok {
		return Item{}, false
	}
	return p.items[i], true
}

// Fit checks every option against an endpoint's length limit in runes.
// A limit <= 0 accepts any length.
func (p *Pool) Fit(maxChoiceLen int) error {
	if maxChoiceLen <= 0 {
		return nil
	}
	var errs []error
	for i, it := range p.items {
		for j, c := range it.Choices {
			if utf8.RuneCountInString(c) > maxChoiceLen {
				errs = append(errs, fmt.Errorf("item %d (%s): option %d longer than %d characters", i+1, it.ID, j+1, maxChoiceLen))
			}
		}
	}
	return errors.Join(errs...)
}

// fileItem mirrors the questions file: id may be a string or a number.
type fileItem struct {
	ID       any      `json:"id,omitempty" yaml:"id,omitempty"`
	Question string   `json:"question" yaml:"question"`
	Options  []string `json:"options" yaml:"options"`
}

// LoadFile reads a JSON or YAML list of {id?, question, options}.
func LoadFile(path string) (*Pool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content pool: %w", err)
	}
	return Parse(path, b)
}

// Parse decodes pool data; the format is picked from the file extension.
func Parse(path string, data []byte) (*Pool, error) {
	var raw []fileItem
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse content pool %s: %w", path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		dec.DisallowUnknownFields()
		if len(bytes.TrimSpace(data)) > 0 {
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("parse content pool %s: %w", path, err)
			}
		}
	}

	items := make([]Item, 0, len(raw))
	for _, r := range raw {
		var id string
		if r.ID != nil {
			id = fmt.Sprint(r.ID)
		}
		items = append(items, NewItem(id, r.Question, r.Options))
	}
	return NewPool(items)
}
