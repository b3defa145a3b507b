package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dghubble/oauth1"

	logx "pollcaster/pkg/logx"
)

const DefaultXURL = "https://api.twitter.com/2/tweets"

// XConfig holds OAuth 1.0a user-context credentials for the X API.
type XConfig struct {
	URL            string
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
	Timeout        time.Duration
}

// X posts native polls through the v2 tweets endpoint.
type X struct {
	url  string
	http *http.Client
	log  logx.Logger
}

type xPollBody struct {
	Text string `json:"text"`
	Poll struct {
		DurationMinutes int      `json:"duration_minutes"`
		Options         []string `json:"options"`
	} `json:"poll"`
}

type xResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func NewX(cfg XConfig, log logx.Logger) (*X, error) {
	var missing []string
	for name, v := range map[string]string{
		"X_API_KEY":       cfg.ConsumerKey,
		"X_API_SECRET":    cfg.ConsumerSecret,
		"X_ACCESS_TOKEN":  cfg.AccessToken,
		"X_ACCESS_SECRET": cfg.AccessSecret,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", ErrCredentials, strings.Join(missing, ", "))
	}
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		url = DefaultXURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	base := &http.Client{Timeout: timeout}
	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, base)
	oc := oauth1.NewConfig(cfg.ConsumerKey, cfg.ConsumerSecret)
	client := oc.Client(ctx, oauth1.NewToken(cfg.AccessToken, cfg.AccessSecret))
	client.Timeout = timeout

	if log.IsZero() {
		log = logx.Nop()
	}
	return &X{url: url, http: client, log: log.With(logx.String("comp", "publisher.x"))}, nil
}

func (x *X) Publish(ctx context.Context, p Poll) (string, error) {
	var body xPollBody
	body.Text = p.Text
	body.Poll.DurationMinutes = int(p.Duration / time.Minute)
	if body.Poll.DurationMinutes <= 0 {
		body.Poll.DurationMinutes = 60
	}
	body.Poll.Options = p.Choices

	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := x.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("x: post poll: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	x.log.Debug("x response", logx.Int("status", resp.StatusCode), logx.Duration("took", time.Since(start)))

	if resp.StatusCode >= 400 {
		return "", &Error{Endpoint: "x", StatusCode: resp.StatusCode, Body: string(raw)}
	}
	var out xResponse
	if err := json.Unmarshal(raw, &out); err != nil || out.Data.ID == "" {
		return "", &Error{Endpoint: "x", StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return out.Data.ID, nil
}
