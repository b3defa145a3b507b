package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"pollcaster/internal/content"
	"pollcaster/internal/publisher"
	"pollcaster/internal/slot"
	"pollcaster/internal/storage"
	logx "pollcaster/pkg/logx"
)

// Defaults mirror the historical two-hourly poll bot.
var DefaultHours = []int{8, 10, 12, 14, 16, 18, 20, 22}

const (
	DefaultTolerance      = 6 * time.Minute
	DefaultTimezone       = "Europe/Istanbul"
	DefaultContentPath    = "questions.json"
	DefaultStoragePath    = "."
	DefaultPollDuration   = 60 * time.Minute
	DefaultPublishTimeout = 30 * time.Second
	DefaultDaemonSchedule = "*/5 * * * *"
)

// Settings is the validated configuration handed to every component.
// Nothing outside this package reads the environment.
type Settings struct {
	Calendar     *slot.Calendar
	Retention    int
	Policy       content.Policy
	ContentPath  string
	PollDuration time.Duration

	Storage   storage.Config
	Publisher publisher.Config
	Logging   logx.Config
	Daemon    DaemonSettings
}

type DaemonSettings struct {
	Schedule    string
	MetricsAddr string
}

// Resolve applies defaults and env overrides to cfg and validates the result.
// Every problem is reported at once, wrapped in ErrConfig.
func Resolve(cfg *Config, env Env) (*Settings, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if env == nil {
		env = func(string) string { return "" }
	}
	var errs []error
	s := &Settings{}

	// Schedule.
	hours := cfg.Schedule.Hours
	if len(hours) == 0 {
		hours = DefaultHours
	}
	// "0s" is a valid tolerance: the slot instant only.
	tol, err := duration("schedule.tolerance", cfg.Schedule.Tolerance, DefaultTolerance)
	if err != nil {
		errs = append(errs, err)
	}
	if d, ok, err := envSeconds(env, "SLOT_TOLERANCE_SEC"); err != nil {
		errs = append(errs, err)
	} else if ok {
		tol = d
	}
	tzName := strings.TrimSpace(cfg.Schedule.Timezone)
	if tzName == "" {
		tzName = DefaultTimezone
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		errs = append(errs, fmt.Errorf("schedule.timezone: %w", err))
	}
	if err == nil {
		cal, cerr := slot.NewCalendar(hours, tol, loc)
		if cerr != nil {
			errs = append(errs, fmt.Errorf("schedule.hours: %w", cerr))
		}
		s.Calendar = cal
	}

	// Rotation + content.
	if s.Policy, err = content.ParsePolicy(cfg.Rotation.Policy); err != nil {
		errs = append(errs, fmt.Errorf("rotation.policy: %w", err))
	}
	s.ContentPath = strings.TrimSpace(cfg.Content.Path)
	if s.ContentPath == "" {
		s.ContentPath = DefaultContentPath
	}

	// Storage.
	s.Retention = cfg.Storage.Retention
	if s.Retention < 0 {
		errs = append(errs, errors.New("storage.retention must be >= 0"))
	}
	if s.Retention == 0 {
		s.Retention = slot.DefaultRetention
	}
	busy, err := duration("storage.busy_timeout", cfg.Storage.BusyTimeout, 0)
	if err != nil {
		errs = append(errs, err)
	}
	s.Storage = storage.Config{
		Driver:      strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)),
		Path:        strings.TrimSpace(cfg.Storage.Path),
		BusyTimeout: busy,
	}
	switch s.Storage.Driver {
	case "", "file":
		if s.Storage.Path == "" {
			s.Storage.Path = DefaultStoragePath
		}
	case "sqlite", "sqlite3":
		if s.Storage.Path == "" {
			s.Storage.Path = filepath.Join(DefaultStoragePath, "pollcaster.db")
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", cfg.Storage.Driver))
	}

	// Publisher.
	pc := cfg.Publisher
	if s.PollDuration, err = duration("publisher.duration", pc.Duration, DefaultPollDuration); err != nil {
		errs = append(errs, err)
	}
	if s.PollDuration < 5*time.Minute || s.PollDuration > 7*24*time.Hour {
		errs = append(errs, fmt.Errorf("publisher.duration must be between 5m and 168h, got %s", s.PollDuration))
	}
	timeout, err := duration("publisher.timeout", pc.Timeout, DefaultPublishTimeout)
	if err != nil {
		errs = append(errs, err)
	}
	if timeout == 0 {
		timeout = DefaultPublishTimeout
	}
	minInterval, err := duration("publisher.min_interval", pc.MinInterval, 0)
	if err != nil {
		errs = append(errs, err)
	}
	anonymous := true
	if pc.Telegram.Anonymous != nil {
		anonymous = *pc.Telegram.Anonymous
	}
	chatID := strings.TrimSpace(env("TELEGRAM_CHAT_ID"))
	if chatID == "" {
		chatID = strings.TrimSpace(pc.Telegram.ChatID)
	}
	s.Publisher = publisher.Config{
		Driver:      strings.ToLower(strings.TrimSpace(pc.Driver)),
		MinInterval: minInterval,
		X: publisher.XConfig{
			URL:            strings.TrimSpace(pc.XURL),
			ConsumerKey:    env("X_API_KEY"),
			ConsumerSecret: env("X_API_SECRET"),
			AccessToken:    env("X_ACCESS_TOKEN"),
			AccessSecret:   env("X_ACCESS_SECRET"),
			Timeout:        timeout,
		},
		Telegram: publisher.TelegramConfig{
			Token:     env("TELEGRAM_BOT_TOKEN"),
			ChatID:    chatID,
			URL:       strings.TrimSpace(pc.Telegram.APIURL),
			Anonymous: anonymous,
			Timeout:   timeout,
		},
	}
	if err := checkCredentials(s.Publisher); err != nil {
		errs = append(errs, err)
	}

	// Logging.
	console := true
	if cfg.Logging.Console != nil {
		console = *cfg.Logging.Console
	}
	s.Logging = logx.Config{
		Level:   cfg.Logging.Level,
		Console: console,
		File:    logx.FileConfig{Enabled: cfg.Logging.File.Enabled, Path: cfg.Logging.File.Path},
	}

	// Daemon.
	s.Daemon = DaemonSettings{
		Schedule:    strings.TrimSpace(cfg.Daemon.Schedule),
		MetricsAddr: strings.TrimSpace(cfg.Daemon.MetricsAddr),
	}
	if s.Daemon.Schedule == "" {
		s.Daemon.Schedule = DefaultDaemonSchedule
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrConfig, errors.Join(errs...))
	}
	return s, nil
}

// checkCredentials reports missing secrets for the selected driver by name.
func checkCredentials(pc publisher.Config) error {
	var need map[string]string
	switch pc.Driver {
	case "", "x", "twitter":
		need = map[string]string{
			"X_API_KEY":       pc.X.ConsumerKey,
			"X_API_SECRET":    pc.X.ConsumerSecret,
			"X_ACCESS_TOKEN":  pc.X.AccessToken,
			"X_ACCESS_SECRET": pc.X.AccessSecret,
		}
	case "telegram":
		need = map[string]string{
			"TELEGRAM_BOT_TOKEN": pc.Telegram.Token,
			"TELEGRAM_CHAT_ID":   pc.Telegram.ChatID,
		}
	case "dryrun", "dry-run":
	default:
		return fmt.Errorf("publisher.driver: unknown driver %q", pc.Driver)
	}
	var missing []string
	for _, k := range []string{"X_API_KEY", "X_API_SECRET", "X_ACCESS_TOKEN", "X_ACCESS_SECRET", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID"} {
		if v, ok := need[k]; ok && strings.TrimSpace(v) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing environment: %s", strings.Join(missing, ", "))
	}
	return nil
}
