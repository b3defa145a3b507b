package config

// Config is the on-disk configuration (JSON or YAML).
//
// All durations are Go duration strings (e.g. "90s", "6m", "1h").
// Credentials are never read from this file; they come from the environment.
type Config struct {
	Schedule  ScheduleConfig  `json:"schedule"`
	Rotation  RotationConfig  `json:"rotation"`
	Content   ContentConfig   `json:"content"`
	Storage   StorageConfig   `json:"storage"`
	Publisher PublisherConfig `json:"publisher"`
	Logging   LoggingConfig   `json:"logging"`
	Daemon    DaemonConfig    `json:"daemon"`
}

// ScheduleConfig describes the slot calendar.
//
// Defaults: hours 8,10,...,22; tolerance "6m"; timezone "Europe/Istanbul".
type ScheduleConfig struct {
	Hours     []int  `json:"hours,omitempty"`
	Tolerance string `json:"tolerance,omitempty"`
	// Timezone is an IANA name, e.g. "Europe/Istanbul".
	Timezone string `json:"timezone,omitempty"`
}

// RotationConfig controls what happens once every poll was delivered.
//
// Policy: "reset" (default) clears the delivered set; "wrap" drops only the
// least-recently delivered id.
type RotationConfig struct {
	Policy string `json:"policy,omitempty"`
}

type ContentConfig struct {
	// Path to a JSON or YAML list of {id?, question, options}.
	Path string `json:"path,omitempty"`
}

// StorageConfig controls where ledger and tracker state live.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./state/pollcaster.db" }
type StorageConfig struct {
	Driver      string `json:"driver,omitempty"` // file (default) | sqlite
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite
	// Retention caps the number of remembered (day, hour) slots.
	Retention int `json:"retention,omitempty"`
}

type PublisherConfig struct {
	Driver string `json:"driver,omitempty"` // x (default) | telegram | dryrun
	// Duration is how long the poll stays open.
	Duration string `json:"duration,omitempty"`
	// Timeout bounds the outbound call.
	Timeout string `json:"timeout,omitempty"`
	// MinInterval spaces out consecutive posts from one process (daemon).
	MinInterval string `json:"min_interval,omitempty"`

	XURL     string                  `json:"x_url,omitempty"`
	Telegram TelegramPublisherConfig `json:"telegram,omitempty"`
}

type TelegramPublisherConfig struct {
	APIURL string `json:"api_url,omitempty"`
	// ChatID may also be set with TELEGRAM_CHAT_ID.
	ChatID    string `json:"chat_id,omitempty"`
	Anonymous *bool  `json:"anonymous,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level,omitempty"`
	Console *bool       `json:"console,omitempty"`
	File    LoggingFile `json:"file,omitempty"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// DaemonConfig is used by the long-running trigger mode only.
type DaemonConfig struct {
	// Schedule is a cron spec; default "*/5 * * * *".
	Schedule string `json:"schedule,omitempty"`
	// MetricsAddr serves /metrics when set, e.g. "127.0.0.1:9464".
	MetricsAddr string `json:"metrics_addr,omitempty"`
}
