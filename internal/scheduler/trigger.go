package scheduler

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

var reHHMM = regexp.MustCompile(`^\s*(\d{1,3}):(\d{2})\s*$`)

// ParseTrigger normalizes a daemon trigger into a cron spec.
//
// Supported forms:
//   - Cron: "*/5 * * * *", "0 */2 * * * *", "@hourly", "@every 5m"
//   - Interval duration: "5m", "90s"
//   - Interval HH:MM: "00:05" (every 5 minutes)
//
// The "cron:" and "every:" prefixes force interpretation.
func ParseTrigger(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("trigger schedule required")
	}

	low := strings.ToLower(s)
	switch {
	case strings.HasPrefix(low, "cron:"):
		return validateCron(strings.TrimSpace(s[len("cron:"):]))
	case strings.HasPrefix(low, "every:"):
		d, err := parseInterval(strings.TrimSpace(s[len("every:"):]))
		if err != nil {
			return "", err
		}
		return "@every " + d.String(), nil
	}

	// Whitespace or a leading '@' means cron.
	if strings.ContainsAny(s, " \t") || strings.HasPrefix(s, "@") {
		return validateCron(s)
	}

	d, err := parseInterval(s)
	if err != nil {
		return "", fmt.Errorf(
			"invalid trigger %q (use cron like '*/5 * * * *', HH:MM like '00:05', or duration like '5m')",
			raw,
		)
	}
	return "@every " + d.String(), nil
}

func validateCron(expr string) (string, error) {
	if expr == "" {
		return "", fmt.Errorf("cron schedule required")
	}
	if _, err := cronParser.Parse(expr); err != nil {
		return "", fmt.Errorf("invalid cron %q: %w", expr, err)
	}
	return expr, nil
}

func parseInterval(v string) (time.Duration, error) {
	if m := reHHMM.FindStringSubmatch(v); m != nil {
		var hh, mm int
		fmt.Sscanf(m[1], "%d", &hh)
		fmt.Sscanf(m[2], "%d", &mm)
		if mm > 59 {
			return 0, fmt.Errorf("invalid minutes in %q", v)
		}
		d := time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute
		if d <= 0 {
			return 0, fmt.Errorf("interval must be > 0")
		}
		return d, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q", v)
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be > 0")
	}
	return d, nil
}
