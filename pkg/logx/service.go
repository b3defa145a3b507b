package logx

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultFile is used when the file sink is enabled without a path.
const DefaultFile = "./pollcaster.log"

type Config struct {
	Level   string
	Console bool
	File    FileConfig
}

type FileConfig struct {
	Enabled bool
	Path    string
}

// Service owns the sinks behind a Logger.
type Service struct {
	file *os.File
}

// New opens the configured sinks. With no sink enabled, logs go to the
// console.
func New(cfg Config) (*Service, Logger, error) {
	setup()
	s := &Service{}
	var sinks []io.Writer
	if cfg.Console {
		sinks = append(sinks, consoleWriter(os.Stderr))
	}
	if cfg.File.Enabled {
		path := strings.TrimSpace(cfg.File.Path)
		if path == "" {
			path = DefaultFile
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, Logger{}, fmt.Errorf("open log file %s: %w", path, err)
		}
		s.file = f
		sinks = append(sinks, zerolog.SyncWriter(f))
	}
	if len(sinks) == 0 {
		sinks = append(sinks, consoleWriter(os.Stderr))
	}
	zl := newZerolog(zerolog.MultiLevelWriter(sinks...), cfg.Level)
	return s, Logger{zl: zl, set: true}, nil
}

// Close releases the file sink, if any.
func (s *Service) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	f := s.file
	s.file = nil
	return f.Close()
}

func consoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:          w,
		TimeFormat:   timeFormat,
		FormatCaller: func(i any) string { s, _ := i.(string); return s },
	}
}
