package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrConfig is wrapped by every configuration failure.
var ErrConfig = errors.New("configuration error")

const (
	DefaultPath    = "./pollcaster.yaml"
	DefaultEnvFile = ".env"
)

// Loader reads the config file and the environment exactly once.
type Loader struct {
	Path string
	// Required fails when Path does not exist. Otherwise a missing file
	// means "all defaults".
	Required bool
	// EnvFile is read with godotenv if it exists. Process env wins.
	EnvFile string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Parse decodes the config file strictly (unknown keys and trailing data are
// rejected). A missing optional file yields an empty Config.
func (l Loader) Parse() (*Config, error) {
	b, err := os.ReadFile(l.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !l.Required {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	jb, format, err := toJSON(l.Path, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfig, l.Path, err)
	}

	var cfg Config
	if len(bytes.TrimSpace(jb)) == 0 || string(bytes.TrimSpace(jb)) == "null" {
		return &cfg, nil
	}
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %s (%s): %v", ErrConfig, l.Path, format, err)
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("%w: %s: trailing data", ErrConfig, l.Path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrConfig, l.Path, err)
	}
	return &cfg, nil
}

// Load parses the file, overlays the environment and validates everything.
func (l Loader) Load() (*Settings, error) {
	cfg, err := l.Parse()
	if err != nil {
		return nil, err
	}
	env, err := l.env()
	if err != nil {
		return nil, err
	}
	return Resolve(cfg, env)
}

// Env looks up environment values.
type Env func(key string) string

func (l Loader) env() (Env, error) {
	get := l.Getenv
	if get == nil {
		get = os.Getenv
	}
	var file map[string]string
	if strings.TrimSpace(l.EnvFile) != "" {
		m, err := godotenv.Read(l.EnvFile)
		switch {
		case err == nil:
			file = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("%w: env file %s: %v", ErrConfig, l.EnvFile, err)
		}
	}
	return func(key string) string {
		if v := get(key); v != "" {
			return v
		}
		return file[key]
	}, nil
}

func envSeconds(env Env, key string) (time.Duration, bool, error) {
	raw := strings.TrimSpace(env(key))
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false, fmt.Errorf("%s: invalid seconds %q", key, raw)
	}
	return time.Duration(n) * time.Second, true, nil
}
