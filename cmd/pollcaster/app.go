package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pollcaster/internal/config"
	"pollcaster/internal/content"
	"pollcaster/internal/metrics"
	"pollcaster/internal/publisher"
	"pollcaster/internal/scheduler"
	"pollcaster/internal/storage"
	logx "pollcaster/pkg/logx"
)

// app is everything one command needs, built in dependency order.
type app struct {
	settings *config.Settings
	logs     *logx.Service
	log      logx.Logger
	repo     storage.Repository
	metrics  *metrics.Metrics
	runner   *scheduler.Runner
}

// openApp fails on configuration, credentials or content before any state
// file is opened.
func openApp(cmd *cobra.Command, rf *rootFlags) (*app, error) {
	loader := config.Loader{
		Path:     rf.configPath,
		Required: cmd.Flag("config").Changed,
		EnvFile:  rf.envFile,
	}
	s, err := loader.Load()
	if err != nil {
		return nil, err
	}

	logs, log, err := logx.New(s.Logging)
	if err != nil {
		return nil, fmt.Errorf("%w: logging: %w", config.ErrConfig, err)
	}
	log = log.With(logx.String("app", "pollcaster"))

	pool, err := poolLoader(s)(s.ContentPath)
	if err != nil {
		_ = logs.Close()
		return nil, fmt.Errorf("%w: content %s: %w", config.ErrConfig, s.ContentPath, err)
	}

	pub, err := publisher.New(s.Publisher, log)
	if err != nil {
		_ = logs.Close()
		return nil, fmt.Errorf("%w: %w", config.ErrConfig, err)
	}

	repo, err := storage.Open(s.Storage, log)
	if err != nil {
		_ = logs.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	m := metrics.New()
	runner, err := scheduler.New(scheduler.Options{
		Calendar:     s.Calendar,
		Pool:         pool,
		Policy:       s.Policy,
		Retention:    s.Retention,
		PollDuration: s.PollDuration,
		Repo:         repo,
		Publisher:    pub,
		Metrics:      m,
		Log:          log,
	})
	if err != nil {
		_ = repo.Close()
		_ = logs.Close()
		return nil, err
	}

	log.Debug("ready",
		logx.String("content", s.ContentPath),
		logx.Int("pool_size", pool.Len()),
		logx.String("storage", s.Storage.Driver),
		logx.String("publisher", s.Publisher.Driver),
	)
	return &app{settings: s, logs: logs, log: log, repo: repo, metrics: m, runner: runner}, nil
}

// poolLoader reads a content file and checks it against the option length
// the configured endpoint accepts.
func poolLoader(s *config.Settings) scheduler.PoolLoader {
	limit := s.Publisher.MaxChoiceLen()
	return func(path string) (*content.Pool, error) {
		pool, err := content.LoadFile(path)
		if err != nil {
			return nil, err
		}
		if err := pool.Fit(limit); err != nil {
			return nil, err
		}
		return pool, nil
	}
}

func (a *app) Close() {
	if err := a.repo.Close(); err != nil {
		a.log.Warn("storage close failed", logx.Err(err))
	}
	_ = a.logs.Close()
}
