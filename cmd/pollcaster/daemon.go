package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sddaemon "github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"

	"pollcaster/internal/scheduler"
	logx "pollcaster/pkg/logx"
)

const shutdownTimeout = 10 * time.Second

func newDaemonCmd(rf *rootFlags) *cobra.Command {
	var trigger string
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run on a cron schedule until interrupted",
		Long: `daemon performs a run immediately and then on every tick of the trigger
(default from daemon.schedule, "*/5 * * * *"). It notifies systemd when ready
and serves Prometheus metrics on daemon.metrics_addr when set. Edits to the
content file are picked up between runs; a pool that fails validation is
logged and the previous one stays in use.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rf)
			if err != nil {
				return err
			}
			defer a.Close()

			if trigger == "" {
				trigger = a.settings.Daemon.Schedule
			}
			d, err := scheduler.NewDaemon(a.runner, trigger, a.log)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			srv := serveMetrics(a)
			if err := d.Start(ctx); err != nil {
				return err
			}
			pw := scheduler.NewPoolWatcher(a.runner, a.settings.ContentPath, poolLoader(a.settings), a.log)
			if err := pw.Start(ctx); err != nil {
				a.log.Warn("content watch disabled", logx.Err(err))
			} else {
				defer pw.Close()
			}
			if ok, err := sddaemon.SdNotify(false, sddaemon.SdNotifyReady); err != nil {
				a.log.Warn("sd_notify failed", logx.Err(err))
			} else if ok {
				a.log.Debug("sd_notify ready sent")
			}

			<-ctx.Done()
			a.log.Info("shutting down")
			_, _ = sddaemon.SdNotify(false, sddaemon.SdNotifyStopping)

			sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer scancel()
			d.Stop(sctx)
			if srv != nil {
				_ = srv.Shutdown(sctx)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&trigger, "every", "", "Override the trigger (cron spec, duration like 5m, or HH:MM)")
	return cmd
}

func serveMetrics(a *app) *http.Server {
	addr := a.settings.Daemon.MetricsAddr
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		a.log.Info("metrics listening", logx.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server failed", logx.Err(err))
		}
	}()
	return srv
}
