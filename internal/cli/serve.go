package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"franchise_ops_worker/internal/infra/httpserver"
	"franchise_ops_worker/internal/infra/logger"
	"franchise_ops_worker/internal/infra/scheduler"
	"franchise_ops_worker/internal/infra/telegram"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the job scheduler and the ops HTTP server",
		Long: `Starts the cron scheduler with the expiry notifier, the purchase
auto-confirm reconciler and the keep-alive job, plus the ops HTTP server
(/healthz, /ping). Every instance may run serve; lock-protected jobs run
on one instance per trigger.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	w, err := newWorker(ctx)
	if err != nil {
		return err
	}
	defer w.Close()
	cfg := w.cfg

	sched := scheduler.NewJobScheduler(logger.WithComponent("scheduler"), cfg.JobTimeout, w.announcers()...)
	if err := sched.Register(cfg.CronSpecExpiryNotifier, w.jobs[jobExpiryNotifier]); err != nil {
		return err
	}
	if err := sched.Register(cfg.CronSpecAutoConfirm, w.jobs[jobAutoConfirm]); err != nil {
		return err
	}
	if err := sched.Register(cfg.CronSpecKeepAlive, w.keepAlive); err != nil {
		return err
	}

	router := httpserver.NewRouter()
	(&httpserver.OpsHandler{Pinger: w.keepAlive, Log: logger.WithComponent("http")}).Register(router)
	srv := httpserver.NewServer(cfg.HTTPAddr, router)

	srvErr := make(chan error, 1)
	go func() {
		w.log.WithField("addr", cfg.HTTPAddr).Info("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	if w.bot != nil {
		telegram.RegisterBotCommands(ctx, w.bot, cfg.TelegramOpsChatID, w.keepAlive, sched.JobNames(), logger.WithComponent("telegram"))
		go w.bot.Start()
		w.log.Info("Ops chat relay started")
	}

	sched.Start()
	w.log.Info("Worker started")

	var runErr error
	select {
	case <-ctx.Done():
		w.log.Info("Shutting down worker...")
	case err, ok := <-srvErr:
		if ok {
			runErr = fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if w.bot != nil {
		w.bot.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		w.log.WithError(err).Warn("HTTP server shutdown failed")
	}
	sched.Stop(shutdownCtx)
	w.log.Info("Worker shut down gracefully")
	return runErr
}
