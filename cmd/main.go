// jobwatch-monitor — discovers new product job postings per region,
// filters and deduplicates them, and routes them to region Discord
// channels exactly once.
//
// Verbs:
//   - run    — execute one discovery + routing cycle and exit
//   - status — print store statistics and exit
//   - serve  — start the recurring host (cron scheduler + HTTP surface)
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"jobwatch/monitor-service/internal/config"
	"jobwatch/monitor-service/internal/db"
	"jobwatch/monitor-service/internal/extract"
	"jobwatch/monitor-service/internal/monitor"
	"jobwatch/monitor-service/internal/notify"
	"jobwatch/monitor-service/internal/pipeline"
	"jobwatch/monitor-service/internal/route"
	"jobwatch/monitor-service/internal/scheduler"
	"jobwatch/monitor-service/internal/store"
	"jobwatch/monitor-service/internal/web"
)

const version = "1.0.0"

// session holds everything constructed once per process. No ambient
// singletons: every component receives its dependencies explicitly.
type session struct {
	cfg     *config.Config
	store   *store.Store
	monitor *monitor.Monitor
	close   func()
}

func newSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})))

	// ── PostgreSQL ──────────────────────────────────────────────────────────
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	st := store.New(pool)
	if err := st.InitSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	// ── Redis ───────────────────────────────────────────────────────────────
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	coordination := monitor.NewRedisCoordination(rdb)

	// ── Pipeline and routing ────────────────────────────────────────────────
	extractor := extract.NewLinkedInExtractor(cfg.JobTitle)
	notifier := notify.NewDiscord(cfg.DefaultWebhookURL, cfg.RegionWebhooks)
	p := pipeline.New(st, extractor)
	r := route.New(st, notifier)

	m := monitor.New(cfg, st, p, r, notifier, coordination, coordination)

	return &session{
		cfg:     cfg,
		store:   st,
		monitor: m,
		close: func() {
			pool.Close()
			if err := rdb.Close(); err != nil {
				slog.Warn("redis close failed", "err", err)
			}
		},
	}, nil
}

func main() {
	// Load .env early so config sees local overrides.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "jobwatch",
		Short:         "Job posting monitor with per-region Discord alerts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(runCmd(), statusCmd(), serveCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("[jobwatch] Fatal: %v", err)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one discovery + routing cycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			result, err := s.monitor.RunCycle(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Cycle complete: %d new jobs, %d sent (%s)\n",
				result.TotalNew, result.TotalSent,
				result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print store statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			stats, err := s.store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Job Monitor Status:\n")
			fmt.Printf("  Job title:       %s\n", s.cfg.JobTitle)
			fmt.Printf("  Regions:         %v\n", s.cfg.Regions)
			fmt.Printf("  Check interval:  %d minutes\n", s.cfg.CheckIntervalMinutes)
			fmt.Printf("  Total jobs:      %d\n", stats.TotalJobs)
			fmt.Printf("  Jobs today:      %d\n", stats.JobsToday)
			fmt.Printf("  Unnotified:      %d\n", stats.UnnotifiedJobs)
			fmt.Printf("  Searches today:  %d\n", stats.SuccessSearchesToday)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the recurring host (scheduler + HTTP endpoints)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			s, err := newSession(ctx)
			if err != nil {
				return err
			}
			defer s.close()

			s.monitor.NotifyStartup(ctx)

			sched := scheduler.New(s.monitor, s.cfg.CheckIntervalMinutes)
			if err := sched.Start(ctx); err != nil {
				return err
			}
			defer sched.Stop()

			srv := &http.Server{
				Addr:    ":" + s.cfg.Port,
				Handler: web.NewServer(s.monitor, s.store, version).Handler(),
			}
			go func() {
				slog.Info("http server listening", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					slog.Error("http server failed", "err", err)
					cancel()
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-stop:
				slog.Info("shutting down", "signal", sig.String())
			case <-ctx.Done():
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
