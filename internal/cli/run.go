package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/battery-observer/internal/metrics"
	"github.com/ogulcanaydogan/battery-observer/internal/scheduler"
	"github.com/ogulcanaydogan/battery-observer/internal/server"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the battery observer daemon",
	RunE:  runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("listen", "l", "", "API listen address (default from config)")
	runCmd.Flags().Duration("interval", 0, "Polling interval (default from config)")
	runCmd.Flags().String("source", "", "Power source: auto, sysfs, pmset, mqtt, simulate")
	runCmd.Flags().Bool("no-server", false, "Disable the local control API")
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.Listen = listen
	}
	if interval, _ := cmd.Flags().GetDuration("interval"); interval > 0 {
		cfg.Schedule.Interval = interval
	}
	if source, _ := cmd.Flags().GetString("source"); source != "" {
		cfg.Reader.Source = source
	}
	if noServer, _ := cmd.Flags().GetBool("no-server"); noServer {
		cfg.Server.Enabled = false
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init(nil)

	a, err := initMonitor(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	sched, err := scheduler.New(cfg.Schedule.Interval, func(ctx context.Context) {
		a.monitor.Tick(ctx)
	}, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	var srv *http.Server
	if cfg.Server.Enabled {
		apiServer := server.NewServer(a.monitor, a.thresholds, a.store, logger)
		srv = &http.Server{
			Addr:         cfg.Server.Listen,
			Handler:      apiServer.Handler(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		}
		go func() {
			logger.Info("api server started", "listen", cfg.Server.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	sched.Start()
	if cfg.Schedule.RunOnStart {
		go sched.RunNow()
	}
	logger.Info("battery observer started",
		"interval", sched.Interval().String(),
		"mode", a.monitor.Status().Mode,
		"source", cfg.Reader.Source,
	)
	fmt.Fprintf(os.Stderr, "Battery Observer polling every %s\n", sched.Interval())

	var runErr error
	select {
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	sched.Stop()
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("battery observer stopped")
	return runErr
}
