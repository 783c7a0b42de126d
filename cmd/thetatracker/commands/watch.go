package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RudolfTheOne/ThetaTracker/internal/api"
	"github.com/RudolfTheOne/ThetaTracker/internal/api/handlers"
	"github.com/RudolfTheOne/ThetaTracker/internal/notify"
	"github.com/RudolfTheOne/ThetaTracker/internal/scheduler"
	"github.com/RudolfTheOne/ThetaTracker/internal/scheduler/jobs"
	"github.com/RudolfTheOne/ThetaTracker/internal/screener"
	"github.com/RudolfTheOne/ThetaTracker/internal/store"
)

// watchCmd runs the long-lived daemon: periodic refresh cycles plus
// the HTTP/websocket surface the display collaborator consumes.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the screener daemon",
	Long: `Runs screening cycles on the configured refresh interval and serves
the latest ranking over HTTP and websocket. Optional sinks (PostgreSQL
history, Discord alerts) are enabled by their environment variables.

Example:
  thetatracker watch`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	a, err := buildApp(cfg, log)
	if err != nil {
		return err
	}

	results := screener.NewResultStore()

	hub := api.NewHub(log)
	go hub.Run()

	sinks := []jobs.CycleSink{hub}

	if cfg.StoreEnabled() {
		repo, err := store.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer repo.Close()
		sinks = append(sinks, repo)
	}

	if cfg.DiscordEnabled() {
		discord, err := notify.NewDiscord(cfg.Discord.BotToken, cfg.Discord.ChannelID, log)
		if err != nil {
			return err
		}
		sinks = append(sinks, discord)
	}

	sched := scheduler.New(log)
	refreshJob := jobs.NewRefreshJob(a.pipeline, a.userCfg, results, sinks, cfg.Screener.RefreshInterval, log)
	if err := sched.AddJob(refreshJob); err != nil {
		return err
	}

	router := api.NewRouter(
		handlers.NewRankingHandler(results, log),
		handlers.NewMarketHandler(a.provider, log),
		handlers.NewRefreshHandler(sched, log),
		hub,
		log,
	)
	server := api.New(cfg, log, router)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	sched.Start()

	// First cycle right away; the cron schedule covers the rest.
	if err := sched.RunJob(jobs.RefreshJobName); err != nil {
		log.WithError(err).Error("Initial refresh failed to queue")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		sched.Stop()
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutting down")
	}

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
