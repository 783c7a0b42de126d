package commands

import (
	"github.com/spf13/cobra"

	"github.com/RudolfTheOne/ThetaTracker/internal/external/ameritrade"
	"github.com/RudolfTheOne/ThetaTracker/internal/external/finnhub"
	"github.com/RudolfTheOne/ThetaTracker/internal/screener"
	"github.com/RudolfTheOne/ThetaTracker/internal/userconfig"
	"github.com/RudolfTheOne/ThetaTracker/pkg/config"
	"github.com/RudolfTheOne/ThetaTracker/pkg/httputil"
	"github.com/RudolfTheOne/ThetaTracker/pkg/logger"
)

var (
	// Global flags
	userConfigPath string
	verbose        bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "thetatracker",
	Short: "Options screener for cash-secured puts and covered calls",
	Long: `ThetaTracker screens option chains across a watch-list of tickers,
ranks candidates by premium yield, and flags upcoming earnings risk.

Examples:
  thetatracker scan
  thetatracker scan --sort premium_per_day
  thetatracker watch
  thetatracker market`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&userConfigPath, "user-config", "", "screening settings file (default from USER_CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// setup loads environment config and builds the logger.
func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if userConfigPath != "" {
		cfg.Screener.UserConfigPath = userConfigPath
	}
	return cfg, logger.New(cfg), nil
}

// app bundles the wired components the commands share.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	provider *ameritrade.Client
	pipeline *screener.Pipeline
	userCfg  *userconfig.Config
}

// buildApp wires the provider clients, pipeline, and user settings.
func buildApp(cfg *config.Config, log *logger.Logger) (*app, error) {
	transport := httputil.New(log, cfg.Provider.RequestsPerSecond, cfg.Provider.RateLimitCooldown)

	provider := ameritrade.NewClient(transport, log, cfg.Provider.APIKey, cfg.Provider.BaseURL)
	earnings := finnhub.NewClient(transport, log, cfg.Finnhub.APIKey, cfg.Finnhub.BaseURL)

	pipeline := screener.NewPipeline(provider, earnings, log, cfg.Screener.Workers, cfg.Screener.RetryBudget)

	userCfg, err := userconfig.Load(cfg.Screener.UserConfigPath)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		log:      log,
		provider: provider,
		pipeline: pipeline,
		userCfg:  userCfg,
	}, nil
}
