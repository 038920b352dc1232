package commands

import (
	"fmt"

	"kpideck/internal/config"
	"kpideck/internal/feed"
	"kpideck/internal/logging"
	"kpideck/internal/server"
	"kpideck/internal/snapshot"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose  bool
	openPage bool
	cfg      *config.AppConfig

	feedClient *feed.Client
)

var rootCmd = &cobra.Command{
	Use:   "kpideck",
	Short: "KPIDeck is a sales and collections KPI dashboard server",
	Long: `A local dashboard server that parses pasted CRM report text, aggregates
deal payment and collection data into weekly, monthly and yearly KPI views,
and renders copy-paste summaries for team messengers.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		// Load configuration
		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		feedClient = feed.NewClient(cfg.Feed)

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("KPIDeck starting")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		store := snapshot.NewStore(cfg.DataPath)
		if err := store.Load(); err != nil {
			return fmt.Errorf("failed to load snapshots: %w", err)
		}

		api := server.NewWebAPI(log.Logger, server.Config{
			Addr: cfg.Listen,
			Dependencies: server.Dependencies{
				Feed:      feedClient,
				Snapshots: store,
			},
		})

		if openPage {
			url := fmt.Sprintf("http://%s/api/v1/manual", cfg.Listen)
			if err := browser.OpenURL(url); err != nil {
				log.Warn().Err(err).Str("url", url).Msg("Failed to open browser")
			}
		}

		return api.Start()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.Flags().BoolVar(&openPage, "open", false, "open the dashboard in the default browser after start")
}
