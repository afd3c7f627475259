package main

import (
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nutri-tools/nutri/pkg/config"
	"github.com/nutri-tools/nutri/pkg/models/domain"
	"github.com/nutri-tools/nutri/pkg/server"
	"github.com/nutri-tools/nutri/pkg/services/analysis"
	"github.com/nutri-tools/nutri/pkg/services/genai"
	"github.com/nutri-tools/nutri/pkg/services/profile"
	"github.com/nutri-tools/nutri/pkg/services/session"
	"github.com/nutri-tools/nutri/pkg/services/tracker"
	"github.com/nutri-tools/nutri/pkg/store/history"
	"github.com/nutri-tools/nutri/pkg/store/sqlite"
)

var cfgPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "web",
		Short: "Start the Nutri web server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "nutri.yaml",
		"Path to the nutri config file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	apiKey := os.Getenv(cfg.Generator.APIKeyEnv)
	generator, err := genai.NewGeminiClient(apiKey, cfg.Generator.Model)
	if err != nil {
		return fmt.Errorf("failed to create generator client: %w", err)
	}

	archive, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer archive.Close()

	sessions := session.NewManager()
	profiles := profile.NewService()
	trackerCtrl := tracker.NewController(history.NewStore(), archive, sessions)
	if err := trackerCtrl.Init(ctx, profiles); err != nil {
		return fmt.Errorf("failed to initialize tracker: %w", err)
	}

	pipeline := analysis.NewPipeline(generator, trackerCtrl, sessions)

	logger.Info().Str("config", cfgPath).Str("db", cfg.DBPath).Msg("configuration loaded")

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	api := server.NewWebAPI(logger, server.Config{
		Addr: addr,
		Dependencies: server.Dependencies{
			Analyzer:      pipeline,
			Tracker:       trackerCtrl,
			Profiles:      profiles,
			Sessions:      sessions,
			DefaultLocale: domain.ParseLocale(cfg.Locale),
		},
	})

	return api.Start()
}
