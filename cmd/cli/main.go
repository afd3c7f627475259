package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nutri-tools/nutri/pkg/config"
	"github.com/nutri-tools/nutri/pkg/models/domain"
	"github.com/nutri-tools/nutri/pkg/services/analysis"
	"github.com/nutri-tools/nutri/pkg/services/genai"
	"github.com/nutri-tools/nutri/pkg/services/profile"
	"github.com/nutri-tools/nutri/pkg/services/session"
	"github.com/nutri-tools/nutri/pkg/services/tracker"
	"github.com/nutri-tools/nutri/pkg/store/history"
	"github.com/nutri-tools/nutri/pkg/store/sqlite"
)

var (
	cfgPath string
	locale  string
	height  float64
	weight  float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nutri",
		Short: "Nutrition analysis from the command line",
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "nutri.yaml", "Path to the nutri config file")
	rootCmd.PersistentFlags().StringVar(&locale, "locale", "en", "Output language (en or sl)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [description]",
		Short: "Analyze a meal description and record it",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print the nutrition report over the full history",
		RunE:  runReport,
	}

	bmiCmd := &cobra.Command{
		Use:   "bmi",
		Short: "Compute BMI from height and weight",
		RunE:  runBMI,
	}
	bmiCmd.Flags().Float64Var(&height, "height", 0, "Height in cm")
	bmiCmd.Flags().Float64Var(&weight, "weight", 0, "Weight in kg")

	rootCmd.AddCommand(analyzeCmd, reportCmd, bmiCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildEngine(cmd *cobra.Command) (*analysis.Pipeline, *tracker.Controller, *profile.Service, func(), error) {
	// .env is optional for the CLI
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	generator, err := genai.NewGeminiClient(os.Getenv(cfg.Generator.APIKeyEnv), cfg.Generator.Model)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("create generator client: %w", err)
	}

	archive, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("open archive: %w", err)
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	sessions := session.NewManager()
	profiles := profile.NewService()
	trackerCtrl := tracker.NewController(history.NewStore(), archive, sessions)
	if err := trackerCtrl.Init(ctx, profiles); err != nil {
		archive.Close()
		return nil, nil, nil, nil, fmt.Errorf("initialize tracker: %w", err)
	}

	pipeline := analysis.NewPipeline(generator, trackerCtrl, sessions)
	cleanup := func() { archive.Close() }
	return pipeline, trackerCtrl, profiles, cleanup, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	pipeline, _, profiles, cleanup, err := buildEngine(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	rec, err := pipeline.Analyze(ctx, genai.InputBundle{
		Text:              args[0],
		Locale:            domain.ParseLocale(locale),
		DietaryPreference: profiles.Get().DietaryPreference,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func runReport(cmd *cobra.Command, _ []string) error {
	_, trackerCtrl, _, cleanup, err := buildEngine(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	doc := trackerCtrl.Report()
	printReport(doc)
	return nil
}

func printReport(doc domain.ReportDocument) {
	fmt.Printf("Nutrition Report %s\n\n", doc.GeneratedAt.Format("2006-01-02"))
	fmt.Printf("%-12s  %-40s  %10s\n", "Date", "Meal", "Calories")
	for _, row := range doc.Rows {
		fmt.Printf("%-12s  %-40s  %10.0f\n", row.Date.Format("2006-01-02"), row.Title, row.Calories)
	}
	fmt.Printf("\nTotals: %.0f kcal, %.0fg protein, %.0fg carbs, %.0fg fat\n",
		doc.Totals.Calories, doc.Totals.Protein, doc.Totals.Carbs, doc.Totals.Fat)
}

func runBMI(_ *cobra.Command, _ []string) error {
	result, ok := profile.BMI(height, weight)
	if !ok {
		return fmt.Errorf("height and weight must both be positive")
	}
	fmt.Printf("BMI: %.1f (%s)\n", result.Value, result.Band)
	return nil
}
