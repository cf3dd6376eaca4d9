package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/forest-guardian/landwatch/internal/delivery"
	"github.com/forest-guardian/landwatch/internal/log"
	"github.com/forest-guardian/landwatch/internal/metrics"
	"github.com/forest-guardian/landwatch/internal/notification"
	"github.com/forest-guardian/landwatch/internal/properties"
	"github.com/forest-guardian/landwatch/internal/ui"
)

var (
	configPath string
	debugLog   bool
	noProgress bool

	cfg      *properties.Config
	app      *ui.App
	notifier *notification.Discord
)

func printBanner() {
	figure1 := figure.NewFigure("Landwatch", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	fmt.Println()
}

var rootCmd = &cobra.Command{
	Use:   "landwatch",
	Short: "Flood extent, NDVI change and site suitability from dated LISS-III scenes",
	Long: `landwatch ingests same-day satellite archives into dated scene folders,
derives NDVI, NDWI and MNDWI products for each scene and compares the
earliest and latest scenes to map new flooding, vegetation change and
suitable sites.

Without a subcommand an interactive menu is shown.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = properties.Load(configPath)
		if err != nil {
			return err
		}
		if err := log.Init(debugLog || cfg.Debug); err != nil {
			return err
		}

		m := metrics.New()
		pipeline := delivery.NewPipeline(cfg, clockwork.NewRealClock(), m)
		pipeline.ShowProgress(!noProgress)
		notifier = notification.NewDiscord(cfg)
		app = ui.NewApp(cfg, pipeline, notifier, m)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		printBanner()
		ui.ShowMenu(cmd.Context(), app)
		return nil
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Extract today's archives, rename folders to dates and derive products",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Ingest(cmd.Context())
	},
}

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive composites and index rasters for every scene under the data dir",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Derive(cmd.Context())
	},
}

var analyzeRoot string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compare the earliest and latest scenes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Analyze(cmd.Context(), analyzeRoot)
	},
}

var showGallery bool

var scenesCmd = &cobra.Command{
	Use:   "scenes",
	Short: "List valid scenes, or the composite gallery with --gallery",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showGallery {
			return app.ListGallery()
		}
		return app.ListScenes()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "Hide progress bars")

	analyzeCmd.Flags().StringVar(&analyzeRoot, "root", "", "Scene root to analyze (defaults to data_dir)")
	scenesCmd.Flags().BoolVar(&showGallery, "gallery", false, "List false color composites by date")

	rootCmd.AddCommand(ingestCmd, deriveCmd, analyzeCmd, scenesCmd)
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
			fmt.Printf("\033[31mExiting...\033[0m\n")
			if notifier != nil {
				errMessage := fmt.Sprintf("Landwatch CLI panic:\n\n%v\n\nStack trace:\n%s", r, stack)
				if err := notifier.SendError(errMessage); err != nil {
					fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
				}
			}
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
