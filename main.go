package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"property-parser/browser"
	"property-parser/config"
	"property-parser/models"
	"property-parser/scraper/loopnet"
	"property-parser/services"
	"property-parser/storage"
	"property-parser/utils"
)

var (
	configPath string
	outputPath string
	driver     string
	showUI     bool
	maxPages   int
	maxRetries int
	timeout    time.Duration
	saveHTML   string
	workers    int
	noColor    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "property-parser [search-url]",
		Short: "Crawl LoopNet.ca search results into a CSV file",
		Long: `property-parser walks every page of an already-filtered LoopNet.ca
search, extracts each listing placard and appends it to a CSV file page by
page. Without a URL argument it uses start_url from the config, or asks for
one on stdin.`,
		Example: `  property-parser "https://www.loopnet.ca/search/commercial-real-estate/toronto-on/for-sale/"
  property-parser --driver rod --max-pages 5 -o toronto.csv "<search-url>"
  property-parser parse ./html
  property-parser report parsed_listings_20250101_120000.csv`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runCrawl,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured log output")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "Output CSV path (default parsed_listings_<timestamp>.csv)")

	rootCmd.Flags().StringVar(&driver, "driver", config.DriverChromedp, "Browser driver (chromedp, rod)")
	rootCmd.Flags().BoolVar(&showUI, "showui", false, "Show browser UI (disable headless mode)")
	rootCmd.Flags().IntVar(&maxPages, "max-pages", 0, "Stop after this many pages (0 for no limit)")
	rootCmd.Flags().IntVar(&maxRetries, "retries", 3, "Load attempts per page")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", 30*time.Second, "Page load timeout per attempt")
	rootCmd.Flags().StringVar(&saveHTML, "save-html", "", "Directory to keep the raw HTML of every page")

	parseCmd := &cobra.Command{
		Use:          "parse <file-or-dir>...",
		Short:        "Extract listings from saved results pages",
		Args:         cobra.MinimumNArgs(1),
		RunE:         runParse,
		SilenceUsage: true,
	}
	parseCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Parallel parsers (default max_workers from config)")

	reportCmd := &cobra.Command{
		Use:          "report <csv>",
		Short:        "Print insights for a parsed listings CSV",
		Args:         cobra.ExactArgs(1),
		RunE:         runReport,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(parseCmd, reportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if noColor {
		utils.SetColor(false)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.OutputPath = outputPath
	}
	if flags.Changed("driver") {
		cfg.Driver = driver
	}
	if flags.Changed("showui") {
		cfg.Headless = !showUI
	}
	if flags.Changed("max-pages") {
		cfg.MaxPages = maxPages
	}
	if flags.Changed("retries") {
		cfg.MaxRetries = maxRetries
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeout = timeout
	}
	if flags.Changed("save-html") {
		cfg.SaveHTMLDir = saveHTML
	}
	if flags.Changed("workers") {
		cfg.MaxWorkers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveOutput(cfg *config.Config) string {
	if cfg.OutputPath != "" {
		return cfg.OutputPath
	}
	return filepath.Join(cfg.OutputDir, storage.DefaultCSVName(time.Now()))
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var wizard loopnet.FilterWizard
	switch {
	case len(args) == 1:
		wizard = loopnet.StaticWizard{URL: args[0]}
	case cfg.StartURL != "":
		wizard = loopnet.StaticWizard{URL: cfg.StartURL}
	default:
		wizard = loopnet.PromptWizard{In: os.Stdin, Out: os.Stdout}
	}

	startURL, err := wizard.StartURL(ctx)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	output := resolveOutput(cfg)

	utils.Section("Crawl " + runID)
	utils.Info("Scraper starting | driver=%s retries=%d timeout=%v max-pages=%d",
		cfg.Driver, cfg.MaxRetries, cfg.RequestTimeout, cfg.MaxPages)
	utils.Info("Output: %s", output)

	nav, err := browser.New(cfg, utils.RandomUserAgent())
	if err != nil {
		return err
	}
	defer nav.Close()

	sink := openSink(ctx, cfg, output, runID)
	defer func() {
		if err := sink.Close(); err != nil {
			utils.Warn("Closing sinks: %v", err)
		}
	}()

	crawler := &loopnet.Crawler{
		Fetcher:       loopnet.NewFetcher(nav, cfg, utils.Log),
		Sink:          sink,
		Log:           utils.Log,
		RunID:         runID,
		OutputPath:    output,
		SessionParams: cfg.SessionParams,
		MaxPages:      cfg.MaxPages,
	}
	if cfg.PageInterval > 0 {
		crawler.Limiter = rate.NewLimiter(rate.Every(cfg.PageInterval), 1)
	}
	if cfg.SaveHTMLDir != "" {
		archive, err := storage.NewHTMLArchive(cfg.SaveHTMLDir)
		if err != nil {
			return err
		}
		crawler.Archive = archive
	}

	res, runErr := crawler.Run(ctx, startURL)
	printSummary(res)

	if res.Records > 0 {
		if listings, err := storage.ReadCSV(output); err != nil {
			utils.Warn("Could not build report: %v", err)
		} else {
			services.PrintReport(os.Stdout, services.GenerateReport(listings))
		}
	}

	if runErr != nil {
		if loopnet.IsFetchExhausted(runErr) {
			utils.Error("Crawl aborted on page %d; pages before it are saved in %s", res.Pages+1, output)
		}
		return runErr
	}
	return nil
}

// openSink always writes the CSV; Postgres and MongoDB are extra copies
// that are skipped when they cannot be reached.
func openSink(ctx context.Context, cfg *config.Config, output, runID string) *storage.MultiSink {
	sink := &storage.MultiSink{
		Primary: storage.NewCSVWriter(output),
		Log:     utils.Log,
	}

	if cfg.Postgres.Enabled {
		pg, err := storage.NewPostgresWriter(ctx, cfg.Postgres, runID)
		if err != nil {
			utils.Warn("PostgreSQL disabled: %v", err)
		} else if err := pg.EnsureSchema(ctx); err != nil {
			utils.Warn("PostgreSQL disabled: %v", err)
			_ = pg.Close()
		} else {
			utils.Success("Mirroring listings to PostgreSQL")
			sink.Mirrors = append(sink.Mirrors, pg)
		}
	}

	if cfg.Mongo.Enabled {
		mongo, err := storage.NewMongoWriter(ctx, cfg.Mongo, runID)
		if err != nil {
			utils.Warn("MongoDB disabled: %v", err)
		} else {
			utils.Success("Mirroring listings to MongoDB")
			sink.Mirrors = append(sink.Mirrors, mongo)
		}
	}

	return sink
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := storage.ListHTML(arg)
		if err != nil {
			return err
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return errors.New("no html files to parse")
	}

	utils.Info("Parsing %d files with %d workers", len(paths), cfg.MaxWorkers)
	results := loopnet.NewWorkerPool(cfg.MaxWorkers, utils.Log).ParseFiles(cmd.Context(), paths)

	output := resolveOutput(cfg)
	writer := storage.NewCSVWriter(output)
	var all []models.ListingRecord
	for _, r := range results {
		if len(r.Listings) == 0 {
			continue
		}
		if err := writer.Append(cmd.Context(), r.Listings, len(all) > 0); err != nil {
			return err
		}
		all = append(all, r.Listings...)
	}

	if len(all) == 0 {
		utils.Warn("No listings found.")
		return nil
	}

	utils.Success("Saved %d listings to %s", len(all), output)
	services.PrintReport(os.Stdout, services.GenerateReport(all))
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	if noColor {
		utils.SetColor(false)
	}

	listings, err := storage.ReadCSV(args[0])
	if err != nil {
		return err
	}
	services.PrintReport(os.Stdout, services.GenerateReport(listings))
	return nil
}

func printSummary(res *loopnet.Result) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════╗")
	fmt.Println("║                CRAWL COMPLETE                ║")
	fmt.Println("╠══════════════════════════════════════════════╣")
	fmt.Printf("║  Pages loaded   : %-27d║\n", res.Pages)
	fmt.Printf("║  Listings saved : %-27d║\n", res.Records)
	fmt.Printf("║  Warnings       : %-27d║\n", res.Warnings)
	fmt.Printf("║  Retries        : %-27d║\n", res.Retries)
	fmt.Printf("║  Stopped        : %-27s║\n", res.Reason)
	fmt.Println("╚══════════════════════════════════════════════╝")
	fmt.Println()
}
