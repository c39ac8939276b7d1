package main

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"wcmirror/internal/downloader"
	"wcmirror/pkg/commons"
	"wcmirror/pkg/config"
	"wcmirror/pkg/logger"
	"wcmirror/pkg/scanner"
	"wcmirror/pkg/storage"
	"wcmirror/pkg/ui"
)

var (
	// Version information, set at build time
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Flags
	configFile    string
	category      string
	scanDepth     int
	outputDir     string
	logLevel      string
	quiet         bool
	assumeYes     bool
	downloadDepth int
)

// rootCmd scans a Commons category tree and downloads the images it finds
var rootCmd = &cobra.Command{
	Use:   "wcmirror [category]",
	Short: "Mirror the images of a Wikimedia Commons category tree",
	Long: `wcmirror scans a Wikimedia Commons category tree breadth-first, reports
how many images sit at each depth, and downloads them up to a depth you
choose at the prompt.

The scan walks subcategories up to the configured depth, collecting image
files (.jpg, .jpeg, .png) along the way. Requests are paced and retried
with exponential backoff, so interrupted or rate-limited runs degrade
gracefully. Files already present in the output directory are skipped,
making re-runs cheap.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMirror,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to configuration file")
	rootCmd.Flags().StringVarP(&category, "category", "c", "", "root category to scan (overrides config)")
	rootCmd.Flags().IntVarP(&scanDepth, "depth", "d", -1, "max depth to scan (overrides config)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (overrides config)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress per-file and status output")
	rootCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the prompt and use --download-depth")
	rootCmd.Flags().IntVar(&downloadDepth, "download-depth", 0, "download depth used with --yes")
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err)
		return err
	}
	return nil
}

func runMirror(cmd *cobra.Command, args []string) error {
	flags := make(map[string]interface{})
	if category != "" {
		flags["category"] = category
	}
	if scanDepth >= 0 {
		flags["depth"] = scanDepth
	}
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		flags["category"] = strings.TrimSpace(args[0])
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	ctx := context.Background()

	ui.PrintInfo("Category", cfg.Scan.Category)
	ui.PrintInfo("Scan depth", strconv.Itoa(cfg.Scan.MaxDepth))

	client := commons.NewClient(cfg, log)

	// Phase 1: scan
	sc := scanner.New(client, log)
	sc.Quiet = quiet
	result, err := sc.Scan(ctx, cfg.Scan.Category, cfg.Scan.MaxDepth)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	report, total := scanner.Summary(result)
	fmt.Print(report)

	if total == 0 {
		fmt.Println("No images found.")
		return nil
	}

	// Phase 2: pick the download depth
	depth, quit, err := chooseDownloadDepth(cmd)
	if err != nil {
		ui.PrintError("Invalid input. Aborted.")
		return err
	}
	if quit {
		fmt.Println("Aborted.")
		return nil
	}

	// Phase 3: download
	store, err := storage.NewManager(cfg.Output.Directory)
	if err != nil {
		return fmt.Errorf("failed to prepare output directory: %w", err)
	}

	dl := downloader.New(client, store, log)
	dl.Quiet = quiet
	downloaded, errorCount, err := dl.Run(ctx, result, depth)
	if err != nil {
		return fmt.Errorf("download aborted: %w", err)
	}

	fmt.Printf("\nDone! Downloaded: %d, Errors: %d\n", downloaded, errorCount)
	return nil
}

// chooseDownloadDepth returns the depth to download to, or quit=true when the
// operator answers 'q'. A non-integer answer is an error.
func chooseDownloadDepth(cmd *cobra.Command) (depth int, quit bool, err error) {
	if assumeYes {
		return downloadDepth, false, nil
	}

	fmt.Print("Enter max depth to download (or 'q' to quit): ")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return 0, true, nil
	}

	choice := strings.TrimSpace(line)
	if strings.EqualFold(choice, "q") {
		return 0, true, nil
	}

	depth, convErr := strconv.Atoi(choice)
	if convErr != nil {
		return 0, false, fmt.Errorf("invalid depth input %q", choice)
	}

	return depth, false, nil
}
