package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/traceworks/order-import/config"
	"github.com/traceworks/order-import/internal/database"
	"github.com/traceworks/order-import/internal/importer"
	"github.com/traceworks/order-import/internal/parser"
	"github.com/traceworks/order-import/internal/report"
	"github.com/traceworks/order-import/internal/types"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zerolog.Logger

	flagFile    string
	flagAnalyze bool
	flagImport  bool
	flagDryRun  bool
)

// rootCmd carries the whole CLI surface: one workbook, one action flag.
var rootCmd = &cobra.Command{
	Use:   "order-import --file <workbook.xlsx> (--analyze | --import | --dry-run)",
	Short: "Import sales-list order workbooks into the trace database",
	Long: `A CLI tool that extracts order records from hand-maintained sales-list
(销货清单) workbooks and loads them into the trace database. Detail sheets
are located by name, order blocks by their marker row, and customer, date
and line-item fields by positional and textual cues.

--analyze parses and prints a report without touching the database.
--dry-run parses and reports, explicitly confirming nothing was written;
it wins when combined with --import. --import parses and writes.`,
	Example: `  order-import --file ./orders-december.xlsx --analyze
  order-import --file ./orders-december.xlsx --dry-run
  order-import --file ./orders-december.xlsx --import`,
	RunE: run,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
	rootCmd.Flags().StringVarP(&flagFile, "file", "f", "", "workbook path (required)")
	rootCmd.Flags().BoolVarP(&flagAnalyze, "analyze", "a", false, "parse the workbook and print a report, no writes")
	rootCmd.Flags().BoolVarP(&flagImport, "import", "i", false, "parse the workbook and write orders to the database")
	rootCmd.Flags().BoolVarP(&flagDryRun, "dry-run", "d", false, "parse and report, confirming no writes")
	rootCmd.MarkFlagRequired("file")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		// Config is optional for analyze runs, don't fail here
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if !flagAnalyze && !flagImport && !flagDryRun {
		return cmd.Help()
	}

	logger = initLogger()
	runID := uuid.New().String()
	logger.Info().Str("run_id", runID).Str("file", flagFile).Msg("Starting run")

	sheets, err := parser.ParseWorkbook(flagFile, *logger)
	if err != nil {
		return err
	}

	total := report.Render(os.Stdout, sheets)

	switch {
	case flagDryRun:
		logger.Info().Int("orders", total).Msg("Dry run complete, nothing written")
		return nil
	case flagImport:
		return runImport(cmd.Context(), sheets, total)
	default:
		// --analyze: the report is the whole job.
		return nil
	}
}

func runImport(ctx context.Context, sheets []types.SheetOrders, total int) error {
	if total == 0 {
		logger.Warn().Msg("No valid orders found, nothing to import")
		return nil
	}

	pool, err := initDatabase(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info().Msg("Database connected")

	im, err := importer.New(ctx, pool, *logger)
	if err != nil {
		return err
	}

	result := im.Run(ctx, sheets)
	logger.Info().
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("Import finished")
	return nil
}

func initLogger() *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if cfg != nil && cfg.Logging.Level != "" {
		if parsedLevel, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			level = parsedLevel
		}
	}

	// Always use console format for CLI unless json was asked for
	var output io.Writer
	if cfg != nil && cfg.Logging.Format == "json" {
		output = os.Stdout
	} else {
		noColor := false
		if cfg != nil {
			noColor = cfg.Logging.NoColor
		}
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: noColor}
	}

	log := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &log
}

func initDatabase(ctx context.Context) (*pgxpool.Pool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required for --import but not loaded")
	}
	dbURL := cfg.DatabaseURL()
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}

	pool, err := database.Connect(
		ctx,
		dbURL,
		cfg.Database.MaxConnections,
		cfg.Database.MinConnections,
		cfg.Database.MaxConnLifetime,
		cfg.Database.MaxConnIdleTime,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
