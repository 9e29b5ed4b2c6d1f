// Command bondctl screens a bond listing from the command line using the same
// services as the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bondscreen/internal/cache"
	"bondscreen/internal/config"
	"bondscreen/internal/files"
	"bondscreen/internal/infrastructure"
	"bondscreen/internal/services"
	"bondscreen/internal/validation"
	"bondscreen/pkg/contracts/domain"
)

// Version is overridden at build time with -ldflags
var Version = config.AppVersion

// globalOptions are the persistent flags shared by every subcommand
type globalOptions struct {
	configPath string
	file       string
	asOf       string
	logLevel   string
	json       bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "bondctl",
		Short: "Screen corporate bond listings",
		Long: `bondctl loads a bond listing (.xlsx or .csv), enriches it and applies
screening criteria. Without --file the built-in sample listing is used.

Examples:
  bondctl options
  bondctl filter --file listing.xlsx --bond-type SLIPS --rating "CARE A-" --max-years 3
  bondctl summary --defaults --group-by risk_level
  bondctl export --defaults --out screened.csv`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(infrastructure.EnsureTraceID(cmd.Context()))
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	flags.StringVarP(&opts.file, "file", "f", "", "bond listing to load (.xlsx or .csv), or a directory to use its newest listing; empty uses the sample")
	flags.StringVar(&opts.asOf, "as-of", "", "reference date for years to maturity (YYYY-MM-DD); default today")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")
	flags.BoolVar(&opts.json, "json", false, "output as JSON")

	rootCmd.AddCommand(loadCmd(opts))
	rootCmd.AddCommand(optionsCmd(opts))
	rootCmd.AddCommand(filterCmd(opts))
	rootCmd.AddCommand(summaryCmd(opts))
	rootCmd.AddCommand(exportCmd(opts))

	return rootCmd
}

// session is a loaded dataset together with the service that owns it
type session struct {
	svc     *services.BondService
	store   *cache.DatasetCache
	dataset *domain.Dataset
	logger  *slog.Logger
}

func (s *session) Close() {
	s.store.Stop()
}

// openSession builds a BondService from configuration and loads the
// requested listing.
func openSession(ctx context.Context, cmd *cobra.Command, opts *globalOptions) (*session, error) {
	cfg, err := config.LoadFrom(opts.configPath)
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Logging
	logCfg.Level = opts.logLevel
	logger := infrastructure.WithComponent(infrastructure.NewLogger(logCfg, cmd.ErrOrStderr()), "bondctl")

	var svcOpts []services.BondServiceOption
	if opts.asOf != "" {
		ref, err := time.Parse(time.DateOnly, opts.asOf)
		if err != nil {
			return nil, fmt.Errorf("invalid --as-of %q: expected YYYY-MM-DD", opts.asOf)
		}
		svcOpts = append(svcOpts, services.WithClock(func() time.Time { return ref }))
	}

	path := opts.file
	if path != "" {
		if path, err = resolveListing(path, cfg.Dataset.MaxUploadBytes, logger); err != nil {
			return nil, fmt.Errorf("failed to load dataset: %w", err)
		}
	}

	store := cache.New(cfg.Dataset.CacheTTL, cfg.Dataset.CacheMaxEntries)
	svc := services.NewBondService(cfg.Dataset, store, logger, svcOpts...)

	var ds *domain.Dataset
	if path == "" {
		ds, _, err = svc.LoadSample(ctx)
	} else {
		ds, _, err = svc.LoadFile(ctx, path)
	}
	if err != nil {
		store.Stop()
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	for _, w := range ds.Warnings {
		logger.WarnContext(ctx, "data quality warning", slog.String("warning", w.String()))
	}

	return &session{svc: svc, store: store, dataset: ds, logger: logger}, nil
}

// resolveListing picks the newest listing when path is a directory and checks
// the file before it is parsed
func resolveListing(path string, maxBytes int64, logger *slog.Logger) (string, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		latest, err := files.NewDiscovery("").LatestListing(path)
		if err != nil {
			return "", err
		}
		logger.Info("using newest listing",
			slog.String("file", latest.Path),
			slog.Time("modified", latest.ModTime))
		path = latest.Path
	}

	if err := validation.NewFileValidator(logger, maxBytes).ValidateListingFile(path); err != nil {
		return "", err
	}
	return path, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
