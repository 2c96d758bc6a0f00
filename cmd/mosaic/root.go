package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/tilematch"
	"github.com/hupe1980/tilematch/resource"
)

// app carries the state shared by all subcommands once setup has run.
type app struct {
	configPath string
	envFiles   []string
	logLevel   string
	logFormat  string
	storeKind  string
	storeRoot  string
	workers    int

	cfg    *Config
	logger *tilematch.Logger
	ctrl   *resource.Controller
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:               "mosaic",
		Short:             "Render images as tile mosaics",
		SilenceUsage:      true, // don't print usage on operational errors
		PersistentPreRunE: a.setup,
		Long: `mosaic splits an image into square blocks and replaces every block with
the closest tile of a tile library, writing an image, an animated GIF or text.`,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ./mosaic.yaml if present)")
	pf.StringSliceVar(&a.envFiles, "env-file", []string{".env"}, "dotenv files loaded before reading MOSAIC_* variables")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&a.logFormat, "log-format", "", "text or json")
	pf.StringVar(&a.storeKind, "store", "", "library store: local, minio or s3")
	pf.StringVar(&a.storeRoot, "store-root", "", "root directory of the local store")
	pf.IntVar(&a.workers, "workers", 0, "worker goroutines shared by decoding and matching (0 = GOMAXPROCS)")

	root.AddCommand(newRenderCmd(a), newLibraryCmd(a), newVersionCmd())
	return root
}

// setup resolves the configuration (flags win over everything else) and
// builds the logger and resource controller.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := LoadConfig(a.configPath, a.envFiles...)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if flags.Changed("store") {
		cfg.Store.Kind = a.storeKind
	}
	if flags.Changed("store-root") {
		cfg.Store.Root = a.storeRoot
	}
	if flags.Changed("workers") {
		cfg.Workers = a.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := parseLevel(cfg.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		a.logger = tilematch.NewLogger(slog.NewJSONHandler(cmd.ErrOrStderr(), opts))
	} else {
		a.logger = tilematch.NewLogger(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
	}

	a.ctrl = resource.NewController(resource.Config{
		MaxWorkers:         int64(cfg.Workers),
		MemoryLimitBytes:   cfg.MemoryLimitBytes,
		IOLimitBytesPerSec: cfg.IOLimitBytesPerSec,
	})
	a.cfg = cfg
	return nil
}
