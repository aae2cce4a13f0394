// Package cli is the zeitig command line: headless tracking, the terminal
// UI and catalog, insights and snapshot maintenance commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"zeitig/internal/app"
	"zeitig/internal/config"
	"zeitig/internal/infrastructure/logging"
	"zeitig/internal/platform"
)

const logFileName = "zeitig.log"

type rootOptions struct {
	configFile string
	dataDir    string
	logLevel   string
}

// Execute runs the root command
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "zeitig",
		Short:         "Track the time you spend on actions and subjects",
		Long:          "zeitig records how long you work on a topic (an action paired with a subject) and summarizes the result per week.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default: zeitig.toml in the data directory)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "directory holding the database and snapshot")
	flags.StringVar(&opts.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newTrackCmd(opts),
		newTUICmd(opts),
		newActionCmd(opts),
		newSubjectCmd(opts),
		newInsightsCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
		newStatusCmd(opts),
	)

	return rootCmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	v := viper.New()
	if o.logLevel != "" {
		v.Set("log.level", o.logLevel)
	}

	var paths platform.PathResolver = platform.DefaultPaths{}
	if o.dataDir != "" {
		paths = platform.FixedPaths{Dir: o.dataDir}
	}

	cfg, err := config.Load(v, config.Options{ConfigFile: o.configFile, Paths: paths})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openApp loads the configuration and the stored state. The returned
// function shuts the app down and closes the log file.
func (o *rootOptions) openApp(ctx context.Context, stderr io.Writer, ownsTerminal bool) (*app.App, func() error, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger, logCloser, err := newLogger(cfg, stderr, ownsTerminal)
	if err != nil {
		return nil, nil, err
	}

	a, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		logCloser.Close()
		return nil, nil, err
	}

	closeFn := func() error {
		defer logCloser.Close()
		return a.Shutdown(context.WithoutCancel(ctx))
	}
	return a, closeFn, nil
}

// newLogger writes to log.file when set. A terminal UI owns stderr, so it
// falls back to a file in the data directory.
func newLogger(cfg *config.Config, stderr io.Writer, ownsTerminal bool) (logging.Logger, io.Closer, error) {
	path := cfg.Log.File
	if path == "" && ownsTerminal {
		path = filepath.Join(cfg.DataDir, logFileName)
	}
	if path == "" {
		return logging.NewLogger(stderr, cfg.LogLevel()), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logging.NewLogger(file, cfg.LogLevel()), file, nil
}
