package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/satindergrewal/pianochords/internal/config"
)

var (
	cfgPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:          "pianochords",
	Short:        "Piano chord explorer with live synthesis",
	Long:         `Browse triads, tetrads and extended chords in any key, see them on a two-octave keyboard and hear them rendered in real time.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", os.Getenv(config.PathEnv), "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// setup loads and validates configuration and builds the process logger.
func setup() (config.Config, *log.Logger, error) {
	cfg, err := config.LoadFile(cfgPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	level := cfg.Level()
	if verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "pianochords",
	})
	log.SetDefault(logger)
	return cfg, logger, nil
}
