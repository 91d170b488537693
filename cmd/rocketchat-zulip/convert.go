// Copyright 2024-2026 Aiku AI

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mau.fi/util/exzerolog"

	"github.com/aiku/rocketchat-zulip/pkg/importer"
	"github.com/aiku/rocketchat-zulip/pkg/rocketchat"
	"github.com/aiku/rocketchat-zulip/pkg/zulip"
)

type convertOptions struct {
	output     string
	configPath string
	tarball    bool
	logLevel   string
}

func newConvertCmd() *cobra.Command {
	var opts convertOptions
	cmd := &cobra.Command{
		Use:   "convert <rocketchat_dump_dir>",
		Short: "Convert a Rocket.Chat mongodump directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Directory to write the Zulip import to (required, must be empty)")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: built-in example config)")
	cmd.Flags().BoolVar(&opts.tarball, "tarball", false, "Also package the output directory as <output>.tar.gz")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Override logging.min_level from the config")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newExampleConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example-config",
		Short: "Print the example configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), importer.ExampleConfig)
			return err
		},
	}
}

func runConvert(cmd *cobra.Command, source string, opts convertOptions) error {
	cfg, err := importer.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.Logging.MinLevel = opts.logLevel
		if err = cfg.PostProcess(); err != nil {
			return err
		}
	}
	if opts.tarball {
		cfg.Output.Tarball = true
	}
	log := setupLogging(cmd.ErrOrStderr(), &cfg.Logging)

	if info, err := os.Stat(source); err != nil {
		return fmt.Errorf("failed to read source directory: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("source %s is not a directory", source)
	}
	if err = prepareOutputDir(opts.output); err != nil {
		return err
	}

	ctx := log.WithContext(cmd.Context())
	start := time.Now()
	log.Info().Str("source", source).Str("output", opts.output).Msg("Loading Rocket.Chat dump")
	snap, err := rocketchat.Load(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to load dump: %w", err)
	}

	writer := zulip.NewDirWriter(opts.output, cfg.Output.Indent, log)
	stats, err := importer.NewImporter(cfg, writer, log).Run(ctx, snap)
	if err != nil {
		log.Error().Object("stats", stats).Msg("Conversion aborted")
		return err
	}

	if cfg.Output.Tarball {
		path, err := zulip.Package(ctx, opts.output)
		if err != nil {
			return fmt.Errorf("failed to package output: %w", err)
		}
		log.Info().Str("path", path).Msg("Wrote tarball")
	}
	log.Info().Dur("duration", time.Since(start)).Msg("Done")
	return nil
}

// prepareOutputDir creates the output directory or checks that the
// existing one is empty.
func prepareOutputDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return os.MkdirAll(dir, 0o755)
	} else if err != nil {
		return fmt.Errorf("failed to read output directory: %w", err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("output directory %s is not empty", dir)
	}
	return nil
}

func setupLogging(out io.Writer, cfg *importer.LoggingConfig) zerolog.Logger {
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime}
	}
	log := zerolog.New(out).Level(cfg.Level()).With().Timestamp().Logger()
	exzerolog.SetupDefaults(&log)
	return log
}
