// SPDX-License-Identifier: Apache-2.0

// Command resume-extract pulls the name, email address and phone number out
// of resume documents, from the command line, over MCP or over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talentsift/resume-extract/internal/config"
	"github.com/talentsift/resume-extract/internal/convert"
	"github.com/talentsift/resume-extract/internal/fields"
	"github.com/talentsift/resume-extract/internal/lexicon"
	"github.com/talentsift/resume-extract/internal/pipeline"
)

var version = "dev"

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg       *config.Config
	logger    *slog.Logger
	lexicon   *lexicon.Lexicon
	extractor *pipeline.Extractor
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "resume-extract",
		Short:         "Extract contact fields from resumes",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	root.AddCommand(
		newExtractCmd(a),
		newBatchCmd(a),
		newServeCmd(a),
		newHTTPCmd(a),
	)
	return root
}

// setup loads the configuration and wires the extraction pipeline. Logs go
// to stderr so stdout stays free for results and the MCP stdio transport.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg
	a.logger = cfg.NewLogger(os.Stderr)

	lex, err := cfg.Lexicon()
	if err != nil {
		return err
	}
	a.lexicon = lex
	engine := fields.NewEngine(fields.Config{
		Lexicon: lex,
		Weights: cfg.Scoring.Name,
		Logger:  a.logger,
	})
	a.extractor = pipeline.New(pipeline.Config{
		Converter:       convert.New(convert.Config{MaxFileSize: cfg.MaxFileSize, Logger: a.logger}),
		Engine:          engine,
		MaxBatchSize:    cfg.MaxBatchSize,
		DocumentTimeout: cfg.Timeout(),
		Throttle:        cfg.ThrottleDelay(),
		Logger:          a.logger,
	})
	a.logger.Debug("cli.setup", "config", a.configPath, "lexicon", cfg.LexiconPath)
	return nil
}
