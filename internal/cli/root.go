// Package cli implements the sqlmongo command line
package cli

import (
	"fmt"

	"github.com/ErikMLC/sqlmongo/engine/translator"
	"github.com/ErikMLC/sqlmongo/pkg/config"
	"github.com/ErikMLC/sqlmongo/pkg/log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCommand creates the root command for the sqlmongo CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sqlmongo",
		Short: "Translate SQL into MongoDB queries",
		Long: `sqlmongo converts SQL statements into MongoDB find queries,
aggregation pipelines, write operations and collection definitions.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "sqlmongo.yaml", "config file (defaults apply when missing)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewTranslateCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewPingCommand(opts))

	return cmd
}

// load reads the config and builds the logger every command uses
func (o *RootOptions) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadOrDefault(o.ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	logCfg := log.Config{
		Level:      cfg.Log.Level,
		Encoding:   cfg.Log.Encoding,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}
	if o.Verbose {
		logCfg.Level = "debug"
	}
	logger, err := log.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

// translatorOptions backs the translate command; one registry spans the
// whole script so a CREATE TABLE informs the statements after it.
func translatorOptions(cfg *config.Config, logger *zap.Logger) translator.Options {
	return translator.Options{
		StrictConditions: cfg.Translator.StrictConditions,
		CollectionNaming: cfg.Translator.CollectionNaming,
		NumericHints:     cfg.Translator.NumericHints,
		Schemas:          translator.NewSchemaRegistry(),
		Logger:           logger,
	}
}

// serveTranslatorOptions leaves Schemas unset; the api builds a fresh
// registry for every request.
func serveTranslatorOptions(cfg *config.Config, logger *zap.Logger) translator.Options {
	opts := translatorOptions(cfg, logger)
	opts.Schemas = nil
	return opts
}
