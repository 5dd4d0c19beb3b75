package main

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bibleapi/internal/util"
	"bibleapi/pkg/store"
	"bibleapi/services/verse/internal/config"
)

type rootOptions struct {
	configPath  string
	databaseURL string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "versectl",
		Short:         "Manage the verse corpus: migrate, import and query translations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default config.yaml or $VERSE_CONFIG)")
	root.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "database url, overrides config and DATABASE_URL")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newMigrateCmd(opts),
		newImportCmd(opts),
		newLookupCmd(opts),
		newRandomCmd(opts),
	)
	return root
}

// openStore resolves the database url from flags and config and opens it.
func (o *rootOptions) openStore(options ...store.GormStoreOption) (*store.GormStore, error) {
	cfg, err := config.Read(o.configPath)
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	// stdout carries command output
	util.InitLoggerTo(os.Stderr, level)

	url := cfg.DatabaseURL
	if strings.TrimSpace(o.databaseURL) != "" {
		url = o.databaseURL
	}
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("database url required (--database-url, DATABASE_URL or databaseURL in config)")
	}
	return store.NewGormStore(url, options...)
}

// defaultTranslation reads the configured default, ignoring config errors
// already surfaced by openStore.
func (o *rootOptions) defaultTranslation() string {
	cfg, err := config.Read(o.configPath)
	if err != nil {
		return ""
	}
	return cfg.DefaultTranslation
}
