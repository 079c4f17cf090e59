package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nhle/mailacct/internal/app"
	"github.com/nhle/mailacct/internal/credential"
	"github.com/nhle/mailacct/internal/model"
	"github.com/nhle/mailacct/internal/prompt"
	"github.com/nhle/mailacct/internal/store"
)

// Set via -ldflags at build time.
var version = "dev"

type rootOptions struct {
	configPath string
	debug      bool
	batch      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	log := logrus.New()

	root := &cobra.Command{
		Use:           "mailacct",
		Short:         "Parse mail service URIs and manage account credentials",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&o.configPath, "config", model.DefaultConfigPath(), "Path to the configuration file")
	root.PersistentFlags().BoolVar(&o.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&o.batch, "batch", false, "Never prompt for missing credentials")

	// open loads config and opens the registry and keyring. Commands that
	// only parse text do not call it.
	open := func() (*app.App, func(), error) {
		cfg, err := model.LoadConfig(o.configPath)
		if err != nil {
			return nil, nil, err
		}
		configureLogger(log, cfg.Log.Level, o.debug)

		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("creating data directory: %w", err)
		}
		s, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}

		terminal := prompt.NewTerminal()
		terminal.Disabled = o.batch

		opts := app.Options{
			Config:   cfg,
			Store:    s,
			Prompter: terminal,
			Log:      log,
		}
		if ring, err := credential.Open(); err != nil {
			log.WithError(err).Warn("keyring unavailable, stored passwords disabled")
		} else {
			opts.Secrets = ring
		}

		closeFn := func() {
			if err := s.Close(); err != nil {
				log.WithError(err).Warn("closing account store")
			}
		}
		return app.New(opts), closeFn, nil
	}

	root.AddCommand(
		newParseCmd(),
		newAddCmd(open),
		newListCmd(open),
		newRemoveCmd(open),
		newTokenCmd(open),
		newCheckCmd(open),
	)
	return root
}

func configureLogger(log *logrus.Logger, level string, debug bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	if debug {
		lvl = logrus.DebugLevel
	}
	log.SetLevel(lvl)
}
