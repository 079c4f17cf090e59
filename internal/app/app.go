// Package app wires configuration, the account registry, the keyring and
// the credential resolver together for the command line.
package app

import (
	"github.com/sirupsen/logrus"

	"github.com/nhle/mailacct/internal/account"
	"github.com/nhle/mailacct/internal/connect"
	"github.com/nhle/mailacct/internal/model"
	"github.com/nhle/mailacct/internal/store"
)

// Secrets is the keyring as the application uses it.
type Secrets interface {
	account.SecretLookup
	Set(key, value string) error
	Delete(key string) error
}

// App holds the long-lived services behind every command.
type App struct {
	Config   *model.AppConfig
	Store    store.Store
	Secrets  Secrets
	Resolver *account.Resolver
	Dialer   *connect.Dialer
	Log      logrus.FieldLogger
}

// Options configures New. Secrets and Prompter may be nil, in which case
// stored passwords and interactive prompts are unavailable.
type Options struct {
	Config   *model.AppConfig
	Store    store.Store
	Secrets  Secrets
	Prompter account.Prompter
	Runner   account.CommandRunner
	Log      logrus.FieldLogger
}

// New builds an App from opts.
func New(opts Options) *App {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	runner := opts.Runner
	if runner == nil {
		runner = account.ShellRunner{Log: log}
	}

	r := &account.Resolver{
		Defaults: opts.Config.Defaults(),
		Prompter: opts.Prompter,
		Runner:   runner,
		Log:      log,
	}
	if opts.Secrets != nil {
		r.Secrets = opts.Secrets
	}

	return &App{
		Config:   opts.Config,
		Store:    opts.Store,
		Secrets:  opts.Secrets,
		Resolver: r,
		Dialer:   &connect.Dialer{Resolver: r, Log: log},
		Log:      log,
	}
}
