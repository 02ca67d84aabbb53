// Package cmd implements the finagle command line application.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/etnz/finagle"
	"github.com/etnz/finagle/config"
	"github.com/etnz/finagle/logger"
	"github.com/etnz/finagle/store"
)

// Commands lists every subcommand of the application.
var Commands = []subcommands.Command{
	&userCmd{},
	&buyCmd{},
	&sellCmd{},
	&transactionsCmd{},
	&rmCmd{},
	&importCmd{},
	&templateCmd{},
	&cgtCmd{},
	&exportCmd{},
	&serveCmd{},
	&topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the YAML configuration file")
var dbFile = flag.String("db", "", "Path to the SQLite database, overrides the configuration")
var userName = flag.String("u", "", "User owning the transactions, overrides the configuration")
var logLevel = flag.String("v", "", "Log level (debug, info, warn, error), overrides the configuration")

// stdout receives the command outputs.
var stdout io.Writer = os.Stdout

// loadConfig loads the configuration and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *dbFile != "" {
		cfg.DatabasePath = *dbFile
	}
	if *userName != "" {
		cfg.User = *userName
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Init(os.Stderr, cfg.LogLevel)
	return cfg, nil
}

// openStore loads the configuration and opens its database.
func openStore(ctx context.Context) (*store.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("could not load configuration: %w", err)
	}
	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	return st, cfg, nil
}

// currentUser returns the configured user, creating it on first use.
func currentUser(ctx context.Context, st *store.Store, cfg *config.Config) (finagle.User, error) {
	if cfg.User == "" {
		return finagle.User{}, errors.New("no user selected: use -u or set FINAGLE_USER")
	}
	name, err := finagle.ValidateUsername(cfg.User)
	if err != nil {
		return finagle.User{}, err
	}
	return st.CreateUser(ctx, name)
}

// session opens the store and resolves the current user. Callers must close
// the store.
func session(ctx context.Context) (*store.Store, *config.Config, finagle.User, error) {
	st, cfg, err := openStore(ctx)
	if err != nil {
		return nil, nil, finagle.User{}, err
	}
	u, err := currentUser(ctx, st, cfg)
	if err != nil {
		st.Close()
		return nil, nil, finagle.User{}, err
	}
	return st, cfg, u, nil
}

// printMarkdown renders markdown for the terminal. Output that is not the
// terminal gets the raw markdown.
func printMarkdown(md string) {
	if stdout != io.Writer(os.Stdout) {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}
