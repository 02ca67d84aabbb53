package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/subcommands"

	"github.com/etnz/finagle/importer"
	"github.com/etnz/finagle/logger"
	"github.com/etnz/finagle/store"
)

type importCmd struct {
	watch  bool
	dryRun bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import transactions from broker files" }
func (*importCmd) Usage() string {
	return `finagle import [-n] <file>...
finagle import -watch <dir>

  Imports transactions from files. The format is detected from the file name
  and content: native CSV, JSONL, Sharesight "All Trades Report" (.xlsx) and
  Pearler (.csv) are supported.

  A file is imported entirely or not at all: any invalid row rejects the file.

  With -watch, files created or written in <dir> are imported as they appear,
  until interrupted.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.watch, "watch", false, "Watch a directory and import files as they appear")
	f.BoolVar(&c.dryRun, "n", false, "Parse and validate files without importing them")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 || (c.watch && f.NArg() != 1) {
		f.Usage()
		return subcommands.ExitUsageError
	}

	st, _, u, err := session(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	imp := &fileImporter{store: st, registry: importer.DefaultRegistry(), userID: u.ID, dryRun: c.dryRun}
	if c.watch {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		if err := imp.watch(ctx, f.Arg(0)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	status := subcommands.ExitSuccess
	for _, path := range f.Args() {
		if err := imp.importFile(ctx, path); err != nil {
			fmt.Fprintf(os.Stderr, "Error importing %s: %v\n", path, err)
			status = subcommands.ExitFailure
		}
	}
	return status
}

// fileImporter imports files into the transactions of one user.
type fileImporter struct {
	store    *store.Store
	registry *importer.Registry
	userID   int64
	dryRun   bool
}

// importFile parses and stores the transactions of one file, all or none.
func (imp *fileImporter) importFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	res, err := imp.registry.Parse(filepath.Base(path), content)
	if err != nil {
		return err
	}
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			fmt.Fprintf(os.Stderr, "  %v\n", e)
		}
		return fmt.Errorf("%d errors in %s file, nothing imported", len(res.Errors), res.Format)
	}
	if imp.dryRun {
		fmt.Fprintf(stdout, "%s: %d valid %s transactions\n", path, len(res.Transactions), res.Format)
		return nil
	}
	added, err := imp.store.AddTransactions(ctx, imp.userID, res.Transactions)
	if err != nil {
		return err
	}
	logger.L.Info("File imported", "path", path, "format", res.Format, "imported", len(added))
	fmt.Fprintf(stdout, "%s: imported %d %s transactions\n", path, len(added), res.Format)
	return nil
}

// debounceDelay lets writers finish a file before it is imported.
const debounceDelay = 500 * time.Millisecond

// watch imports files created or written in dir until ctx is done. Each file
// is imported once, a file that failed is retried when written again.
func (imp *fileImporter) watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	fmt.Fprintf(stdout, "Watching %s for files to import, interrupt to stop.\n", dir)

	pending := make(map[string]bool)
	done := make(map[string]bool)
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || done[event.Name] {
				continue
			}
			pending[event.Name] = true
			fire = time.After(debounceDelay)

		case <-fire:
			fire = nil
			imp.importPending(ctx, pending, done)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.L.Warn("File watcher error", "error", err)
		}
	}
}

// importPending imports then forgets every pending file. Files imported or in
// an unknown format are added to done, files with errors stay eligible.
func (imp *fileImporter) importPending(ctx context.Context, pending, done map[string]bool) {
	for path := range pending {
		delete(pending, path)
		err := imp.importFile(ctx, path)
		switch {
		case errors.Is(err, importer.ErrUnrecognised):
			logger.L.Debug("Ignoring file", "path", path)
			done[path] = true
		case err != nil:
			fmt.Fprintf(os.Stderr, "Error importing %s: %v\n", path, err)
		default:
			done[path] = true
		}
	}
}
