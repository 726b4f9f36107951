package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"db-sync/internal/dialect"
	"db-sync/internal/engine"
	"db-sync/internal/inspect"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// appFs is the filesystem --output and --log-file are written to.
var appFs = afero.NewOsFs()

var (
	syncTables []string
	renames    map[string]string
	printSQL   bool
	dryRun     bool
	output     string
	logFile    string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise the destination structure with the source",
	Long: `Compare the tables of the source and destination databases and bring the
destination structure in line with the source: missing tables are created,
differing tables altered and extra tables dropped. Data is never copied.`,
	Example: `  db-sync sync --source prod --destination staging --dry-run
  db-sync sync --source "root:root@tcp(127.0.0.1:3306)/shop" --destination local -p --output migrate.sql`,
	RunE: runSync,
}

func init() {
	RootCmd.AddCommand(syncCmd)

	f := syncCmd.Flags()
	f.String("source", "", "Source database: a profile name or a DSN")
	f.String("source-driver", "", "Driver of the source DSN (mysql, postgres, pgx)")
	f.String("destination", "", "Destination database: a profile name or a DSN")
	f.String("destination-driver", "", "Driver of the destination DSN (mysql, postgres, pgx)")
	f.StringSliceVarP(&syncTables, "tables", "t", []string{}, "Specific tables to synchronise (comma-separated)")
	f.StringToStringVar(&renames, "rename", map[string]string{}, "Rename destination tables (old=new)")
	f.Bool("order-by-fk", false, "Create referenced tables before the tables pointing to them")
	f.Bool("skip-auto-increment", false, "Ignore AUTO_INCREMENT counters")
	f.BoolVarP(&printSQL, "print", "p", false, "Print the statements instead of executing them")
	f.StringVar(&output, "output", "", "Write printed statements to this file instead of stdout")
	f.BoolVar(&dryRun, "dry-run", false, "List the statements without executing them")
	f.StringVar(&logFile, "log-file", "", "Append a structured log of executed statements to this file")

	viper.BindPFlag("sync.source", f.Lookup("source"))
	viper.BindPFlag("sync.source_driver", f.Lookup("source-driver"))
	viper.BindPFlag("sync.destination", f.Lookup("destination"))
	viper.BindPFlag("sync.destination_driver", f.Lookup("destination-driver"))
	viper.BindPFlag("sync.order_by_fk", f.Lookup("order-by-fk"))
	viper.BindPFlag("sync.skip_auto_increment", f.Lookup("skip-auto-increment"))
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	start := time.Now()
	out := newConsole(cmd.OutOrStdout(), verbose, quiet)
	logger := newLogger(cmd.ErrOrStderr())

	out.Info("Starting synchronisation...")
	skipSeed := viper.GetBool("sync.skip_auto_increment")
	src, err := openSide(ctx, logger, "source", skipSeed)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := openSide(ctx, logger, "destination", skipSeed)
	if err != nil {
		return err
	}
	defer dst.Close()

	// Flag > Config > All tables
	tables := syncTables
	if len(tables) == 0 {
		tables = viper.GetStringSlice("sync.tables")
	}
	opts := engine.Options{
		Renames:             viper.GetStringMapString("sync.renames"),
		OrderByDependencies: viper.GetBool("sync.order_by_fk"),
	}
	for old, name := range renames {
		opts.Renames[old] = name
	}

	cmp, err := engine.Compare(ctx, src.Inspector, dst.Inspector, tables, opts)
	if err != nil {
		return err
	}
	report(out, cmp)

	switch {
	case printSQL:
		if err := printStatements(cmd.OutOrStdout(), cmp.Plan.Statements); err != nil {
			return err
		}
	case dryRun:
		exec := &engine.Executor{Observer: out}
		exec.DryRun(ctx, cmp.Plan.Statements)
	default:
		if err := commit(ctx, out, dst, cmp.Plan.Statements); err != nil {
			return err
		}
	}

	out.Info("Synchronisation ended (elapsed %s)", time.Since(start).Round(time.Millisecond))
	return nil
}

func openSide(ctx context.Context, logger *slog.Logger, side string, skipSeed bool) (*inspect.Client, error) {
	config, err := ResolveDBConfig(side, viper.GetString("sync."+side), viper.GetString("sync."+side+"_driver"))
	if err != nil {
		return nil, err
	}
	client, err := inspect.Open(ctx, config.inspectConfig(skipSeed))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", side, err)
	}
	logger.Debug("connected", "side", side, "profile", config.Name, "driver", config.Driver)
	return client, nil
}

func report(out *console, cmp *engine.Comparison) {
	out.Info("%d table(s) found on source database", len(cmp.Source))
	out.Info("%d table(s) found on destination database", len(cmp.Destination))
	for _, r := range cmp.Plan.Tables {
		switch r.Action {
		case engine.ActionCreate:
			out.Info("Table '%s' has not been found on destination", r.Name)
		case engine.ActionUnchanged:
			out.Info("Table '%s' is up to date on destination", r.Name)
		case engine.ActionDrop:
			out.Info("Table '%s' has not been found on source", r.Name)
		case engine.ActionRename:
			out.Info("Table '%s' is renamed to '%s'", r.Previous, r.Name)
			fallthrough
		default:
			out.Info("%d change(s) have been found on '%s'", len(r.Statements), r.Name)
		}
	}
	for _, w := range cmp.Plan.Warnings {
		out.Warning("cannot be expressed on destination, statements are incomplete: " + w)
	}
}

// printStatements writes the statements terminated by ";" to --output, or w.
func printStatements(w io.Writer, stmts []string) error {
	if output != "" {
		f, err := appFs.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	for _, stmt := range stmts {
		if _, err := fmt.Fprintf(w, "%s;\n", stmt); err != nil {
			return fmt.Errorf("failed to write statements: %w", err)
		}
	}
	return nil
}

func commit(ctx context.Context, out *console, dst *inspect.Client, stmts []string) error {
	if len(stmts) == 0 {
		return nil
	}
	observers := engine.Observers{out}
	if logFile != "" {
		f, err := appFs.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		fileLogger := slog.New(slog.NewTextHandler(f, nil)).With("destination", dst.Driver)
		observers = append(observers, engine.NewLogObserver(fileLogger))
	}

	// 1. Setup Progress Bar
	var bar *uiprogress.Bar
	if !verbose && !quiet {
		uiprogress.Start()
		bar = uiprogress.AddBar(len(stmts)).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return "Synchronising: "
		})
	}

	// 2. Execute
	exec := &engine.Executor{
		DB:            dst.DB,
		Observer:      observers,
		Transactional: dialect.Transactional(dst.Inspector.Dialect()),
		OnProgress: func() {
			if bar != nil {
				bar.Incr()
			}
		},
	}
	_, err := exec.Commit(ctx, stmts)

	if bar != nil {
		uiprogress.Stop()
	}
	return err
}
