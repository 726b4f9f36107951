package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"db-sync/internal/engine"

	"github.com/fatih/color"
)

var (
	okLabel      = color.New(color.FgGreen).SprintFunc()
	errorLabel   = color.New(color.FgRed, color.Bold).SprintFunc()
	warningLabel = color.New(color.FgYellow).SprintFunc()
)

// console writes timestamped lines to the terminal.
type console struct {
	w       io.Writer
	verbose bool
	quiet   bool
	now     func() time.Time
}

func newConsole(w io.Writer, verbose, quiet bool) *console {
	return &console{w: w, verbose: verbose && !quiet, quiet: quiet, now: time.Now}
}

func (c *console) line(prefix, status, text string) {
	if status != "" {
		status = " " + status + " - "
	}
	fmt.Fprintf(c.w, "[%s]: %s%s%s\n", c.now().Format("02-01-2006 15:04:05"), prefix, status, text)
}

// Info is only shown in verbose mode.
func (c *console) Info(format string, args ...any) {
	if c.verbose {
		fmt.Fprintf(c.w, format+"\n", args...)
	}
}

func (c *console) Warning(text string) {
	if !c.quiet {
		c.line("", warningLabel("[WARNING]"), text)
	}
}

func (c *console) Error(text string) {
	c.line("", errorLabel("[ERROR]"), text)
}

// Observe prints statement results. Successful statements need verbose
// mode, failures are always printed.
func (c *console) Observe(_ context.Context, r engine.Result) {
	switch r.Status {
	case engine.StatusError:
		c.line("COMMIT - ", errorLabel("[ERROR]"), fmt.Sprintf("%s (%v)", r.Statement, r.Err))
	case engine.StatusDryRun:
		if !c.quiet {
			c.line("DRY RUN - ", okLabel("[OK]"), r.Statement)
		}
	case engine.StatusSkipped:
		if c.verbose {
			c.line("COMMIT - ", warningLabel("[SKIPPED]"), r.Statement)
		}
	default:
		if c.verbose {
			c.line("COMMIT - ", okLabel("[OK]"), r.Statement)
		}
	}
}
