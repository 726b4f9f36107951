package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"db-sync/internal/engine"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func testConsole(verbose, quiet bool) (*console, *bytes.Buffer) {
	var buf bytes.Buffer
	c := newConsole(&buf, verbose, quiet)
	c.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC) }
	return c, &buf
}

func TestConsole(t *testing.T) {
	color.NoColor = true
	ctx := context.Background()

	c, buf := testConsole(true, false)
	c.Info("%d table(s) found on source database", 2)
	c.Observe(ctx, engine.Result{Statement: "DROP TABLE `a`", Status: engine.StatusOK})
	c.Observe(ctx, engine.Result{Statement: "DROP TABLE `b`", Status: engine.StatusError, Err: errors.New("unknown table")})
	c.Warning("column t.c: type enum")
	require.Equal(t, "2 table(s) found on source database\n"+
		"[09-03-2024 14:05:00]: COMMIT -  [OK] - DROP TABLE `a`\n"+
		"[09-03-2024 14:05:00]: COMMIT -  [ERROR] - DROP TABLE `b` (unknown table)\n"+
		"[09-03-2024 14:05:00]:  [WARNING] - column t.c: type enum\n", buf.String())

	c, buf = testConsole(false, false)
	c.Info("hidden")
	c.Observe(ctx, engine.Result{Statement: "DROP TABLE `a`", Status: engine.StatusOK})
	c.Observe(ctx, engine.Result{Statement: "DROP TABLE `a`", Status: engine.StatusDryRun})
	require.Equal(t, "[09-03-2024 14:05:00]: DRY RUN -  [OK] - DROP TABLE `a`\n", buf.String())

	c, buf = testConsole(true, true)
	c.Info("hidden")
	c.Warning("hidden")
	c.Observe(ctx, engine.Result{Statement: "DROP TABLE `a`", Status: engine.StatusDryRun})
	c.Error("shown")
	require.Equal(t, "[09-03-2024 14:05:00]:  [ERROR] - shown\n", buf.String())
}

func TestPrintStatements(t *testing.T) {
	stmts := []string{"DROP TABLE `a`", "ALTER TABLE `b` DROP `c`"}

	var buf bytes.Buffer
	require.NoError(t, printStatements(&buf, stmts))
	require.Equal(t, "DROP TABLE `a`;\nALTER TABLE `b` DROP `c`;\n", buf.String())

	fs := afero.NewMemMapFs()
	appFs, output = fs, "migrate.sql"
	t.Cleanup(func() { appFs, output = afero.NewOsFs(), "" })
	buf.Reset()
	require.NoError(t, printStatements(&buf, stmts))
	require.Empty(t, buf.String())
	data, err := afero.ReadFile(fs, "migrate.sql")
	require.NoError(t, err)
	require.Equal(t, "DROP TABLE `a`;\nALTER TABLE `b` DROP `c`;\n", string(data))
}
