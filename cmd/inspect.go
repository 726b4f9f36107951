package cmd

import (
	"db-sync/internal/dialect"
	"db-sync/internal/inspect"
	"db-sync/internal/schema"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	inspectTables  []string
	inspectDialect string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the CREATE statements of a database",
	Example: `  db-sync inspect --database prod --tables orders,users
  db-sync inspect --database prod --dialect postgres`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := newConsole(cmd.ErrOrStderr(), verbose, quiet)

		config, err := ResolveDBConfig("database", viper.GetString("inspect.database"), viper.GetString("inspect.driver"))
		if err != nil {
			return err
		}
		client, err := inspect.Open(ctx, config.inspectConfig(viper.GetBool("sync.skip_auto_increment")))
		if err != nil {
			return err
		}
		defer client.Close()

		d := client.Inspector.Dialect()
		if inspectDialect != "" {
			if d, err = dialect.GetDialect(inspectDialect, ""); err != nil {
				return err
			}
		}

		tables, err := inspect.LoadAll(ctx, client.Inspector, inspectTables)
		if err != nil {
			return err
		}
		out.Info("%d table(s) found on %s database", len(tables), config.Name)

		var stmts []string
		for _, t := range tables {
			for _, w := range schema.Unavailable(d, t) {
				out.Warning("cannot be expressed in " + d.Name() + ": " + w)
			}
			stmts = append(stmts, t.Create(d)...)
		}
		return printStatements(cmd.OutOrStdout(), stmts)
	},
}

func init() {
	RootCmd.AddCommand(inspectCmd)

	f := inspectCmd.Flags()
	f.String("database", "", "Database to inspect: a profile name or a DSN")
	f.String("driver", "", "Driver of the DSN (mysql, postgres, pgx)")
	f.StringSliceVarP(&inspectTables, "tables", "t", []string{}, "Specific tables to print (comma-separated)")
	f.StringVar(&inspectDialect, "dialect", "", "Render the statements for another dialect (mysql, postgres)")
	f.StringVar(&output, "output", "", "Write the statements to this file instead of stdout")

	viper.BindPFlag("inspect.database", f.Lookup("database"))
	viper.BindPFlag("inspect.driver", f.Lookup("driver"))
}
