package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	quiet   bool
)

var RootCmd = &cobra.Command{
	Use:   "db-sync",
	Short: "A database structure synchronisation tool",
	Long: `
  ____  ____    ______   ___   _  ____ 
 |  _ \| __ )  / ___\ \ / / \ | |/ ___|
 | | | |  _ \  \___ \\ V /|  \| | |    
 | |_| | |_) |  ___) || | | |\  | |___ 
 |____/|____/  |____/ |_| |_| \_|\____|

DB SYNC - Synchronise a database structure with another one
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./db-sync.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print every step and statement")
	RootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print errors")
}

// initConfig reads in the .env file, the config file and ENV variables.
func initConfig() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// 1. Executable Directory (Priority 1)
		if ex, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}
		// 2. Current Directory (Priority 2)
		viper.AddConfigPath(".")

		viper.SetConfigName("db-sync")
		viper.SetConfigType("yaml")
	}

	// DBSYNC_SYNC_SOURCE overrides sync.source.
	viper.SetEnvPrefix("dbsync")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose && !quiet {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger returns the structured logger of the statement executor. Its
// level follows --verbose and --quiet.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
