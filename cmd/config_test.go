package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestResolveDBConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("databases", []map[string]any{
		{"name": "prod", "driver": "mysql", "dsn": "app:secret@tcp(db:3306)/shop"},
		{"name": "analytics", "dsn": "postgres://app@pg:5432/shop?sslmode=disable", "schema": "sales"},
	})

	config, err := ResolveDBConfig("source", "prod", "")
	require.NoError(t, err)
	require.Equal(t, &DBConfig{Name: "prod", Driver: "mysql", DSN: "app:secret@tcp(db:3306)/shop"}, config)

	config, err = ResolveDBConfig("destination", "analytics", "")
	require.NoError(t, err)
	require.Equal(t, "postgres", config.Driver)
	require.Equal(t, "sales", config.Schema)

	config, err = ResolveDBConfig("destination", "analytics", "pgx")
	require.NoError(t, err)
	require.Equal(t, "pgx", config.Driver)

	config, err = ResolveDBConfig("source", "root@tcp(127.0.0.1:3306)/shop", "")
	require.NoError(t, err)
	require.Equal(t, &DBConfig{Name: "source", Driver: "mysql", DSN: "root@tcp(127.0.0.1:3306)/shop"}, config)

	_, err = ResolveDBConfig("destination", "", "")
	require.EqualError(t, err, "destination database is required (via flag or sync.destination in config)")
}

func TestDetectDriver(t *testing.T) {
	require.Equal(t, "postgres", detectDriver("postgres://localhost/shop"))
	require.Equal(t, "postgres", detectDriver("host=localhost dbname=shop sslmode=disable"))
	require.Equal(t, "mysql", detectDriver("root:root@tcp(127.0.0.1:3306)/sakila?parseTime=true"))
}

func TestInspectConfig(t *testing.T) {
	c := &DBConfig{Name: "prod", Driver: "mysql", DSN: "dsn", Schema: "s"}
	cfg := c.inspectConfig(true)
	require.Equal(t, "mysql", cfg.Driver)
	require.Equal(t, "dsn", cfg.DSN)
	require.Equal(t, "s", cfg.Schema)
	require.True(t, cfg.SkipAutoIncrementSeed)
}
