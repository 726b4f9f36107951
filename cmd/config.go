package cmd

import (
	"fmt"
	"strings"

	"db-sync/internal/inspect"

	"github.com/spf13/viper"
)

type DBConfig struct {
	Name   string `mapstructure:"name"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Schema string `mapstructure:"schema"`
}

// GetDBConfigs returns the database profiles of the config file.
func GetDBConfigs() ([]DBConfig, error) {
	var configs []DBConfig
	if err := viper.UnmarshalKey("databases", &configs); err != nil {
		return nil, fmt.Errorf("failed to parse databases config: %w", err)
	}
	return configs, nil
}

// ResolveDBConfig returns the connection of one side of a synchronisation.
// value is either the name of a configured profile or a DSN. driver
// overrides the profile driver; for a bare DSN it is detected when empty.
func ResolveDBConfig(side, value, driver string) (*DBConfig, error) {
	if value == "" {
		return nil, fmt.Errorf("%s database is required (via flag or sync.%s in config)", side, side)
	}
	configs, err := GetDBConfigs()
	if err != nil {
		return nil, err
	}
	for i := range configs {
		if configs[i].Name != value {
			continue
		}
		config := configs[i]
		if driver != "" {
			config.Driver = driver
		}
		if config.Driver == "" {
			config.Driver = detectDriver(config.DSN)
		}
		return &config, nil
	}

	if driver == "" {
		driver = detectDriver(value)
	}
	return &DBConfig{Name: side, Driver: driver, DSN: value}, nil
}

func detectDriver(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "sslmode") {
		return "postgres"
	}
	return "mysql"
}

func (c *DBConfig) inspectConfig(skipAutoIncrementSeed bool) inspect.Config {
	return inspect.Config{
		Driver:                c.Driver,
		DSN:                   c.DSN,
		Schema:                c.Schema,
		SkipAutoIncrementSeed: skipAutoIncrementSeed,
	}
}
