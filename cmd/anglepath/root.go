package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/anglepath/cache"
	"github.com/katalvlaran/anglepath/config"
	"github.com/katalvlaran/anglepath/logging"
)

var rootCmd = &cobra.Command{
	Use:   "anglepath",
	Short: "anglepath finds cheap motion sequences between facing angles",
	Long: `anglepath explores all 65536 facing angles from a set of start angles and
lists the cheapest sequences of motions that reach each target angle.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
}

// setup loads the configuration named by --config and builds the logger.
func setup(cmd *cobra.Command) (*config.File, zerolog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	return cfg, log, nil
}

// openCache connects the configured Redis cache, or returns nil when none is
// configured.
func openCache(cmd *cobra.Command, cfg *config.File) (*cache.Redis, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}
	c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		cache.WithTTL(cfg.Redis.TTL),
		cache.WithPrefix(cfg.Redis.Prefix),
	)
	if err := c.Ping(cmd.Context()); err != nil {
		_ = c.Close()
		return nil, err
	}

	return c, nil
}
