package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/cache"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/config"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/ratetable"
)

type app struct {
	configPath string
	cfg        *config.Config
	rates      *ratetable.Provider
	out        io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{out: os.Stdout}

	root := &cobra.Command{
		Use:           "payroll",
		Short:         "German payroll calculation: income tax, social insurance, multi-employment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file (default $CONFIG_PATH or "+config.DefaultPath+")")

	root.AddCommand(a.serveCmd(), a.calcCmd(), a.batchCmd())
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	setupLogging(cfg.Log)

	rates, err := loadRates(cfg.Rates)
	if err != nil {
		return err
	}
	a.rates = rates
	return nil
}

func setupLogging(c config.LogConfig) {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var w io.Writer = os.Stderr
	if c.Pretty {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// loadRates starts from the embedded tables and registers the files in
// c.Dir on top of them.
func loadRates(c config.RatesConfig) (*ratetable.Provider, error) {
	provider, err := ratetable.Default()
	if err != nil {
		return nil, err
	}
	if c.Dir == "" {
		return provider, nil
	}

	tables, err := ratetable.LoadDir(c.Dir)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if err := provider.Register(t); err != nil {
			return nil, fmt.Errorf("register %d: %w", t.Year, err)
		}
		log.Info().Int("year", t.Year).Str("dir", c.Dir).Msg("rate table registered")
	}
	return provider, nil
}

// newCache prefers Redis when configured and reachable.
func newCache(ctx context.Context, c config.CacheConfig) cache.Cache {
	if c.RedisAddr == "" {
		return cache.NewMemory(c.MaxEntries)
	}

	rdb := cache.NewRedis(c.RedisAddr, c.TTL)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Str("addr", c.RedisAddr).Msg("redis unavailable, using in-memory cache")
		_ = rdb.Close()
		return cache.NewMemory(c.MaxEntries)
	}
	log.Info().Str("addr", c.RedisAddr).Dur("ttl", c.TTL).Msg("redis cache enabled")
	return rdb
}
