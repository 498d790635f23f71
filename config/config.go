// Package config loads the Engine's tunable runtime options (spec §6
// Engine configuration) via viper, following the root-command wiring
// cklxx-elephant.ai's cobra_cli.go uses: SetConfigName/SetConfigType/
// AddConfigPath followed by ReadInConfig, with flags bound on top so a
// CLI invocation overrides the file and the file overrides built-in
// defaults.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Defaults mirror sensible single-process values; a config file or flags
// override any of them.
const (
	DefaultTickInterval    = 100 * time.Millisecond
	DefaultConcurrency     = 0 // 0 = unbounded, one goroutine per agent
	DefaultAuctionWindow   = 2 * time.Second
	DefaultMaxSchedulerIts = 10000
	DefaultExecuteMaxPolls = 1000
	DefaultBusAdapter      = "noop"
)

// EngineOptions is the subset of Engine/Planner tuning a deployment is
// expected to adjust without a code change.
type EngineOptions struct {
	// TickInterval is the cadence Engine.Start's background loop polls at.
	TickInterval time.Duration `mapstructure:"tick_interval"`

	// Concurrency bounds how many agents Poll ticks in parallel. Zero
	// means unbounded.
	Concurrency int `mapstructure:"concurrency"`

	// AuctionWindow is an auction close deadline setting. The agent
	// package does not read it; it closes auctions on its own fixed
	// two-second window.
	AuctionWindow time.Duration `mapstructure:"auction_window"`

	// MaxSchedulerIterations is an A* expansion bound setting. The
	// planner does not read it: each Advance call is bounded by
	// schedule.MaxIterations, and running out of iterations yields
	// StatusRunning, not StatusFailed.
	MaxSchedulerIterations int `mapstructure:"max_scheduler_iterations"`

	// ExecuteMaxPolls bounds Engine.Execute's run-until-idle loop.
	ExecuteMaxPolls int `mapstructure:"execute_max_polls"`

	// BusAdapter names a bus adapter (default "noop"). Nothing in this
	// module maps it to an adapter; the adapters that exist are bus.Noop,
	// bus.Inmem, redisbus.Adapter and mongobus.Adapter.
	BusAdapter string `mapstructure:"bus_adapter"`
}

// defaults populates v with the built-in values so an absent config file
// and unset flags still resolve to something usable.
func defaults(v *viper.Viper) {
	v.SetDefault("tick_interval", DefaultTickInterval)
	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("auction_window", DefaultAuctionWindow)
	v.SetDefault("max_scheduler_iterations", DefaultMaxSchedulerIts)
	v.SetDefault("execute_max_polls", DefaultExecuteMaxPolls)
	v.SetDefault("bus_adapter", DefaultBusAdapter)
}

// Load builds an EngineOptions by layering, lowest precedence first:
// built-in defaults, a config file named bdi-config.{yaml,json,...}
// found on the search path, BDI_-prefixed environment variables, and
// finally any flags already parsed onto cmd (bound via BindFlags).
//
// A missing config file is not an error — viper.ConfigFileNotFoundError
// is swallowed, same as cobra_cli.go's own best-effort ReadInConfig.
func Load(cmd *cobra.Command, searchPaths ...string) (EngineOptions, error) {
	v := viper.New()
	defaults(v)

	v.SetConfigName("bdi-config")
	v.SetConfigType("yaml")
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("bdi")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return EngineOptions{}, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	if cmd != nil {
		if err := BindFlags(v, cmd); err != nil {
			return EngineOptions{}, fmt.Errorf("config: binding flags: %w", err)
		}
	}

	var opts EngineOptions
	if err := v.Unmarshal(&opts); err != nil {
		return EngineOptions{}, fmt.Errorf("config: unmarshalling: %w", err)
	}
	return opts, nil
}

// BindFlags wires cmd's persistent flags onto v so a flag the caller
// actually set takes precedence over the file and environment layers,
// matching viper's BindPFlag precedence rules.
func BindFlags(v *viper.Viper, cmd *cobra.Command) error {
	flags := map[string]string{
		"tick-interval":            "tick_interval",
		"concurrency":              "concurrency",
		"auction-window":           "auction_window",
		"max-scheduler-iterations": "max_scheduler_iterations",
		"execute-max-polls":        "execute_max_polls",
		"bus-adapter":              "bus_adapter",
	}
	for flagName, key := range flags {
		f := cmd.PersistentFlags().Lookup(flagName)
		if f == nil {
			f = cmd.Flags().Lookup(flagName)
		}
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding %s: %w", flagName, err)
		}
	}
	return nil
}
