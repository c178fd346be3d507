package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wippyai/mpi-runtime/config"
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"library":       "library.path",
	"caller-thread": "library.caller_thread",
	"log-level":     "logging.level",
	"log-format":    "logging.format",
	"simulate":      "run.simulate",
	"seed":          "run.seed",
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "mpi-gather [flags] [-- mpi-args...]",
		Short: "Gather one random value per MPI process onto rank 0",
		Long: `mpi-gather initializes MPI, has every process contribute a random
double to a gather on rank 0, synchronizes on a barrier and prints the
gathered values from rank 0 before finalizing.

Launch it under mpirun to talk to a real MPI library, or pass --simulate N
to run N ranks in-process. Arguments after -- are passed to MPI_Init.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return run(cmd.OutOrStdout(), cfg, args)
		},
	}

	flags := cmd.Flags()
	flags.StringP("config", "c", "", "config file (YAML)")
	flags.String("library", defaults.Library.Path, "MPI shared library to load")
	flags.Bool("caller-thread", defaults.Library.CallerThread, "make native calls on the calling thread instead of a dedicated one")
	flags.String("log-level", defaults.Logging.Level, "log level (debug, info, warn, error)")
	flags.String("log-format", defaults.Logging.Format, "log format (console, json)")
	flags.Int("simulate", defaults.Run.Simulate, "run this many in-process ranks instead of loading the library")
	flags.Int64("seed", defaults.Run.Seed, "seed for the gathered values (0 = time based)")

	_ = v.BindPFlag("config", flags.Lookup("config"))
	for flag, key := range flagKeys {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	return cmd
}

func loadConfig(v *viper.Viper) (*config.Config, error) {
	config.SetDefaults(v)

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
