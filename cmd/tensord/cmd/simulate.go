package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/paw-chain/tensornet/x/network/simulation"
)

const (
	flagSubnets     = "subnets"
	flagNodes       = "nodes"
	flagEpochs      = "epochs"
	flagStake       = "stake"
	flagMemoryMB    = "memory-mb"
	flagAttestRatio = "attest-ratio"
	flagMissRate    = "miss-rate"
	flagSeed        = "seed"
	flagParam       = "param"
	flagMetricsAddr = "metrics-addr"

	configKeySimulation = "simulation"
)

// simulationKeys maps config keys under the simulation table to their flags.
var simulationKeys = map[string]string{
	"subnets":          flagSubnets,
	"nodes_per_subnet": flagNodes,
	"epochs":           flagEpochs,
	"stake":            flagStake,
	"memory_mb":        flagMemoryMB,
	"attest_ratio":     flagAttestRatio,
	"miss_rate":        flagMissRate,
	"seed":             flagSeed,
}

func simulateCommand() *cobra.Command {
	defaults := simulation.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play epochs of subnet consensus against an in-memory store",
		Long: `simulate registers subnets of funded nodes, then for each epoch runs the
begin blocker, has the elected validator score every node, lets nodes attest
and accountants report. After the last epoch one more boundary settles it and
the resulting stake, penalties and module metrics are printed.

Settings come from flags, TENSORD_SIMULATION_* environment variables or the
[simulation] table of the config file, in that order. Param overrides come
from --param key=value or the [params] table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := bindSimulationFlags(v, cmd.Flags()); err != nil {
				return err
			}
			output := v.GetString(flagOutput)
			if err := validateOutput(output); err != nil {
				return err
			}
			cfg, err := simulationConfig(v)
			if err != nil {
				return err
			}
			logger, err := newLogger(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if addr := v.GetString(flagMetricsAddr); addr != "" {
				server := startPrometheusServer(addr, logger)
				defer func() {
					if err := stopPrometheusServer(server); err != nil {
						logger.Error("prometheus server shutdown", "err", err)
					}
				}()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			logger.Info("simulation starting",
				"subnets", cfg.Subnets, "nodes_per_subnet", cfg.NodesPerSubnet, "epochs", cfg.Epochs, "seed", cfg.Seed)
			report, err := simulation.Run(ctx, logger, cfg)
			if err != nil {
				return err
			}

			if output == outputJSON {
				bz, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(bz))
				return nil
			}
			return report.WriteText(cmd.OutOrStdout())
		},
	}

	cmd.Flags().Int(flagSubnets, defaults.Subnets, "number of subnets")
	cmd.Flags().Int(flagNodes, defaults.NodesPerSubnet, "nodes per subnet")
	cmd.Flags().Uint64(flagEpochs, defaults.Epochs, "epochs to play")
	cmd.Flags().Uint64(flagStake, defaults.Stake, "stake of every node")
	cmd.Flags().Uint64(flagMemoryMB, defaults.MemoryMB, "memory requirement of every subnet")
	cmd.Flags().Float64(flagAttestRatio, defaults.AttestRatio, "share of nodes attesting each submission")
	cmd.Flags().Float64(flagMissRate, defaults.MissRate, "probability a validator skips its submission")
	cmd.Flags().Int64(flagSeed, defaults.Seed, "seed for block hashes and scores")
	cmd.Flags().StringToString(flagParam, nil, "param override as key=value, repeatable")
	cmd.Flags().String(flagOutput, outputText, "output format (text|json)")
	cmd.Flags().String(flagMetricsAddr, "", "serve Prometheus metrics on this address while simulating")
	return cmd
}

// bindSimulationFlags binds each simulation flag under the simulation table
// so flags, env and the config file resolve to the same key.
func bindSimulationFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range simulationKeys {
		if err := v.BindPFlag(configKeySimulation+"."+key, flags.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}

// simulationConfig coerces the layered settings into a simulation.Config.
// Flag values override config file params for the same key.
func simulationConfig(v *viper.Viper) (simulation.Config, error) {
	cfg := simulation.DefaultConfig()
	var err error
	key := func(k string) string { return configKeySimulation + "." + k }

	if cfg.Subnets, err = cast.ToIntE(v.Get(key("subnets"))); err != nil {
		return cfg, fmt.Errorf("subnets: %w", err)
	}
	if cfg.NodesPerSubnet, err = cast.ToIntE(v.Get(key("nodes_per_subnet"))); err != nil {
		return cfg, fmt.Errorf("nodes_per_subnet: %w", err)
	}
	if cfg.Epochs, err = cast.ToUint64E(v.Get(key("epochs"))); err != nil {
		return cfg, fmt.Errorf("epochs: %w", err)
	}
	if cfg.Stake, err = cast.ToUint64E(v.Get(key("stake"))); err != nil {
		return cfg, fmt.Errorf("stake: %w", err)
	}
	if cfg.MemoryMB, err = cast.ToUint64E(v.Get(key("memory_mb"))); err != nil {
		return cfg, fmt.Errorf("memory_mb: %w", err)
	}
	if cfg.AttestRatio, err = cast.ToFloat64E(v.Get(key("attest_ratio"))); err != nil {
		return cfg, fmt.Errorf("attest_ratio: %w", err)
	}
	if cfg.MissRate, err = cast.ToFloat64E(v.Get(key("miss_rate"))); err != nil {
		return cfg, fmt.Errorf("miss_rate: %w", err)
	}
	if cfg.Seed, err = cast.ToInt64E(v.Get(key("seed"))); err != nil {
		return cfg, fmt.Errorf("seed: %w", err)
	}
	if v.IsSet(key("tenure")) {
		tenure := &simulation.Tenure{}
		if tenure.Included, err = cast.ToUint64E(v.Get(key("tenure.included"))); err != nil {
			return cfg, fmt.Errorf("tenure.included: %w", err)
		}
		if tenure.Submittable, err = cast.ToUint64E(v.Get(key("tenure.submittable"))); err != nil {
			return cfg, fmt.Errorf("tenure.submittable: %w", err)
		}
		if tenure.Accountant, err = cast.ToUint64E(v.Get(key("tenure.accountant"))); err != nil {
			return cfg, fmt.Errorf("tenure.accountant: %w", err)
		}
		cfg.Tenure = tenure
	}

	overrides, err := paramOverrides(v)
	if err != nil {
		return cfg, err
	}
	if raw := v.Get(flagParam); raw != nil {
		flagParams, err := cast.ToStringMapStringE(raw)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", flagParam, err)
		}
		for k, value := range flagParams {
			overrides[k] = value
		}
	}
	if len(overrides) > 0 {
		cfg.ParamOverrides = overrides
	}
	return cfg, cfg.Validate()
}
