package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable tensord reads.
	EnvPrefix = "TENSORD"

	Bech32PrefixAccAddr = "tensor"
	Bech32PrefixAccPub  = "tensorpub"

	flagConfig    = "config"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
	flagOutput    = "output"

	outputText = "text"
	outputJSON = "json"
)

var sdkConfigOnce sync.Once

func initSDKConfig() {
	sdkConfigOnce.Do(func() {
		sdk.GetConfig().SetBech32PrefixForAccount(Bech32PrefixAccAddr, Bech32PrefixAccPub)
	})
}

// NewRootCmd creates the tensord root command.
func NewRootCmd() *cobra.Command {
	initSDKConfig()

	rootCmd := &cobra.Command{
		Use:   "tensord",
		Short: "Tensornet network module operator tooling",
		Long: `tensord inspects network module parameters and genesis files and plays
whole epochs of subnet consensus offline against an in-memory store.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
			return nil
		},
	}

	rootCmd.PersistentFlags().String(flagConfig, "", "path to a toml, yaml or json config file")
	rootCmd.PersistentFlags().String(flagLogLevel, "info", "log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().String(flagLogFormat, "plain", "log format (plain|json)")

	rootCmd.AddCommand(
		paramsCommand(),
		genesisCommand(),
		simulateCommand(),
	)
	return rootCmd
}

// loadConfig layers flags over environment over the config file named by
// --config over flag defaults.
func loadConfig(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	if path := v.GetString(flagConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return v, nil
}

// newLogger builds the process logger from the log flags.
func newLogger(v *viper.Viper, out io.Writer) (log.Logger, error) {
	level, err := zerolog.ParseLevel(v.GetString(flagLogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	opts := []log.Option{log.LevelOption(level)}
	switch format := v.GetString(flagLogFormat); format {
	case "plain", "":
		opts = append(opts, log.ColorOption(false))
	case outputJSON:
		opts = append(opts, log.OutputJSONOption())
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	return log.NewLogger(out, opts...), nil
}

func validateOutput(output string) error {
	if output != outputText && output != outputJSON {
		return fmt.Errorf("invalid output %q, want %s or %s", output, outputText, outputJSON)
	}
	return nil
}
