package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"cosmossdk.io/log"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/paw-chain/tensornet/x/network/keeper"
	"github.com/paw-chain/tensornet/x/network/simulation"
	"github.com/paw-chain/tensornet/x/network/types"
)

// configKeyParams is the config table holding param overrides by param key.
const configKeyParams = "params"

func paramsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Inspect network module parameters",
	}
	cmd.AddCommand(paramsShowCommand(), paramsKeysCommand())
	return cmd
}

func paramsShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the default params with the config file overrides applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			overrides, err := paramOverrides(v)
			if err != nil {
				return err
			}
			params, err := resolveParams(overrides)
			if err != nil {
				return err
			}
			bz, err := json.MarshalIndent(params, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(bz))
			return nil
		},
	}
	return cmd
}

func paramsKeysCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the param keys accepted in the config file params table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, key := range keeper.ParamKeys() {
				cmd.Println(key)
			}
			return nil
		},
	}
}

// paramOverrides reads the params table, coercing every value to a string
// the keeper setters parse.
func paramOverrides(v *viper.Viper) (map[string]string, error) {
	out := make(map[string]string)
	table := v.Get(configKeyParams)
	if table == nil {
		return out, nil
	}
	raw, err := cast.ToStringMapE(table)
	if err != nil {
		return nil, fmt.Errorf("params table: %w", err)
	}
	for key, value := range raw {
		s, err := cast.ToStringE(value)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", key, err)
		}
		out[key] = s
	}
	return out, nil
}

// resolveParams applies overrides in key order to the defaults, through the
// same setters the administrative messages use.
func resolveParams(overrides map[string]string) (types.Params, error) {
	h, err := simulation.NewHarness(log.NewNopLogger(), 0)
	if err != nil {
		return types.Params{}, err
	}
	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := h.Keeper.SetParamByKey(h.Context(), key, overrides[key]); err != nil {
			return types.Params{}, err
		}
	}
	return h.Keeper.GetParams(h.Context()), nil
}
