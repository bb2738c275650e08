package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paw-chain/tensornet/x/network"
)

func genesisCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genesis",
		Short: "Default and validate network module genesis state",
	}
	cmd.AddCommand(genesisDefaultCommand(), genesisValidateCommand())
	return cmd
}

func genesisDefaultCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "default",
		Short: "Print the default network genesis state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bz := network.AppModuleBasic{}.DefaultGenesis(nil)
			var out json.RawMessage
			if err := json.Unmarshal(bz, &out); err != nil {
				return err
			}
			indented, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(indented))
			return nil
		},
	}
}

func genesisValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a network genesis state file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bz, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := (network.AppModuleBasic{}).ValidateGenesis(nil, nil, bz); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			cmd.Printf("%s is a valid network genesis state\n", args[0])
			return nil
		},
	}
}
