// cmd/launchpad/derive.go
package main

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/launchpad"
	"github.com/spf13/cobra"
)

var deriveCmd = &cobra.Command{
	Use:   "derive [collection]",
	Short: "Print the settings address and, for a collection, its candy store address",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		settings, bump, err := launchpad.FindSettingsAddress()
		if err != nil {
			return err
		}
		fmt.Printf("program:     %s\n", launchpad.ProgramID)
		fmt.Printf("settings:    %s (bump %d)\n", settings, bump)

		if len(args) == 0 {
			return nil
		}
		collection, err := solana.PublicKeyFromBase58(args[0])
		if err != nil {
			return fmt.Errorf("invalid collection: %w", err)
		}
		store, bump, err := launchpad.FindCandyStoreAddress(collection)
		if err != nil {
			return err
		}
		fmt.Printf("candy store: %s (bump %d)\n", store, bump)
		return nil
	},
}
