// cmd/launchpad/wallet.go
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rovshanmuradov/candy-launchpad/internal/wallet"
	"github.com/spf13/cobra"
)

var walletsPath string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage the wallets file",
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallet names and public keys",
	RunE: func(*cobra.Command, []string) error {
		wallets, err := wallet.LoadWallets(walletsPath)
		if err != nil {
			return err
		}
		for _, name := range wallets.Names() {
			fmt.Printf("%-16s %s\n", name, wallets[name])
		}
		return nil
	},
}

var walletGenerateCmd = &cobra.Command{
	Use:   "generate <name>...",
	Short: "Generate wallets and append them to the wallets file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		wallets, err := wallet.LoadWallets(walletsPath)
		if errors.Is(err, os.ErrNotExist) {
			wallets = wallet.Set{}
		} else if err != nil {
			return err
		}

		for _, name := range args {
			if _, exists := wallets[name]; exists {
				return fmt.Errorf("wallet %q already exists", name)
			}
			w := wallet.Generate(name)
			wallets[name] = w
			fmt.Printf("%-16s %s\n", name, w)
		}
		return wallet.SaveWallets(walletsPath, wallets)
	},
}

func init() {
	walletCmd.PersistentFlags().StringVar(&walletsPath, "wallets", "configs/wallets.yaml", "path to wallets file")
	walletCmd.AddCommand(walletListCmd, walletGenerateCmd)
}
