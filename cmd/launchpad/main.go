// ====================================
// File: cmd/launchpad/main.go
// ====================================
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "launchpad",
		Short: "Candy store launchpad running on a local ledger",
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.json", "path to config file")
	rootCmd.SilenceUsage = true
	rootCmd.AddCommand(runCmd, deriveCmd, walletCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
