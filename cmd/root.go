package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tearpay",
	Short: "Pay crypto invoices via NEAR Intents 1Click swaps",
	Long: `tearpay renders a crypto invoice payment flow in the terminal: pick a
source token, get a cross-chain swap quote settling into USDC on Intents,
send funds to the quoted deposit address, and watch until the payment
confirms. Quotes and payment outcomes are cached locally, so re-running
the flow reuses a live quote and a settled invoice opens straight to the
success view.

Examples:
  tearpay pay
  tearpay pay --amount 4.99 --invoice-id order-1234 --recipient shop.near
  tearpay tokens --chain near
  tearpay status <deposit-address> --watch
  tearpay quotes --clear`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}
