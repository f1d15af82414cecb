package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tearpay/config"
	"tearpay/pkg/client"
	"tearpay/pkg/types"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status <deposit-address>",
	Short: "Check the settlement status of a payment",
	Long: `Check the execution status of a payment by its quoted deposit address.

Examples:
  tearpay status 0x1234...abcd
  tearpay status 0x1234...abcd --watch
  tearpay status 0x1234...abcd --watch --interval 10`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates continuously")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	depositAddress := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	apiClient := client.NewClient(cfg.BaseURL, cfg.JWTToken)

	if watchStatus {
		watchPaymentStatus(apiClient, depositAddress, jsonOutput)
	} else {
		checkPaymentStatus(apiClient, depositAddress, jsonOutput)
	}
}

func checkPaymentStatus(apiClient *client.Client, depositAddress string, jsonOutput bool) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking payment status..."
		s.Start()
	}

	status, err := apiClient.ExecutionStatus(context.Background(), depositAddress)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(status, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayStatus(status, depositAddress)
	}
}

func watchPaymentStatus(apiClient *client.Client, depositAddress string, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		os.Exit(1)
	}

	fmt.Printf("\nWatching payment status (Deposit Address: %s)\n", color.CyanString(depositAddress))
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	// Check immediately first
	checkAndDisplayStatus(apiClient, depositAddress)

	for range ticker.C {
		checkAndDisplayStatus(apiClient, depositAddress)
	}
}

func checkAndDisplayStatus(apiClient *client.Client, depositAddress string) {
	status, err := apiClient.ExecutionStatus(context.Background(), depositAddress)
	if err != nil {
		color.Red("Error: %v", err)
		return
	}

	displayStatus(status, depositAddress)
}

func displayStatus(status *types.ExecutionStatus, depositAddress string) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                       PAYMENT STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Deposit Address: %s\n", color.CyanString(depositAddress))
	fmt.Printf("  Status:          %s\n", coloredStatus(status.Status))
	fmt.Printf("                   %s\n", statusText(status.Status))
	fmt.Printf("  Last Updated:    %s\n", status.UpdatedAt.Format("2006-01-02 15:04:05"))

	for _, tx := range status.SwapDetails.OriginChainTxHashes {
		if tx.Hash != "" {
			fmt.Printf("  Deposit Tx:      %s\n", color.HiBlackString(tx.Hash))
		}
	}

	for _, tx := range status.SwapDetails.DestinationChainTxHashes {
		if tx.Hash != "" {
			fmt.Printf("  Settlement Tx:   %s\n", color.HiBlackString(tx.Hash))
		}
	}

	if status.SwapDetails.AmountInFormatted != "" {
		fmt.Printf("  Amount In:       %s\n", status.SwapDetails.AmountInFormatted)
	}
	if status.SwapDetails.AmountOutFormatted != "" {
		fmt.Printf("  Amount Out:      %s\n", status.SwapDetails.AmountOutFormatted)
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func coloredStatus(status types.SwapStatus) string {
	switch status {
	case types.StatusSuccess:
		return color.GreenString(string(status))
	case types.StatusPendingDeposit, types.StatusKnownDepositTx, types.StatusProcessing:
		return color.YellowString(string(status))
	case types.StatusFailed, types.StatusRefunded:
		return color.RedString(string(status))
	case types.StatusIncompleteDeposit:
		return color.MagentaString(string(status))
	default:
		return string(status)
	}
}

// statusText is the human wording for each execution status. Unrecognized
// values get a generic line instead of failing.
func statusText(status types.SwapStatus) string {
	switch status {
	case types.StatusSuccess:
		return "Payment Successful"
	case types.StatusProcessing:
		return "Processing Payment"
	case types.StatusFailed:
		return "Payment Failed"
	case types.StatusRefunded:
		return "Something went wrong. The deposit was refunded; contact support and include the deposit address above"
	case types.StatusKnownDepositTx:
		return "Deposit Transaction Detected"
	case types.StatusPendingDeposit:
		return "Waiting for Deposit"
	case types.StatusIncompleteDeposit:
		return "Incomplete Deposit. Please deposit the remaining amount"
	default:
		return "Unknown Status"
	}
}
