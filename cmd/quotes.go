package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tearpay/config"
	"tearpay/pkg/storage"
)

var (
	clearQuotes  bool
	deleteQuote  string
	invoiceFlag  string
	recipientArg string
)

var quotesCmd = &cobra.Command{
	Use:   "quotes",
	Short: "Inspect or clean the local quote cache",
	Long: `Show the quotes cached for this machine, or remove them.

A cached, unexpired quote is reused by 'tearpay pay' instead of requesting a
new one, so clearing the cache forces fresh quotes.

Examples:
  tearpay quotes
  tearpay quotes --delete nep141:wrap.near
  tearpay quotes --clear`,
	Run: runQuotes,
}

func init() {
	rootCmd.AddCommand(quotesCmd)

	quotesCmd.Flags().BoolVar(&clearQuotes, "clear", false, "Remove all cached quotes")
	quotesCmd.Flags().StringVar(&deleteQuote, "delete", "", "Remove the cached quote for an origin asset id")
	quotesCmd.Flags().StringVar(&invoiceFlag, "invoice-id", "", "Invoice id (defaults to configuration)")
	quotesCmd.Flags().StringVar(&recipientArg, "recipient", "", "Recipient (defaults to configuration)")
}

// openStores opens the durable stores, falling back to in-memory storage when
// no durable directory is available
func openStores(cfg *config.Config) (*storage.QuoteStore, *storage.StatusStore) {
	backend, err := storage.NewFileBackend(cfg.StorageDir)
	if err != nil {
		log.Printf("[Storage] No durable storage at %s (%v); caching for this run only", cfg.StorageDir, err)
		mem := storage.NewMemoryBackend()
		return storage.NewQuoteStore(mem), storage.NewStatusStore(mem)
	}
	return storage.NewQuoteStore(backend), storage.NewStatusStore(backend)
}

func runQuotes(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	invoiceID := cfg.InvoiceID
	if invoiceFlag != "" {
		invoiceID = invoiceFlag
	}
	recipient := cfg.Recipient
	if recipientArg != "" {
		recipient = recipientArg
	}

	quotes, _ := openStores(cfg)

	if clearQuotes {
		quotes.Clear()
		fmt.Println("Cleared all cached quotes.")
		return
	}

	if deleteQuote != "" {
		quotes.Delete(invoiceID, deleteQuote, recipient)
		fmt.Printf("Removed cached quote for %s.\n", deleteQuote)
		return
	}

	all := quotes.All()

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(all, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if len(all) == 0 {
		fmt.Println("\nNo cached quotes.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	color.Green("                              CACHED QUOTES")
	fmt.Println(strings.Repeat("=", 80))

	for _, q := range all {
		state := color.GreenString("valid until %s", q.Quote.Deadline.Local().Format("2006-01-02 15:04:05"))
		if quotes.IsExpired(q) {
			state = color.RedString("expired")
		}

		fmt.Printf("\n  Invoice:         %s\n", q.InvoiceID)
		fmt.Printf("  Origin Asset:    %s\n", color.YellowString(q.QuoteRequest.OriginAsset))
		fmt.Printf("  Recipient:       %s\n", q.QuoteRequest.Recipient)
		fmt.Printf("  Deposit Address: %s\n", color.CyanString(q.Quote.DepositAddress))
		fmt.Printf("  Amount To Send:  %s\n", q.Quote.AmountInFormatted)
		fmt.Printf("  Fetched:         %s\n", q.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("  State:           %s\n", state)
	}

	fmt.Println("\n" + strings.Repeat("=", 80) + "\n")
}
