package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tearpay/config"
	"tearpay/pkg/client"
	"tearpay/pkg/invoice"
	"tearpay/pkg/types"
)

var (
	amountUSD     float64
	invoiceID     string
	recipientAddr string
	redirectTo    string
)

var payCmd = &cobra.Command{
	Use:   "pay",
	Short: "Run the invoice payment flow",
	Long: `Pay an invoice with any supported token.

Pick a token from the catalog, send the quoted amount to the displayed
deposit address before the quote's deadline, and the flow will confirm the
payment once the swap settles. A quote stays valid across runs until its
deadline passes; a settled invoice opens straight to the success view.

Examples:
  tearpay pay
  tearpay pay --amount 4.99 --invoice-id order-1234 --recipient shop.near`,
	Run: runPay,
}

func init() {
	rootCmd.AddCommand(payCmd)

	payCmd.Flags().Float64Var(&amountUSD, "amount", 0, "Invoice amount in USD (defaults to configuration)")
	payCmd.Flags().StringVar(&invoiceID, "invoice-id", "", "Invoice id (defaults to configuration)")
	payCmd.Flags().StringVar(&recipientAddr, "recipient", "", "Invoice recipient (defaults to configuration)")
	payCmd.Flags().StringVar(&redirectTo, "redirect-to", "", "URL to show after payment (defaults to configuration)")
}

func runPay(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	inv := types.Invoice{
		AmountUSD:  cfg.AmountUSD,
		ID:         cfg.InvoiceID,
		Recipient:  cfg.Recipient,
		RedirectTo: cfg.RedirectTo,
	}
	if amountUSD != 0 {
		inv.AmountUSD = amountUSD
	}
	if invoiceID != "" {
		inv.ID = invoiceID
	}
	if recipientAddr != "" {
		inv.Recipient = recipientAddr
	}
	if redirectTo != "" {
		inv.RedirectTo = redirectTo
	}

	apiClient := client.NewClient(cfg.BaseURL, cfg.JWTToken)
	quotes, payments := openStores(cfg)

	session := invoice.NewSession(inv, apiClient, quotes, payments)
	session.Start()
	defer session.Close()

	// The first snapshot tells us whether the invoice is already settled.
	first := <-session.Updates()
	if first.Paid() {
		renderSuccess(inv)
		return
	}

	fmt.Printf("\nInvoice %s: %s owed to %s\n", color.CyanString(inv.ID),
		color.GreenString("$%.2f", inv.AmountUSD), inv.Recipient)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Fetching supported tokens..."
	s.Start()
	tokens, err := apiClient.Tokens(context.Background())
	s.Stop()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	runPayLoop(session, inv, tokens)
}

// runPayLoop drives the session from stdin commands and renders snapshots as
// they arrive
func runPayLoop(session *invoice.Session, inv types.Invoice, tokens []types.Token) {
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
		close(lines)
	}()

	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)

	state := invoice.StateSelecting
	filter := ""
	visible := renderTokenList(tokens, filter, "")

	for {
		select {
		case snap := <-session.Updates():
			sp.Stop()
			state = snap.State

			switch snap.State {
			case invoice.StateSelecting:
				filter = ""
				visible = renderTokenList(tokens, filter, snap.ErrorMessage)
			case invoice.StateQuotePending:
				sp.Suffix = " Fetching quote..."
				sp.Start()
			case invoice.StateQuoteReady:
				renderQuote(snap)
			case invoice.StateQuoteExpired:
				color.Yellow("\nThis quote has expired. Please get a new quote to continue.")
				fmt.Println("Commands: [r] get new quote, [b] back, [q] quit")
			case invoice.StatePaid:
				renderSuccess(inv)
				return
			}

		case line, ok := <-lines:
			if !ok || line == "q" {
				fmt.Println("\nLeaving the invoice open. Run 'tearpay pay' again to continue.")
				return
			}

			switch state {
			case invoice.StateSelecting:
				if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(visible) {
					session.SelectToken(visible[n-1])
					continue
				}
				filter = line
				visible = renderTokenList(tokens, filter, "")
			case invoice.StateQuoteReady, invoice.StateQuoteExpired:
				switch line {
				case "b":
					session.Back()
				case "r":
					session.Refresh()
				}
			}
		}
	}
}

// renderTokenList prints the filtered catalog and returns the visible slice
// in display order
func renderTokenList(tokens []types.Token, filter, errMsg string) []types.Token {
	if errMsg != "" {
		color.Red("\n%s", errMsg)
	}

	query := strings.ToLower(filter)
	var visible []types.Token
	for _, token := range tokens {
		if query == "" ||
			strings.Contains(strings.ToLower(token.Symbol), query) ||
			strings.Contains(strings.ToLower(token.Blockchain), query) {
			visible = append(visible, token)
		}
	}

	fmt.Println("\nSelect a token to pay with:")
	shown := visible
	if len(shown) > 15 {
		shown = shown[:15]
	}
	for i, token := range shown {
		fmt.Printf("  %2d. %-10s %s\n", i+1,
			color.YellowString(token.Symbol), color.HiBlackString(token.Blockchain))
	}
	if len(visible) > len(shown) {
		fmt.Printf("  ... and %d more\n", len(visible)-len(shown))
	}
	fmt.Print("Type a number to select, text to search, or q to quit: ")

	return shown
}

func renderQuote(snap invoice.Snapshot) {
	quote := snap.Quote
	if quote == nil {
		return
	}

	// A repeated QuoteReady snapshot only moves the status line.
	if snap.SwapStatus != "" {
		fmt.Printf("  Status: %s - %s\n", coloredStatus(snap.SwapStatus), statusText(snap.SwapStatus))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                      PAYMENT INFORMATION")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Deposit Address: %s\n", color.CyanString(quote.Quote.DepositAddress))
	if snap.Token != nil {
		fmt.Printf("  Amount to Send:  %s %s\n",
			color.YellowString(quote.Quote.AmountInFormatted), snap.Token.Symbol)
		if snap.Token.ContractAddress != "" {
			fmt.Printf("  Token Contract:  %s\n", color.HiBlackString(snap.Token.ContractAddress))
		}
	}
	fmt.Printf("  Pay Before:      %s\n", quote.Quote.Deadline.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("  Estimated Time:  %.0f seconds\n", quote.Quote.TimeEstimate)

	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("Commands: [b] back, [r] refresh quote, [q] quit")
}

func renderSuccess(inv types.Invoice) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                      PAYMENT SUCCESSFUL!")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Println("\nThank you for your payment. The transaction has been completed successfully.")
	if inv.RedirectTo != "" {
		fmt.Printf("\nReturn to: %s\n", color.CyanString(inv.RedirectTo))
	}
	fmt.Println()
}
