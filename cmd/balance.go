package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mselser95/venuehub/internal/app"
	"github.com/mselser95/venuehub/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var balanceCmd = &cobra.Command{
	Use:   "balance <venue>",
	Short: "Show account balances, optionally valued",
	Long: `Display the non-zero balances of an account. Keys are read from
VENUE_API_KEY, VENUE_API_SECRET and VENUE_API_PASSPHRASE.

With --value every holding is priced in PORTFOLIO_QUOTE.`,
	Args: cobra.ExactArgs(1),
	RunE: runBalance,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().Bool("sandbox", false, "Use the venue's testnet")
	balanceCmd.Flags().BoolP("value", "v", false, "Value holdings in the reference currency")
}

func credentialsFromEnv(cmd *cobra.Command) types.Credentials {
	sandbox, _ := cmd.Flags().GetBool("sandbox")
	return types.Credentials{
		APIKey:     os.Getenv("VENUE_API_KEY"),
		Secret:     os.Getenv("VENUE_API_SECRET"),
		Passphrase: os.Getenv("VENUE_API_PASSPHRASE"),
		Sandbox:    sandbox,
	}
}

func runBalance(cmd *cobra.Command, args []string) error {
	valued, _ := cmd.Flags().GetBool("value")

	return withServices(cmd, func(svc *app.Services) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		creds := credentialsFromEnv(cmd)
		out := cmd.OutOrStdout()
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)

		if valued {
			p, err := svc.Portfolio.GetPortfolio(ctx, args[0], creds)
			if err != nil {
				return fmt.Errorf("get portfolio: %w", err)
			}
			fmt.Fprintf(w, "CURRENCY\tTOTAL\tFREE\tUSED\tVALUE (%s)\t\n", p.Reference)
			for _, h := range p.Holdings {
				fmt.Fprintf(w, "%s\t%.8f\t%.8f\t%.8f\t%.2f\t\n", h.Currency, h.Total, h.Free, h.Used, h.Value)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nTotal: %.2f %s\n", p.TotalValue, p.Reference)
			for _, warning := range p.Warnings {
				fmt.Fprintf(out, "warning: %s not valued: %s\n", warning.Currency, warning.Reason)
			}
			return nil
		}

		balance, err := svc.Trading.GetBalance(ctx, args[0], creds)
		if err != nil {
			return fmt.Errorf("get balance: %w", err)
		}

		codes := make([]string, 0, len(balance.Currencies))
		for code, entry := range balance.Currencies {
			if entry.Total > 0 {
				codes = append(codes, code)
			}
		}
		sort.Strings(codes)

		fmt.Fprintln(w, "CURRENCY\tTOTAL\tFREE\tUSED\t")
		for _, code := range codes {
			e := balance.Currencies[code]
			fmt.Fprintf(w, "%s\t%.8f\t%.8f\t%.8f\t\n", code, e.Total, e.Free, e.Used)
		}
		return w.Flush()
	})
}
