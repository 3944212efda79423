package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mselser95/venuehub/internal/app"
	"github.com/mselser95/venuehub/internal/rates"
)

//nolint:gochecknoglobals // Cobra boilerplate
var topRatesCmd = &cobra.Command{
	Use:     "top-rates <venue>",
	Short:   "Rank the most traded major assets of a venue",
	Example: "  venuehub top-rates binance --limit 5 --quotes USD,USDT",
	Args:    cobra.ExactArgs(1),
	RunE:    runTopRates,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(topRatesCmd)
	topRatesCmd.Flags().IntP("limit", "l", rates.DefaultLimit, "Number of assets to show (1-20)")
	topRatesCmd.Flags().StringSliceP("quotes", "q", nil, "Reference currencies to consider (default from RATES_QUOTES)")
}

func runTopRates(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	quotes, _ := cmd.Flags().GetStringSlice("quotes")

	return withServices(cmd, func(svc *app.Services) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		snapshot, err := svc.Rates.TopRates(ctx, args[0], quotes, limit)
		if err != nil {
			return fmt.Errorf("top rates: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(snapshot.Rates) == 0 {
			fmt.Fprintf(out, "No rates available on %s.\n", snapshot.Exchange)
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "#\tASSET\tSYMBOL\tPRICE\t24H %\tQUOTE VOLUME\t")
		for i, r := range snapshot.Rates {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
				i+1, r.Asset, r.Symbol, num(r.Price, 6), num(r.PercentChange24h, 2), num(r.VolumeReference, 0))
		}
		return w.Flush()
	})
}
