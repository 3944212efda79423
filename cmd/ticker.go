package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mselser95/venuehub/internal/app"
)

//nolint:gochecknoglobals // Cobra boilerplate
var tickerCmd = &cobra.Command{
	Use:     "ticker <venue> <symbol>",
	Short:   "Show the 24h ticker of one market",
	Example: "  venuehub ticker binance BTC/USDT",
	Args:    cobra.ExactArgs(2),
	RunE:    runTicker,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(tickerCmd)
	tickerCmd.Flags().IntP("depth", "d", 0, "Also print this many order book levels per side")
}

func runTicker(cmd *cobra.Command, args []string) error {
	depth, _ := cmd.Flags().GetInt("depth")

	return withServices(cmd, func(svc *app.Services) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		venue, symbol := args[0], args[1]
		t, err := svc.MarketData.GetTicker(ctx, venue, symbol)
		if err != nil {
			return fmt.Errorf("get ticker: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s on %s at %s\n", t.Symbol, venue, t.Timestamp.Format(time.RFC3339))
		fmt.Fprintf(out, "Last:    %s\n", num(t.Last, 8))
		fmt.Fprintf(out, "Bid/Ask: %s / %s\n", num(t.Bid, 8), num(t.Ask, 8))
		fmt.Fprintf(out, "High/Low: %s / %s\n", num(t.High, 8), num(t.Low, 8))
		fmt.Fprintf(out, "Change:  %s (%s%%)\n", num(t.Change, 8), num(t.Percentage, 2))
		fmt.Fprintf(out, "Volume:  %s base, %s quote\n", num(t.BaseVolume, 4), num(t.QuoteVolume, 2))

		if depth <= 0 {
			return nil
		}

		book, err := svc.MarketData.GetOrderBook(ctx, venue, symbol, depth)
		if err != nil {
			return fmt.Errorf("get order book: %w", err)
		}
		fmt.Fprintln(out, "\nBids:")
		for _, l := range book.Bids {
			fmt.Fprintf(out, "  %.8f x %.8f\n", l.Price, l.Size)
		}
		fmt.Fprintln(out, "Asks:")
		for _, l := range book.Asks {
			fmt.Fprintf(out, "  %.8f x %.8f\n", l.Price, l.Size)
		}
		return nil
	})
}
