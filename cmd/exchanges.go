package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mselser95/venuehub/internal/app"
)

//nolint:gochecknoglobals // Cobra boilerplate
var exchangesCmd = &cobra.Command{
	Use:   "exchanges [venue]",
	Short: "List supported venues, or describe one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExchanges,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(exchangesCmd)
}

func runExchanges(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(svc *app.Services) error {
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCOUNTRIES\tRATE LIMIT")
			for _, s := range svc.Exchanges.ListSummaries(cmd.Context()) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%dms\n", s.ID, s.Name, strings.Join(s.Countries, ","), s.RateLimit)
			}
			return w.Flush()
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		info, err := svc.Exchanges.GetExchangeInfo(ctx, args[0])
		if err != nil {
			return fmt.Errorf("get exchange info: %w", err)
		}

		fmt.Fprintf(out, "%s (%s)\n", info.Name, info.ID)
		fmt.Fprintf(out, "Status:     %s\n", info.Status)
		fmt.Fprintf(out, "Founded:    %d\n", info.Founded)
		fmt.Fprintf(out, "Countries:  %s\n", strings.Join(info.Countries, ", "))
		fmt.Fprintf(out, "Markets:    %d\n", len(info.Markets))
		fmt.Fprintf(out, "Timeframes: %s\n", strings.Join(info.Timeframes, " "))
		fmt.Fprintf(out, "\n%s\n", info.Description)
		return nil
	})
}
