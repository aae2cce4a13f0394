package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"zeitig/internal/services"
	"zeitig/internal/types"
)

func newInsightsCmd(opts *rootOptions) *cobra.Command {
	var utc bool

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Show the tracked time per week and topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			a, closeApp, err := opts.openApp(cmd.Context(), cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := closeApp(); err == nil {
					err = closeErr
				}
			}()

			insights := a.Insights()
			if utc {
				insights = services.NewInsights(time.UTC)
			}
			return writeWeeks(cmd.OutOrStdout(), insights, a.History())
		},
	}

	cmd.Flags().BoolVar(&utc, "utc", false, "group sessions by UTC day instead of the local day")
	return cmd
}

func writeWeeks(out io.Writer, insights *services.Insights, history *types.History) error {
	weeks := 0
	for week := range insights.Generate(history) {
		if weeks > 0 {
			fmt.Fprintln(out)
		}
		weeks++

		fmt.Fprintf(out, "%s - %s\t%s\n", week.Begin, week.End, week.Total())
		for _, e := range week.Entries {
			fmt.Fprintf(out, "  %s\t%s\n", e.Topic, e.Spent)
		}
	}

	if weeks == 0 {
		_, err := fmt.Fprintln(out, "no sessions recorded")
		return err
	}
	return nil
}
