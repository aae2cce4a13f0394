package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"zeitig/internal/app"
)

func newTrackCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "track ACTION SUBJECT",
		Short: "Track a topic until interrupted",
		Long:  "track starts a session for the named action and subject and commits it on Ctrl+C. Sessions shorter than tracker.min_session are discarded.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, closeApp, err := opts.openApp(ctx, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}

			topic, err := a.ResolveTopic(args[0], args[1])
			if err != nil {
				closeApp()
				return err
			}

			rt := app.NewRuntime(ctx, a)
			tracker := a.Tracker()
			if err := tracker.SelectAction(&topic.Action); err != nil {
				closeApp()
				return err
			}
			if err := tracker.SelectSubject(&topic.Subject); err != nil {
				closeApp()
				return err
			}
			if err := tracker.Start(); err != nil {
				closeApp()
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Tracking %s, press Ctrl+C to stop\n", topic)

			// Run shuts the app down itself; closeApp then only releases the log file
			runErr := rt.Run(ctx)
			if err := closeApp(); runErr == nil {
				runErr = err
			}
			if runErr != nil {
				return runErr
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Total for %s: %s\n", topic, tracker.Get(topic))
			return nil
		},
	}
}
