package cli

import (
	"github.com/spf13/cobra"

	"zeitig/internal/tui"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive tracker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			a, closeApp, err := opts.openApp(cmd.Context(), cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := closeApp(); err == nil {
					err = closeErr
				}
			}()

			return tui.Run(cmd.Context(), a)
		},
	}
}
