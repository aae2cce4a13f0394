package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a snapshot (.toml, .yaml or .json) into an empty database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, closeApp, err := opts.openApp(cmd.Context(), cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := closeApp(); err == nil {
					err = closeErr
				}
			}()

			if err := a.Import(cmd.Context(), args[0]); err != nil {
				return err
			}

			st, err := a.Status(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d actions, %d subjects, %d sessions\n",
				st.Actions, st.Subjects, st.Sessions)
			return err
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Write the stored state as a snapshot; the format follows the file extension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, closeApp, err := opts.openApp(cmd.Context(), cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := closeApp(); err == nil {
					err = closeErr
				}
			}()

			return a.Export(args[0])
		},
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the database location and what it holds",
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

			st, err := a.Status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "database: %s\n", st.DatabasePath)
			fmt.Fprintf(out, "schema: %s\n", st.SchemaVersion)
			fmt.Fprintf(out, "actions: %d\n", st.Actions)
			fmt.Fprintf(out, "subjects: %d\n", st.Subjects)
			fmt.Fprintf(out, "sessions: %d\n", st.Sessions)
			_, err = fmt.Fprintf(out, "total: %s\n", st.Total)
			return err
		},
	}
}
