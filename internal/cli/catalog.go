package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"zeitig/internal/backend"
	"zeitig/internal/types"
)

func newActionCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "action",
		Short: "Manage actions",
	}

	cmd.AddCommand(
		newAddCmd(opts, "action", func(name string) backend.Command { return backend.AddAction{Name: name} }),
		newListCmd(opts, "actions", func(actions []types.Action, _ []types.Subject) []entry {
			out := make([]entry, 0, len(actions))
			for _, a := range actions {
				out = append(out, entry{a.ID, a.Name})
			}
			return out
		}),
	)

	return cmd
}

func newSubjectCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subject",
		Short: "Manage subjects",
	}

	cmd.AddCommand(
		newAddCmd(opts, "subject", func(name string) backend.Command { return backend.AddSubject{Name: name} }),
		newListCmd(opts, "subjects", func(_ []types.Action, subjects []types.Subject) []entry {
			out := make([]entry, 0, len(subjects))
			for _, s := range subjects {
				out = append(out, entry{s.ID, s.Name})
			}
			return out
		}),
	)

	return cmd
}

type entry struct {
	id   int64
	name string
}

func newAddCmd(opts *rootOptions, kind string, command func(string) backend.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME...",
		Short: fmt.Sprintf("Create a %s", kind),
		Args:  cobra.MinimumNArgs(1),
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

			sink := backend.NewChannelSink(8)
			a.Start(cmd.Context(), sink)

			event, err := a.Do(cmd.Context(), sink, command(strings.Join(args, " ")))
			if err != nil {
				return fmt.Errorf("add %s: %w", kind, err)
			}

			switch ev := event.(type) {
			case backend.ActionAdded:
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", ev.Action.ID, ev.Action.Name)
			case backend.SubjectAdded:
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", ev.Subject.ID, ev.Subject.Name)
			}
			return err
		},
	}
}

func newListCmd(opts *rootOptions, plural string, pick func([]types.Action, []types.Subject) []entry) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s", plural),
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

			for _, e := range pick(a.Catalog()) {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", e.id, e.name)
			}
			return nil
		},
	}
}
