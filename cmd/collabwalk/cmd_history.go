package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var clearAll bool
	cmd := &cobra.Command{
		Use:   "history [artist]",
		Short: "List saved walks, optionally for one seed artist",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed := ""
			if len(args) == 1 {
				seed = args[0]
			}
			walks, err := a.backends.walkStore(cmd.Context())
			if err != nil {
				return err
			}

			if clearAll {
				if err := walks.Clear(cmd.Context(), seed); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), styles.Success.Render("cleared saved walks"))
				return err
			}

			records, err := walks.List(cmd.Context(), seed)
			if err != nil {
				return err
			}
			return writeHistory(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().BoolVar(&clearAll, "clear", false, "delete the listed walks instead of printing them")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var (
		format string
		remove bool
	)
	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Print a saved walk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(format); err != nil {
				return err
			}
			walks, err := a.backends.walkStore(cmd.Context())
			if err != nil {
				return err
			}

			record, err := walks.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			g, err := record.Graph()
			if err != nil {
				return err
			}
			if err := writeWalk(cmd.OutOrStdout(), format, record, g); err != nil {
				return err
			}

			if remove {
				return walks.Delete(cmd.Context(), record.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format")
	cmd.Flags().BoolVar(&remove, "delete", false, "delete the walk after printing it")
	return cmd
}
