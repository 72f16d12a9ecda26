package main

import (
	stderrors "errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/vango-dev/routegen/internal/errors"
	"github.com/vango-dev/routegen/internal/report"
)

func (a *app) checkCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Fail when the generated route table is out of date",
		Long: `Generate the route table in memory and compare it with the file on disk.

Nothing is written. When the two differ, a unified diff is printed and the
command exits with an error, which makes it suitable for CI.

Examples:
  routegen check
  routegen check --quiet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.compile(cmd.Context(), true)
			if err != nil {
				return err
			}
			if !result.Changed {
				a.success("%s is up to date", a.cfg.Output)
				return nil
			}

			current, err := afero.ReadFile(a.fs, result.OutputFile)
			if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
				return errors.FromError(err, errors.CodeCompileFailed)
			}
			if !quiet {
				diff, err := report.Diff(a.cfg.Output, current, result.Output)
				if err != nil {
					return err
				}
				fmt.Fprint(a.out, diff)
			}

			detail := "the generated file differs from what the pages produce"
			if current == nil {
				detail = "the generated file does not exist"
			}
			return errors.New(errors.CodeOutOfDate).WithPath(a.cfg.Output).WithDetail(detail)
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the diff")

	return cmd
}
