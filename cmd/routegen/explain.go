package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/routegen/internal/errors"
	"github.com/vango-dev/routegen/internal/report"
)

func (a *app) explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [code]",
		Short: "Describe routegen error codes",
		Long: `Without arguments, list every error code. With a code, print its
explanation and fix hint.

Examples:
  routegen explain
  routegen explain R001`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				report.Codes(a.out)
				return nil
			}

			code := strings.ToUpper(args[0])
			if _, ok := errors.Lookup(code); !ok {
				return errors.Newf(errors.CategoryCLI, "unknown error code %q", args[0]).
					WithSuggestion("Run `routegen explain` to list all codes.")
			}
			fmt.Fprint(a.out, errors.New(code).Format())
			return nil
		},
	}
}
