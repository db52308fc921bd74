package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/safestudy/safestudy-go/internal/breach"
	"github.com/safestudy/safestudy-go/internal/model"
	"github.com/safestudy/safestudy-go/internal/service"
)

func newAnalyzeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze [password...]",
		Short: "Score passwords and suggest stronger variants (offline)",
		RunE: func(cmd *cobra.Command, args []string) error {
			passwords, err := readPasswords(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			// Offline; the checker is never consulted.
			svc := service.NewSecurityService(nil)
			reports := make([]model.SecurityReport, len(passwords))
			for i, pw := range passwords {
				if reports[i], err = svc.Analyze(model.CheckRequest{Password: pw}); err != nil {
					return err
				}
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), reports)
			}
			for _, r := range reports {
				printReport(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printReport(w io.Writer, r model.SecurityReport) {
	fmt.Fprintf(w, "strength: %s (%d/%d)", r.Strength.Rating, r.Strength.Score, r.Strength.MaxScore)
	if r.Strength.CrackTime != "" {
		fmt.Fprintf(w, ", crack time %s", r.Strength.CrackTime)
	}
	fmt.Fprintln(w)

	for _, s := range r.Strength.Suggestions {
		fmt.Fprintf(w, "  - %s\n", s)
	}
	if len(r.Alternatives) > 0 {
		fmt.Fprintln(w, "  try instead:")
		for _, a := range r.Alternatives {
			fmt.Fprintf(w, "    %s\n", a)
		}
	}
	if b := r.Breach; b != nil {
		switch b.Status {
		case breach.StatusBreached:
			fmt.Fprintf(w, "  breach: found %d times", b.Count)
			if b.Common {
				fmt.Fprint(w, " (common)")
			}
			fmt.Fprintln(w)
		case breach.StatusUndetermined:
			fmt.Fprintf(w, "  breach: could not check (%s)\n", b.Reason)
		default:
			fmt.Fprintln(w, "  breach: not found")
		}
	}
}
