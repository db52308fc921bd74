package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/safestudy/safestudy-go/internal/breach"
	"github.com/safestudy/safestudy-go/internal/service"
)

func newCheckCmd() *cobra.Command {
	var (
		apiURL      string
		timeout     time.Duration
		concurrency int
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "check [password...]",
		Short: "Analyze passwords and look them up in the breach corpus",
		Long: "Analyze passwords and look them up in the breach corpus. Only the first five " +
			"hex characters of each SHA-1 digest leave this machine.",
		RunE: func(cmd *cobra.Command, args []string) error {
			passwords, err := readPasswords(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			svc := service.NewSecurityService(breach.NewChecker(apiURL, breach.WithTimeout(timeout)))
			reports, err := svc.CheckMany(cmd.Context(), passwords, concurrency)
			if err != nil {
				return err
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

	defaultURL := os.Getenv("BREACH_API_URL")
	if defaultURL == "" {
		defaultURL = breach.DefaultBaseURL
	}

	f := cmd.Flags()
	f.StringVar(&apiURL, "api-url", defaultURL, "range API base URL")
	f.DurationVar(&timeout, "timeout", breach.DefaultTimeout, "per-lookup timeout")
	f.IntVar(&concurrency, "concurrency", 4, "parallel lookups")
	f.BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
