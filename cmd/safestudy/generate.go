package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/safestudy/safestudy-go/internal/crypto"
	"github.com/safestudy/safestudy-go/internal/strength"
)

func newGenerateCmd() *cobra.Command {
	var (
		policy    = crypto.DefaultPolicy()
		noUpper   bool
		noLower   bool
		noNumbers bool
		noSymbols bool
		count     int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate random passwords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			policy.Uppercase = !noUpper
			policy.Lowercase = !noLower
			policy.Numbers = !noNumbers
			policy.Symbols = !noSymbols
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}

			type generated struct {
				Password string          `json:"password"`
				Strength strength.Report `json:"strength"`
			}
			results := make([]generated, 0, count)
			for range count {
				pw, err := crypto.Generate(policy)
				if err != nil {
					return err
				}
				results = append(results, generated{Password: pw, Strength: strength.Analyze(pw)})
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), results)
			}
			for _, g := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s (%d/%d)\n", g.Password, g.Strength.Rating, g.Strength.Score, g.Strength.MaxScore)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVarP(&policy.Length, "length", "l", crypto.DefaultLength, fmt.Sprintf("password length (%d-%d)", crypto.MinLength, crypto.MaxLength))
	f.BoolVar(&noUpper, "no-upper", false, "exclude uppercase letters")
	f.BoolVar(&noLower, "no-lower", false, "exclude lowercase letters")
	f.BoolVar(&noNumbers, "no-numbers", false, "exclude digits")
	f.BoolVar(&noSymbols, "no-symbols", false, "exclude symbols")
	f.BoolVar(&policy.ExcludeAmbiguous, "exclude-ambiguous", false, "drop look-alike characters ("+crypto.AmbiguousChars+")")
	f.BoolVar(&policy.RequireEachClass, "require-each-class", false, "guarantee one character from every selected class")
	f.IntVarP(&count, "count", "n", 1, "number of passwords")
	f.BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}
