package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ErikMLC/sqlmongo/engine/validator"

	"github.com/spf13/cobra"
)

// ErrInvalid is returned when the checked query is rejected
var ErrInvalid = errors.New("query is not valid")

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dialect string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "validate [query]",
		Short: "Check SQL syntax, or translated output with --dialect mongodb",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var res *validator.ValidationResult
			if strings.EqualFold(dialect, "mongodb") {
				res, err = validator.MongoDB{}.ValidateWithDetails(input)
			} else {
				res, err = validator.ValidateSQLWithDetails(input, dialect)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}
			} else if res.Valid {
				fmt.Fprintf(out, "valid %s\n", res.Dialect)
			} else {
				fmt.Fprintf(out, "invalid %s: %s\n", res.Dialect, res.Error)
				if res.Suggestion != "" {
					fmt.Fprintf(out, "hint: %s\n", res.Suggestion)
				}
			}

			if !res.Valid {
				return ErrInvalid
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dialect, "dialect", "d", "mysql", "dialect (mysql|postgres|mongodb)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the validation result as JSON")

	return cmd
}
