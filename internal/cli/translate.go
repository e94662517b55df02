package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ErikMLC/sqlmongo"
	"github.com/ErikMLC/sqlmongo/engine/models"
	"github.com/ErikMLC/sqlmongo/engine/shell"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"google.golang.org/protobuf/encoding/protojson"
)

// Output formats of the translate command
const (
	FormatJSON      = "json"
	FormatShell     = "shell"
	FormatTable     = "table"
	FormatProtoJSON = "protojson"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{FormatJSON, FormatShell, FormatTable, FormatProtoJSON}

// TranslateOptions holds translate flags
type TranslateOptions struct {
	Format string
	Strict bool
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{}

	cmd := &cobra.Command{
		Use:   "translate [sql]",
		Short: "Translate SQL statements into MongoDB queries",
		Long: `Translate one or more SQL statements separated by semicolons.
The SQL is read from the arguments or, when none are given, from stdin.
Warnings are written to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return runTranslate(rootOpts, opts, cmd, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", FormatJSON, "output format (json|shell|table|protojson)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail on conditions that cannot be parsed")

	return cmd
}

func runTranslate(rootOpts *RootOptions, opts *TranslateOptions, cmd *cobra.Command, args []string) error {
	input, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	cfg, logger, err := rootOpts.load()
	if err != nil {
		return err
	}
	defer logger.Sync()

	trOpts := translatorOptions(cfg, logger)
	if opts.Strict {
		trOpts.StrictConditions = true
	}

	results, err := sqlmongo.New(trOpts).TranslateAll(input)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range results {
		for _, w := range r.Meta().Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
		}
		if err := writeResult(out, opts.Format, r); err != nil {
			return err
		}
	}
	return nil
}

func writeResult(w io.Writer, format string, r models.Result) error {
	switch format {
	case FormatShell:
		text, err := shell.Render(r)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, text)
		return err

	case FormatTable:
		return writeTable(w, r)

	case FormatProtoJSON:
		s, err := models.ToStruct(r)
		if err != nil {
			return err
		}
		data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	data, err := models.MarshalExtJSON(r, true)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeTable prints aggregate stages one per row, other results one row per
// top-level key
func writeTable(w io.Writer, r models.Result) error {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)

	if agg, ok := r.(*models.Aggregate); ok {
		table.SetHeader([]string{"#", "Stage", "Body"})
		for i, stage := range agg.Pipeline {
			if len(stage) == 0 {
				continue
			}
			body, err := compactValue(stage[0].Value)
			if err != nil {
				return err
			}
			table.Append([]string{strconv.Itoa(i + 1), stage[0].Key, body})
		}
		table.SetCaption(true, agg.Collection)
		table.Render()
		return nil
	}

	table.SetHeader([]string{"Key", "Value"})
	for _, e := range r.Document() {
		value, err := compactValue(e.Value)
		if err != nil {
			return err
		}
		table.Append([]string{e.Key, value})
	}
	table.Render()
	return nil
}

// compactValue renders one value as relaxed Extended JSON; strings stay bare
func compactValue(v interface{}) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	data, err := bson.MarshalExtJSON(bson.D{{Key: "v", Value: v}}, false, false)
	if err != nil {
		return "", err
	}
	text := strings.TrimPrefix(string(data), `{"v":`)
	return strings.TrimSuffix(text, "}"), nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
