package cli

import (
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// readInput takes the query from args or, when none is given, stdin
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.New("no query given: pass it as an argument or on stdin")
	}
	return text, nil
}
