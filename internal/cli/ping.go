package cli

import (
	"errors"
	"fmt"

	"github.com/ErikMLC/sqlmongo"

	"github.com/spf13/cobra"
)

// NewPingCommand creates the ping command.
func NewPingCommand(rootOpts *RootOptions) *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "ping [uri]",
		Short: "Check that a MongoDB deployment is reachable",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := rootOpts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			uri := cfg.Mongo.URI
			if len(args) > 0 {
				uri = args[0]
			}
			if uri == "" {
				return errors.New("no uri given and mongo.uri is not configured")
			}
			if database == "" {
				database = cfg.Mongo.Database
			}

			ctx := cmd.Context()
			client, err := sqlmongo.Connect(ctx, uri, cfg.Mongo.Timeout)
			if err != nil {
				return err
			}
			defer client.Close(ctx)

			if err := client.Ping(ctx); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "connected")

			if database != "" {
				names, err := client.ListCollections(ctx, database)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintf(out, "  %s.%s\n", database, name)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&database, "database", "d", "", "list the collections of this database")

	return cmd
}
