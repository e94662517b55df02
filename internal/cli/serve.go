package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ErikMLC/sqlmongo/pkg/api"
	"github.com/ErikMLC/sqlmongo/pkg/config"
	"github.com/ErikMLC/sqlmongo/pkg/notify"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP translation API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := rootOpts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if listen != "" {
				cfg.Server.ListenAddr = listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address, overrides server.listen_addr")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	notifier, err := buildNotifier(cfg.Notify)
	if err != nil {
		return err
	}

	srv := api.NewServer(api.Options{
		Server:     cfg.Server,
		Translator: serveTranslatorOptions(cfg, logger),
		Mongo:      cfg.Mongo,
		Notifier:   notifier,
		Logger:     logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildNotifier returns the sinks named in cfg, or a no-op
func buildNotifier(cfg config.NotifyConfig) (notify.Notifier, error) {
	var sinks notify.Multi
	if cfg.RedisAddr != "" {
		sinks = append(sinks, notify.NewRedisNotifier(cfg.RedisAddr, cfg.Stream))
	}
	if cfg.FileDir != "" {
		fn, err := notify.NewFileNotifier(cfg.FileDir)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, fn)
	}

	switch len(sinks) {
	case 0:
		return notify.Nop{}, nil
	case 1:
		return sinks[0], nil
	}
	return sinks, nil
}
