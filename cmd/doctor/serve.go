package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"voice-doctor/internal/infra/httpapi"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP consultation server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			a, err := buildApp(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a.store.StartJanitor(ctx, cfg.Artifacts.SweepInterval)

			server := httpapi.NewServer(httpapi.Config{
				Addr:           cfg.Server.Addr,
				AuthToken:      cfg.Server.AuthToken,
				MaxUploadBytes: cfg.Server.MaxUploadMB * 1024 * 1024,
				RateLimit:      cfg.Server.RateLimit,
				TrustedProxies: cfg.Server.TrustedProxies,
			}, a.doctor, a.store, logger)

			if err := server.Start(ctx); err != nil {
				return err
			}

			logger.Info("starting voice doctor",
				"addr", cfg.Server.Addr,
				"vision_backend", cfg.Vision.Backend,
				"speech_backend", cfg.Speech.Backend,
			)

			<-ctx.Done()
			logger.Info("shutting down")
			return server.Stop()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
