package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeni-ai/jeni/pkg/server"
	"github.com/jeni-ai/jeni/pkg/usecase/chat"
	"github.com/jeni-ai/jeni/pkg/usecase/pipeline"
	"github.com/jeni-ai/jeni/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var (
		cfg            config
		addr           string
		sessionTimeout time.Duration
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address",
			Value:       ":8080",
			Sources:     cli.EnvVars("JENI_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "session-timeout",
			Usage:       "Idle time before an interactive session is dropped",
			Value:       30 * time.Minute,
			Sources:     cli.EnvVars("JENI_SESSION_TIMEOUT"),
			Destination: &sessionTimeout,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the invocation and batch event endpoints",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			storage, err := cfg.newStorage(ctx)
			if err != nil {
				return err
			}

			var sessions *chat.Manager
			metrics := server.NewMetrics("jeni", func() int { return sessions.ActiveCount() })
			sessions = chat.NewManager(gemini, sessionTimeout, chat.WithMetrics(metrics))

			driver := pipeline.NewDriver(
				pipeline.NewIngestor(storage),
				pipeline.NewWriter(repo),
				pipeline.WithMetrics(metrics),
			)

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sessions.StartJanitor(ctx, time.Minute)

			srv := &http.Server{
				Addr:              addr,
				Handler:           server.New(driver, sessions, metrics).Router(),
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return ctx },
			}

			errCh := make(chan error, 1)
			go func() {
				logging.From(ctx).Info("listening", "addr", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shut down server")
				}
				return nil
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return goerr.Wrap(err, "server failed")
			}
		},
	}
}
