package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/cli/config"
	httpctrl "github.com/ubclaunchpad/rocket2-sub000/pkg/controller/http"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/service/worker"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/usecase"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var refreshInterval time.Duration
	var appCfg config.App
	var repoCfg config.Repository
	var slackCfg config.Slack
	var githubCfg config.GitHub
	var driveCfg config.Drive

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("ROCKET_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "refresh-interval",
			Usage:       "Interval of the background team refresh (0 disables the worker)",
			Value:       time.Hour,
			Sources:     cli.EnvVars("ROCKET_REFRESH_INTERVAL"),
			Destination: &refreshInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, driveCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			appConfig, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load application configuration")
			}

			if slackCfg.SigningSecret() == "" {
				return goerr.New("slack-signing-secret is required to serve webhooks")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			githubSvc, err := githubCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize GitHub service")
			}

			ucOpts := []usecase.Option{}

			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Slack service")
			}
			if slackSvc != nil {
				ucOpts = append(ucOpts, usecase.WithSlackService(slackSvc))
				logging.Default().Info("Slack service enabled")
			} else {
				logging.Default().Info("Slack bot token not configured, channel roster features will be limited")
			}

			driveSvc, err := driveCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Drive service")
			}
			if driveSvc != nil {
				ucOpts = append(ucOpts, usecase.WithDriveService(driveSvc))
				logging.Default().Info("Drive folder sync enabled")
			}

			uc := usecase.New(repo, githubSvc, appConfig.ToSpecialTeams(), ucOpts...)

			// Background reconciliation keeps the local store tracking GitHub
			var refreshWorker *worker.RefreshWorker
			if refreshInterval > 0 {
				refreshWorker = worker.NewRefreshWorker(uc.Refresh, refreshInterval)
				if err := refreshWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start refresh worker")
				}
			}

			httpOpts := []httpctrl.Options{}
			if githubCfg.WebhookSecret() != "" {
				httpOpts = append(httpOpts, httpctrl.WithGithubWebhook(githubCfg.WebhookSecret()))
				logging.Default().Info("GitHub webhook endpoint enabled")
			}

			httpHandler := httpctrl.New(uc, slackCfg.SigningSecret(), httpOpts...)
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if refreshWorker != nil {
					refreshWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
