package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/cli/config"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/usecase"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdRefresh() *cli.Command {
	var appCfg config.App
	var repoCfg config.Repository
	var githubCfg config.GitHub
	var driveCfg config.Drive

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, driveCfg.Flags()...)

	return &cli.Command{
		Name:    "refresh",
		Aliases: []string{"r"},
		Usage:   "Run one team reconciliation against GitHub and exit",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			appConfig, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load application configuration")
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
			driveSvc, err := driveCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Drive service")
			}
			if driveSvc != nil {
				ucOpts = append(ucOpts, usecase.WithDriveService(driveSvc))
			}

			uc := usecase.New(repo, githubSvc, appConfig.ToSpecialTeams(), ucOpts...)

			summary, err := uc.Refresh.Run(ctx)
			if err != nil {
				return goerr.Wrap(err, "refresh failed")
			}

			logging.Default().Info("refresh finished",
				"added", summary.Added,
				"deleted", summary.Deleted,
				"changed", summary.Changed,
			)
			return nil
		},
	}
}
