package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/cli/config"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var appCfg config.App

	return &cli.Command{
		Name:  "validate",
		Usage: "Validate the application configuration file",
		Flags: appCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if appCfg.Path() == "" {
				return goerr.New("config file path is required (use --config)")
			}

			cfg, err := config.LoadAppConfiguration(appCfg.Path())
			if err != nil {
				return err
			}

			logging.Default().Info("configuration is valid",
				"path", appCfg.Path(),
				"leads_team", cfg.SpecialTeams.Leads,
				"admins_team", cfg.SpecialTeams.Admins,
				"all_team", cfg.SpecialTeams.All,
			)
			return nil
		},
	}
}
