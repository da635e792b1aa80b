package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/service/github"
	"github.com/urfave/cli/v3"
)

// GitHub holds configuration for the GitHub App integration
type GitHub struct {
	appID          int
	installationID int
	privateKey     string
	org            string
	webhookSecret  string
}

// Flags returns CLI flags for GitHub App configuration
func (g *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Sources:     cli.EnvVars("ROCKET_GITHUB_APP_ID"),
			Destination: &g.appID,
		},
		&cli.IntFlag{
			Name:        "github-app-installation-id",
			Usage:       "GitHub App Installation ID",
			Sources:     cli.EnvVars("ROCKET_GITHUB_APP_INSTALLATION_ID"),
			Destination: &g.installationID,
		},
		&cli.StringFlag{
			Name:        "github-app-private-key",
			Usage:       "GitHub App Private Key (PEM string or file path)",
			Sources:     cli.EnvVars("ROCKET_GITHUB_APP_PRIVATE_KEY"),
			Destination: &g.privateKey,
		},
		&cli.StringFlag{
			Name:        "github-org",
			Usage:       "GitHub organization login",
			Sources:     cli.EnvVars("ROCKET_GITHUB_ORG"),
			Destination: &g.org,
		},
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook shared secret (webhook endpoint disabled when empty)",
			Sources:     cli.EnvVars("ROCKET_GITHUB_WEBHOOK_SECRET"),
			Destination: &g.webhookSecret,
		},
	}
}

// LogAttrs returns log attributes for the GitHub configuration (secrets hidden)
func (g *GitHub) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Int("app_id", g.appID),
		slog.Int("installation_id", g.installationID),
		slog.String("org", g.org),
		slog.Bool("webhook_secret_set", g.webhookSecret != ""),
	}
}

// IsConfigured returns true if all required GitHub App flags are set
func (g *GitHub) IsConfigured() bool {
	return g.appID != 0 && g.installationID != 0 && g.privateKey != "" && g.org != ""
}

// WebhookSecret returns the configured webhook secret
func (g *GitHub) WebhookSecret() string {
	return g.webhookSecret
}

// Configure creates a GitHub Service from the configured flags
func (g *GitHub) Configure() (github.Service, error) {
	if !g.IsConfigured() {
		return nil, goerr.New("github-app-id, github-app-installation-id, github-app-private-key and github-org are required")
	}

	svc, err := github.New(int64(g.appID), int64(g.installationID), g.privateKey, g.org)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub service")
	}

	return svc, nil
}
