package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for the Slack integration
type Slack struct {
	botToken      string
	signingSecret string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack bot token (xoxb-...)",
			Sources:     cli.EnvVars("ROCKET_SLACK_BOT_TOKEN"),
			Destination: &s.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack signing secret for webhook verification",
			Sources:     cli.EnvVars("ROCKET_SLACK_SIGNING_SECRET"),
			Destination: &s.signingSecret,
		},
	}
}

// LogAttrs returns log attributes for the Slack configuration (secrets hidden)
func (s *Slack) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Bool("bot_token_set", s.botToken != ""),
		slog.Bool("signing_secret_set", s.signingSecret != ""),
	}
}

// BotToken returns the configured bot token
func (s *Slack) BotToken() string {
	return s.botToken
}

// SigningSecret returns the configured signing secret
func (s *Slack) SigningSecret() string {
	return s.signingSecret
}

// IsConfigured returns true if both the bot token and the signing secret
// are set
func (s *Slack) IsConfigured() bool {
	return s.botToken != "" && s.signingSecret != ""
}

// Configure creates a Slack service from the configured flags. Returns nil
// when no bot token is set (Slack channel features will be disabled).
func (s *Slack) Configure() (slack.Service, error) {
	if s.botToken == "" {
		return nil, nil
	}

	svc, err := slack.New(s.botToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Slack service")
	}
	return svc, nil
}
