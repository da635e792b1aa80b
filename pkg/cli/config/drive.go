package config

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/service/drive"
	"github.com/urfave/cli/v3"
)

// Drive holds CLI flags for the Google Drive integration
type Drive struct {
	credentialsPath string
}

// Flags returns CLI flags for Drive configuration
func (d *Drive) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "drive-credentials",
			Usage:       "Path to a service account credentials JSON for Drive folder sync (disabled when empty)",
			Sources:     cli.EnvVars("ROCKET_DRIVE_CREDENTIALS"),
			Destination: &d.credentialsPath,
		},
	}
}

// IsConfigured returns true if a credentials path is set
func (d *Drive) IsConfigured() bool {
	return d.credentialsPath != ""
}

// Configure creates a Drive service from the configured credentials.
// Returns nil when no credentials are set (folder sync will be disabled).
func (d *Drive) Configure(ctx context.Context) (drive.Service, error) {
	if !d.IsConfigured() {
		return nil, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(d.credentialsPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read drive credentials", goerr.V("path", d.credentialsPath))
	}

	svc, err := drive.New(ctx, data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Drive service")
	}
	return svc, nil
}
