package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/ubclaunchpad/rocket2-sub000/pkg/domain/model/config"
	"github.com/urfave/cli/v3"
)

// AppConfig represents the application configuration file
type AppConfig struct {
	SpecialTeams SpecialTeams `toml:"special_teams"`
}

// SpecialTeams names the teams that carry permission semantics
type SpecialTeams struct {
	Leads  string `toml:"leads"`
	Admins string `toml:"admins"`
	All    string `toml:"all"`
}

// DefaultAppConfig returns the configuration used when no config file is
// given
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		SpecialTeams: SpecialTeams{
			Leads:  "leads",
			Admins: "admins",
			All:    "all",
		},
	}
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if a.SpecialTeams.Leads == "" {
		return goerr.Wrap(ErrInvalidConfig, "special_teams.leads is required")
	}
	if a.SpecialTeams.Admins == "" {
		return goerr.Wrap(ErrInvalidConfig, "special_teams.admins is required")
	}
	if a.SpecialTeams.Leads == a.SpecialTeams.Admins {
		return goerr.Wrap(ErrInvalidConfig, "special_teams.leads and special_teams.admins must differ",
			goerr.V("name", a.SpecialTeams.Leads))
	}
	if a.SpecialTeams.All != "" &&
		(a.SpecialTeams.All == a.SpecialTeams.Leads || a.SpecialTeams.All == a.SpecialTeams.Admins) {
		return goerr.Wrap(ErrInvalidConfig, "special_teams.all must differ from leads and admins",
			goerr.V("name", a.SpecialTeams.All))
	}
	return nil
}

// ToSpecialTeams converts the configuration to the domain representation
func (a *AppConfig) ToSpecialTeams() domainConfig.SpecialTeams {
	return domainConfig.SpecialTeams{
		Leads:  a.SpecialTeams.Leads,
		Admins: a.SpecialTeams.Admins,
		All:    a.SpecialTeams.All,
	}
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// App holds the CLI flag pointing at the application configuration file
type App struct {
	configPath string
}

// Flags returns CLI flags for application configuration
func (a *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the application config file (TOML); defaults apply when empty",
			Sources:     cli.EnvVars("ROCKET_CONFIG"),
			Destination: &a.configPath,
		},
	}
}

// Path returns the configured config file path
func (a *App) Path() string {
	return a.configPath
}

// Configure loads the application configuration, falling back to defaults
// when no file path is given
func (a *App) Configure() (*AppConfig, error) {
	if a.configPath == "" {
		return DefaultAppConfig(), nil
	}
	return LoadAppConfiguration(a.configPath)
}
