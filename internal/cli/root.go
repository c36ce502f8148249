// Package cli implements the maingo command line: one-off requests and
// GraphQL queries sent through a client built from the layered
// configuration.
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
)

const (
	profileEnv     = "MAINGO_PROFILE"
	defaultProfile = "local"
)

// errUpstream marks a completed exchange whose status was not 2xx.
var errUpstream = errors.New("upstream returned an error status")

type globalFlags struct {
	profile   string
	configDir string
	hostname  string
	connector string
	verbose   bool
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "maingo",
		Short: "Send requests through a configurable API client",
		Long: `maingo sends REST requests and GraphQL queries through the client
pipeline: configured headers, auth (none, basic, bearer or oauth2), request
and response middleware, circuit breaker and rate limiting.

Configuration is read from {config-dir}/base.yaml, then {config-dir}/{profile}.yaml,
then MAINGO_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	profile := os.Getenv(profileEnv)
	if profile == "" {
		profile = defaultProfile
	}

	cmd.PersistentFlags().StringVarP(&g.profile, "profile", "p", profile, "Config profile (env "+profileEnv+")")
	cmd.PersistentFlags().StringVar(&g.configDir, "config-dir", "configs", "Directory holding the config YAML files")
	cmd.PersistentFlags().StringVar(&g.hostname, "hostname", "", "Override client.hostname")
	cmd.PersistentFlags().StringVar(&g.connector, "connector", "", "Override client.connector (rest or graphql)")
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log at debug level")

	cmd.AddCommand(
		newRequestCommand(g),
		newQueryCommand(g),
		newHealthCommand(g),
	)
	return cmd
}

// withApp builds the app for one command, runs fn, and flushes telemetry.
// Logs go to logOut so stdout carries only response bodies.
func withApp(ctx context.Context, g *globalFlags, logOut io.Writer, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(ctx, g, logOut)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
