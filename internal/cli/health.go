package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen11/maingo/internal/platform/health"
)

func newHealthCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Report circuit breaker state for the configured upstream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), g, cmd.ErrOrStderr(), func(ctx context.Context, a *app) error {
				registry, err := do.Invoke[*health.Registry](a.injector)
				if err != nil {
					return fmt.Errorf("resolving health registry: %w", err)
				}

				results := registry.CheckAll(ctx)
				for _, name := range health.Names(results) {
					status := "ok"
					if err := results[name]; err != nil {
						status = err.Error()
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, status)
				}
				if !health.Healthy(results) {
					return errors.New("unhealthy")
				}
				return nil
			})
		},
	}
}
