package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen11/maingo/internal/client"
	"github.com/jsamuelsen11/maingo/internal/connector"
)

func newQueryCommand(g *globalFlags) *cobra.Command {
	var (
		data   string
		query  string
		jqExpr string
	)

	cmd := &cobra.Command{
		Use:   "query [ENDPOINT]",
		Short: "Send a GraphQL operation",
		Long: `Send a GraphQL operation to ENDPOINT, or to client.graphql_endpoint when
omitted. Pass the whole request body with --data, or just the document with
--query. GraphQL errors in the response are reported as a failure.`,
		Example: `  maingo query --connector graphql --query '{ viewer { login } }'
  maingo query /graphql --data @op.json --jq .data`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body any
			switch {
			case data != "" && query != "":
				return errors.New("use either --data or --query, not both")
			case query != "":
				body = connector.GraphQLRequest{Query: query}
			default:
				b, err := readBody(data, cmd.InOrStdin())
				if err != nil {
					return err
				}
				if b == nil {
					return errors.New("one of --data or --query is required")
				}
				body = b
			}

			filter, err := NewFilter(jqExpr)
			if err != nil {
				return err
			}

			var endpoint string
			if len(args) == 1 {
				endpoint = args[0]
			}

			return withApp(cmd.Context(), g, cmd.ErrOrStderr(), func(ctx context.Context, a *app) error {
				c, err := do.Invoke[*client.Client](a.injector)
				if err != nil {
					return fmt.Errorf("resolving client: %w", err)
				}

				resp, err := c.Call(ctx, connector.MethodQuery, endpoint, body)
				if err != nil {
					return err
				}
				if err := writeResponse(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), resp, filter); err != nil {
					return err
				}

				_, err = connector.DecodeGraphQL(resp, nil)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "Full JSON request body; @file reads a file, - reads stdin")
	cmd.Flags().StringVar(&query, "query", "", "GraphQL document, sent as {\"query\": ...}")
	cmd.Flags().StringVar(&jqExpr, "jq", "", "jq expression applied to the JSON response")
	return cmd
}
