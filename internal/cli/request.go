package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen11/maingo/internal/client"
	"github.com/jsamuelsen11/maingo/internal/middleware"
	"github.com/jsamuelsen11/maingo/internal/platform/fanout"
	"github.com/jsamuelsen11/maingo/internal/request"
)

type requestFlags struct {
	params      []string
	headers     []string
	data        string
	jq          string
	refire      bool
	timeout     time.Duration
	repeat      int
	concurrency int
}

func newRequestCommand(g *globalFlags) *cobra.Command {
	f := &requestFlags{}

	cmd := &cobra.Command{
		Use:   "request METHOD ENDPOINT",
		Short: "Send one request through the configured client",
		Example: `  maingo request GET /resource --param ids=1 --param ids=2
  maingo request POST /items --data '{"name":"x"}' --header X-Trace:abc
  maingo request GET /me --jq .login --refire
  maingo request GET /me --repeat 20 --concurrency 5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := requestOptions(f.params, f.headers)
			if err != nil {
				return err
			}
			body, err := readBody(f.data, cmd.InOrStdin())
			if err != nil {
				return err
			}
			filter, err := NewFilter(f.jq)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), g, cmd.ErrOrStderr(), func(ctx context.Context, a *app) error {
				c, err := do.Invoke[*client.Client](a.injector)
				if err != nil {
					return fmt.Errorf("resolving client: %w", err)
				}
				if f.timeout > 0 {
					c.UseMiddleware(middleware.Timeout(f.timeout), middleware.Named("timeout"))
				}

				send := func(ctx context.Context, _ int) (*request.Response, error) {
					resp, err := c.Call(ctx, args[0], args[1], body, opts...)
					if err != nil {
						return nil, err
					}
					if f.refire {
						if resp, err = resp.Refire(ctx); err != nil {
							return nil, fmt.Errorf("refire: %w", err)
						}
					}
					return resp, nil
				}

				if f.repeat <= 1 {
					resp, err := send(ctx, 0)
					if err != nil {
						return err
					}
					return writeResponse(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), resp, filter)
				}

				var errs []error
				for i, res := range fanout.Run(ctx, f.concurrency, make([]int, f.repeat), send) {
					if res.Err == nil {
						res.Err = writeResponse(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), res.Value, filter)
					}
					if res.Err != nil {
						errs = append(errs, fmt.Errorf("request %d: %w", i+1, res.Err))
					}
				}
				return errors.Join(errs...)
			})
		},
	}

	cmd.Flags().StringArrayVar(&f.params, "param", nil, "Search param key=value; repeat a key to send an array")
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "Request header name:value")
	cmd.Flags().StringVarP(&f.data, "data", "d", "", "JSON body; @file reads a file, - reads stdin")
	cmd.Flags().StringVar(&f.jq, "jq", "", "jq expression applied to the JSON response")
	cmd.Flags().BoolVar(&f.refire, "refire", false, "Replay the request once and print the second response")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Per-request deadline (0 = none)")
	cmd.Flags().IntVar(&f.repeat, "repeat", 1, "Send the request this many times")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 1, "Maximum in-flight requests when repeating")
	return cmd
}

// requestOptions turns --param and --header values into request options.
// Repeated param keys become arrays, in flag order.
func requestOptions(params, headers []string) ([]request.Option, error) {
	var opts []request.Option

	if len(params) > 0 {
		values := make(map[string][]string)
		var order []string
		for _, p := range params {
			key, value, ok := strings.Cut(p, "=")
			if !ok || key == "" {
				return nil, fmt.Errorf("--param %q: want key=value", p)
			}
			if _, seen := values[key]; !seen {
				order = append(order, key)
			}
			values[key] = append(values[key], value)
		}

		out := make(request.Params, len(values))
		for _, key := range order {
			if vs := values[key]; len(vs) == 1 {
				out[key] = vs[0]
			} else {
				out[key] = vs
			}
		}
		opts = append(opts, request.WithParams(out))
	}

	for _, h := range headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("--header %q: want name:value", h)
		}
		opts = append(opts, request.WithHeader(strings.TrimSpace(name), strings.TrimSpace(value)))
	}
	return opts, nil
}

// readBody resolves --data. The result is nil when no body was given.
func readBody(data string, stdin io.Reader) (any, error) {
	var raw []byte
	switch {
	case data == "":
		return nil, nil
	case data == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading body from stdin: %w", err)
		}
		raw = b
	case strings.HasPrefix(data, "@"):
		b, err := os.ReadFile(data[1:])
		if err != nil {
			return nil, fmt.Errorf("reading body file: %w", err)
		}
		raw = b
	default:
		raw = []byte(data)
	}

	if !json.Valid(raw) {
		return nil, errors.New("--data is not valid JSON")
	}
	return json.RawMessage(raw), nil
}
