package connector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jsamuelsen11/maingo/internal/platform/config"
	"github.com/jsamuelsen11/maingo/internal/request"
)

// MethodQuery is the dispatch table key for GraphQL.Query.
const MethodQuery = "QUERY"

// GraphQLRequest is the conventional GraphQL POST body.
type GraphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// GraphQLError is one entry of a GraphQL "errors" array.
type GraphQLError struct {
	Message string         `json:"message"`
	Path    []any          `json:"path,omitempty"`
	Extras  map[string]any `json:"extensions,omitempty"`
}

// GraphQLResponse is the conventional GraphQL response envelope.
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// ErrGraphQL is returned by DecodeGraphQL when the envelope carries errors.
var ErrGraphQL = errors.New("graphql errors")

// DecodeGraphQL decodes resp as a GraphQL envelope and, when data is non-nil,
// unmarshals the data member into it. A non-empty errors array is reported
// as an error wrapping ErrGraphQL; the envelope is still returned.
func DecodeGraphQL(resp *request.Response, data any) (*GraphQLResponse, error) {
	var env GraphQLResponse
	if err := resp.JSON(&env); err != nil {
		return nil, err
	}

	if data != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, data); err != nil {
			return &env, fmt.Errorf("decoding graphql data: %w", err)
		}
	}

	if len(env.Errors) > 0 {
		msgs := make([]string, len(env.Errors))
		for i, e := range env.Errors {
			msgs[i] = e.Message
		}
		return &env, fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(msgs, "; "))
	}
	return &env, nil
}

// GraphQL is a connector that POSTs every operation to one endpoint.
type GraphQL struct {
	*Base
	endpoint string
}

// NewGraphQL returns a GraphQL connector. cfg.GraphQLEndpoint defaults to
// the hostname root.
func NewGraphQL(cfg config.ClientConfig, transport Transport, opts ...Option) (*GraphQL, error) {
	base, err := NewBase(cfg, transport, opts...)
	if err != nil {
		return nil, err
	}
	return &GraphQL{Base: base, endpoint: cfg.GraphQLEndpoint}, nil
}

// Endpoint returns the configured GraphQL endpoint.
func (c *GraphQL) Endpoint() string { return c.endpoint }

// Query POSTs body to the GraphQL endpoint. body is usually a GraphQLRequest
// but any JSON-encodable value is accepted.
func (c *GraphQL) Query(ctx context.Context, body any, opts ...request.Option) (*request.Response, error) {
	return c.query(ctx, c.endpoint, body, opts)
}

func (c *GraphQL) query(ctx context.Context, endpoint string, body any, opts []request.Option) (*request.Response, error) {
	opts = append([]request.Option{request.WithBody(body)}, opts...)
	return c.Request(ctx, request.New(http.MethodPost, endpoint, opts...))
}

// Methods returns the GraphQL dispatch table. A non-empty endpoint passed to
// the QUERY entry overrides the configured one for that call.
func (c *GraphQL) Methods() map[string]Call {
	return map[string]Call{
		MethodQuery: func(ctx context.Context, endpoint string, body any, opts ...request.Option) (*request.Response, error) {
			if endpoint == "" {
				endpoint = c.endpoint
			}
			return c.query(ctx, endpoint, body, opts)
		},
	}
}
