package connector

// Connector is the surface the client facade needs from REST and GraphQL.
type Connector interface {
	// Core returns the shared Base.
	Core() *Base
	// Methods returns the dispatch table keyed by upper-case verb.
	Methods() map[string]Call
}

// Core returns b. REST and GraphQL inherit it through embedding.
func (b *Base) Core() *Base { return b }

var (
	_ Connector = (*REST)(nil)
	_ Connector = (*GraphQL)(nil)
)
