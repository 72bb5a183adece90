// Package toolprovider declares the injected tool-registry interface §6.3
// names: the core treats a provider as opaque JSON-in, JSON-out, and only
// consults its schema's effects list during resolution.
package toolprovider

import "fmt"

// ErrorKind enumerates §6.3's ToolError variants.
type ErrorKind string

const (
	InvalidArgs         ErrorKind = "invalid_args"
	AuthError           ErrorKind = "auth_error"
	RateLimit           ErrorKind = "rate_limit"
	ModelNotFound       ErrorKind = "model_not_found"
	ProviderUnavailable ErrorKind = "provider_unavailable"
	NotFound            ErrorKind = "not_found"
	ExecutionFailed     ErrorKind = "execution_failed"
)

// Error is the error a Provider's Call returns on failure.
type Error struct {
	Kind         ErrorKind
	Message      string
	RetryAfterMs *int64 // only meaningful for RateLimit
}

func (e *Error) Error() string {
	if e.Kind == RateLimit && e.RetryAfterMs != nil {
		return fmt.Sprintf("%s: %s (retry after %dms)", e.Kind, e.Message, *e.RetryAfterMs)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Schema describes a provider's call contract and the resolver-visible
// effects performed by invoking it.
type Schema struct {
	InputSchema  string
	OutputSchema string
	Effects      []string
}

// Provider is one tool the core can delegate a ToolCall instruction to.
// Implementations are expected to be safe for concurrent use by multiple
// VM instances, since the module (and therefore the provider registry) may
// be shared by reference across VMs (§5).
type Provider interface {
	Name() string
	Version() string
	Schema() Schema
	Capabilities() []string
	Call(inputJSON []byte) ([]byte, error)
}

// Registry resolves a cell's `use tool` alias to its bound Provider. The
// VM consults it once per ToolCall instruction; it is otherwise read-only
// during execution, matching §5's "module is read-only during execution"
// contract extended to the provider set.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry returns an empty registry; callers Register providers by the
// tool ID a `use tool` declaration names.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register binds a provider to a tool ID, overwriting any prior binding.
func (r *Registry) Register(toolID string, p Provider) {
	r.providers[toolID] = p
}

// Lookup resolves a tool ID to its bound provider.
func (r *Registry) Lookup(toolID string) (Provider, bool) {
	p, ok := r.providers[toolID]
	return p, ok
}
