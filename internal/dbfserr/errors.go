// Package dbfserr defines the structured error taxonomy shared by every layer
// of the distributed BFS system: shard graphs, shard proxies, and the
// coordinator. Callers distinguish error kinds with errors.As, never by
// matching message text.
package dbfserr

import "fmt"

// Kind classifies an Error into one of the taxonomy members the coordinator
// and shard services are specified to surface.
type Kind int

const (
	// KindConfiguration covers invalid topology parameters: a shard count
	// that is not a perfect square, a farnodes request exceeding the
	// available far-node pool, or a shard count above the configured
	// maximum.
	KindConfiguration Kind = iota
	// KindNotReady covers operations requiring a fleet that has not been
	// constructed yet, or a role mismatch (e.g. DBFS requested while the
	// coordinator is still Undecided or in the wrong role).
	KindNotReady
	// KindShardRequest covers a proxy call that failed at the transport
	// level, or a shard response that could not be parsed.
	KindShardRequest
	// KindNotFound covers an unknown shard id, node id, or attribute name.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "ConfigurationError"
	case KindNotReady:
		return "NotReadyError"
	case KindShardRequest:
		return "ShardRequestError"
	case KindNotFound:
		return "NotFoundError"
	default:
		return "UnknownError"
	}
}

// Error is the single structured error type every package in this module
// returns for user-facing failures. It wraps an optional cause so
// errors.Unwrap still reaches the underlying transport or parse error,
// while HTTP handlers only need to branch on Kind.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Configuration builds a KindConfiguration error.
func Configuration(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// NotReady builds a KindNotReady error.
func NotReady(format string, args ...any) *Error {
	return &Error{Kind: KindNotReady, Message: fmt.Sprintf(format, args...)}
}

// ShardRequest builds a KindShardRequest error wrapping the transport or
// decode failure that caused it.
func ShardRequest(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindShardRequest, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// HTTPStatus maps a Kind to the status code the HTTP surfaces (§7) use.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindConfiguration:
		return 400
	case KindNotReady:
		return 409
	case KindNotFound:
		return 404
	case KindShardRequest:
		return 502
	default:
		return 500
	}
}
