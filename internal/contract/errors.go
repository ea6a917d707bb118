package contract

import (
	"context"
	"errors"
	"fmt"
)

// HostingErrorKind classifies a hosting failure for user-facing messages.
type HostingErrorKind string

// All hosting error kinds.
const (
	NotFoundError        HostingErrorKind = "not_found"
	ForbiddenError       HostingErrorKind = "forbidden"
	RateLimitedError     HostingErrorKind = "rate_limited"
	UnauthenticatedError HostingErrorKind = "unauthenticated"
	NetworkError         HostingErrorKind = "network"
	UnknownError         HostingErrorKind = "unknown"
)

// HostingError is returned by hosting clients.
type HostingError struct {
	Kind HostingErrorKind
	Op   string // e.g. "fetch repository"
	Err  error
}

func (e *HostingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *HostingError) Unwrap() error { return e.Err }

// NewHostingError wraps err with a kind and operation name.
func NewHostingError(kind HostingErrorKind, op string, err error) *HostingError {
	return &HostingError{Kind: kind, Op: op, Err: err}
}

// IsHostingErrorKind reports whether err wraps a HostingError of the given kind.
func IsHostingErrorKind(err error, kind HostingErrorKind) bool {
	var he *HostingError
	return errors.As(err, &he) && he.Kind == kind
}

// DescribeHostingError turns a hosting failure into a message a user can act on.
func DescribeHostingError(err error) string {
	var he *HostingError
	if !errors.As(err, &he) {
		return err.Error()
	}
	switch he.Kind {
	case NotFoundError:
		return "repository not found; check the owner and name"
	case ForbiddenError:
		return "access denied; the repository may be private or your token lacks permission"
	case RateLimitedError:
		return "API rate limit exceeded; wait a while or set GITHUB_TOKEN for a higher limit"
	case UnauthenticatedError:
		return "authentication failed; check the configured token"
	case NetworkError:
		return "network error while contacting the hosting service; check your connection"
	default:
		return he.Error()
	}
}

// ProviderError is returned by semantic providers.
type ProviderError struct {
	Provider   string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ProviderErrorFromStatus classifies an HTTP status code. Rate limiting and
// server errors are retryable; any other 4xx is not.
func ProviderErrorFromStatus(provider string, status int, err error) *ProviderError {
	retryable := status == 429 || status >= 500 || status == 0
	return &ProviderError{Provider: provider, StatusCode: status, Retryable: retryable, Err: err}
}

// IsRetryable reports whether a provider call may succeed when repeated.
// Context cancellation is never retryable; unclassified errors are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return true
}
