package knowledge

import (
	"errors"
	"fmt"
)

// Kind is the error taxonomy from the orchestrator's error-handling design.
// It is not a Go type hierarchy — every Error carries exactly one Kind and
// wraps the underlying cause.
type Kind string

const (
	KindErrConfig    Kind = "config"
	KindErrIO        Kind = "io"
	KindErrParse     Kind = "parse"
	KindErrChunking  Kind = "chunking"
	KindErrEmbedding Kind = "embedding"
	KindErrIndex     Kind = "index"
	KindErrRetrieval Kind = "retrieval"
	KindErrTemplate  Kind = "template"
	KindErrLlm       Kind = "llm"
	KindErrCancelled Kind = "cancelled"
)

// sentinel errors usable with errors.Is, one per Kind, mirroring the
// teacher's ErrInvalidProvider/ErrInvalidDimensions family.
var (
	ErrConfig    = errors.New("config error")
	ErrIO        = errors.New("io error")
	ErrParse     = errors.New("parse error")
	ErrChunking  = errors.New("chunking error")
	ErrEmbedding = errors.New("embedding error")
	ErrIndex     = errors.New("index error")
	ErrRetrieval = errors.New("retrieval error")
	ErrTemplate  = errors.New("template error")
	ErrLlm       = errors.New("llm error")
	ErrCancelled = errors.New("operation cancelled")
)

func sentinelFor(k Kind) error {
	switch k {
	case KindErrConfig:
		return ErrConfig
	case KindErrIO:
		return ErrIO
	case KindErrParse:
		return ErrParse
	case KindErrChunking:
		return ErrChunking
	case KindErrEmbedding:
		return ErrEmbedding
	case KindErrIndex:
		return ErrIndex
	case KindErrRetrieval:
		return ErrRetrieval
	case KindErrTemplate:
		return ErrTemplate
	case KindErrLlm:
		return ErrLlm
	case KindErrCancelled:
		return ErrCancelled
	default:
		return errors.New("unknown error")
	}
}

// Error carries a stable machine-readable Kind alongside a human message and
// the wrapped cause, so that errors.Is(err, knowledge.ErrEmbedding) works
// regardless of the concrete provider that produced it.
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

func (e *Error) Unwrap() []error {
	s := sentinelFor(e.Kind)
	if e.Cause != nil {
		return []error{s, e.Cause}
	}
	return []error{s}
}

// NewError builds an Error, wrapping cause (which may be nil).
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// ErrorCode renders a Kind as the stable error_code used in structured
// output, e.g. {"success": false, "error": "...", "error_code": "embedding"}.
func (k Kind) ErrorCode() string { return string(k) }
