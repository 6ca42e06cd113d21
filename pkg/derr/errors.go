// Package derr classifies the errors raised while dereplicating genomes.
// Every kind is fatal: the inputs are in memory and deterministic, so a second
// attempt without new input cannot succeed.
package derr

import (
	"errors"
	"fmt"
	"strings"
)

// MaxListedNames caps how many offending names an error carries.
const MaxListedNames = 5

type Kind int

const (
	// Configuration covers missing or incompatible parameters.
	Configuration Kind = iota
	// Consistency covers name-set mismatches between inputs.
	Consistency
	// MissingData covers an absent distance or metadata entry at the point of use.
	MissingData
	// Usage covers calls made out of order.
	Usage
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration error"
	case Consistency:
		return "consistency error"
	case MissingData:
		return "missing data"
	case Usage:
		return "usage error"
	default:
		return "unknown error"
	}
}

var (
	ErrConfiguration = errors.New(Configuration.String())
	ErrConsistency   = errors.New(Consistency.String())
	ErrMissingData   = errors.New(MissingData.String())
	ErrUsage         = errors.New(Usage.String())
)

func (k Kind) sentinel() error {
	switch k {
	case Configuration:
		return ErrConfiguration
	case Consistency:
		return ErrConsistency
	case MissingData:
		return ErrMissingData
	case Usage:
		return ErrUsage
	default:
		return nil
	}
}

// Error is a classified error. Op names the operation that failed, Names
// lists up to MaxListedNames offending genome names.
type Error struct {
	Kind  Kind
	Op    string
	Msg   string
	Names []string
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if len(e.Names) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Names, ", "))
	}
	return b.String()
}

// Is lets errors.Is match an *Error against the sentinel of its kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func newError(kind Kind, op, msg string, names []string) *Error {
	if len(names) > MaxListedNames {
		names = names[:MaxListedNames]
	}
	var listed []string
	if len(names) > 0 {
		listed = append(listed, names...)
	}
	return &Error{Kind: kind, Op: op, Msg: msg, Names: listed}
}

func Configf(op, format string, args ...any) error {
	return newError(Configuration, op, fmt.Sprintf(format, args...), nil)
}

// Inconsistent reports a name-set mismatch. Only the first MaxListedNames
// names are kept.
func Inconsistent(op, msg string, names []string) error {
	return newError(Consistency, op, msg, names)
}

func Missingf(op, format string, args ...any) error {
	return newError(MissingData, op, fmt.Sprintf(format, args...), nil)
}

// MissingNames reports absent entries for the given names.
func MissingNames(op, msg string, names []string) error {
	return newError(MissingData, op, msg, names)
}

func Usagef(op, format string, args ...any) error {
	return newError(Usage, op, fmt.Sprintf(format, args...), nil)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
