package service

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by this package either is one of these or
// unwraps to one, except for unexpected storage failures.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidState    = errors.New("invalid state")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
)

// Error carries a user-facing message and the kind it belongs to.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func newErr(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error    { return newErr(ErrNotFound, format, args...) }
func invalidState(format string, args ...any) error { return newErr(ErrInvalidState, format, args...) }
func invalidArg(format string, args ...any) error   { return newErr(ErrInvalidArgument, format, args...) }

type Shortfall struct {
	ProductID   uint   `json:"productId"`
	ProductName string `json:"productName"`
	Available   int    `json:"available"`
	Requested   int    `json:"requested"`
}

// InsufficientStockError lists every cart line that could not be covered.
type InsufficientStockError struct {
	Shortfalls []Shortfall
}

func (e *InsufficientStockError) Error() string {
	var b strings.Builder
	b.WriteString("insufficient stock for: ")
	for i, s := range e.Shortfalls {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s (available=%d, requested=%d)", s.ProductName, s.Available, s.Requested)
	}
	return b.String()
}

func (e *InsufficientStockError) Unwrap() error { return ErrInvalidState }
