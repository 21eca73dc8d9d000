package main

import "github.com/pkg/errors"

// Error kinds reported by the front end. Callers test for them with
// errors.Is; the messages carry the offending name as context.
var (
	ErrLookup                  = errors.New("lookup error")
	ErrUndefinedName           = errors.New("undefined name")
	ErrUndefinedFunction       = errors.New("undefined function")
	ErrArityMismatch           = errors.New("arity mismatch")
	ErrUnsupportedOperator     = errors.New("unsupported operator")
	ErrInvalidAssignmentTarget = errors.New("invalid assignment target")
	ErrDuplicateDefinition     = errors.New("duplicate definition")
	ErrMalformedIR             = errors.New("malformed IR")
	ErrRuntime                 = errors.New("runtime error")
)
