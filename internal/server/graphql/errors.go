package graphql

import (
	"errors"

	"github.com/mkarpis/accountd/internal/common"
)

// Stable error codes surfaced in the GraphQL extensions block, so clients
// can branch on failure kind without matching message strings.
const (
	codeInvalidInput = "INVALID_INPUT"
	codeConflict     = "CONFLICT"
	codeNotFound     = "NOT_FOUND"
	codeUnauthorized = "UNAUTHORIZED"
	codeInternal     = "INTERNAL"
)

// apiError carries a sentinel-derived code into the GraphQL error response.
type apiError struct {
	code string
	err  error
}

func (e *apiError) Error() string { return e.err.Error() }

func (e *apiError) Unwrap() error { return e.err }

// Extensions implements the graph-gophers extension hook; the code ends up
// under errors[i].extensions.code on the wire.
func (e *apiError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

// toAPIError maps a service error onto its wire code. Store failures and
// anything unrecognized surface as INTERNAL.
func toAPIError(err error) error {
	switch {
	case errors.Is(err, common.ErrorInvalidInput):
		return &apiError{code: codeInvalidInput, err: err}
	case errors.Is(err, common.ErrorConflict):
		return &apiError{code: codeConflict, err: err}
	case errors.Is(err, common.ErrorNotFound):
		return &apiError{code: codeNotFound, err: err}
	case errors.Is(err, common.ErrorUnauthorized):
		return &apiError{code: codeUnauthorized, err: err}
	default:
		return &apiError{code: codeInternal, err: err}
	}
}
