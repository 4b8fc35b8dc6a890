package tools

import (
	"errors"
	"fmt"

	"github.com/rickchristie/travelkit"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// CallResult is the value every tool call produces. It is never nil and a failed call is
// still a CallResult, with Status "error" and a readable Message.
type CallResult struct {
	Status    string              `json:"status" yaml:"status"`
	Message   string              `json:"message,omitempty" yaml:"message,omitempty"`
	BookingID string              `json:"booking_id,omitempty" yaml:"booking_id,omitempty"`
	Columns   []string            `json:"columns,omitempty" yaml:"columns,omitempty"`
	Rows      [][]string          `json:"rows,omitempty" yaml:"rows,omitempty"`
	Details   any                 `json:"details,omitempty" yaml:"details,omitempty"`
	Kind      travelkit.ErrorKind `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Field     string              `json:"field,omitempty" yaml:"field,omitempty"`
	Code      int                 `json:"status_code,omitempty" yaml:"status_code,omitempty"`

	err *travelkit.Error
}

// OK reports whether the call succeeded.
func (r *CallResult) OK() bool {
	return r != nil && r.Status == StatusSuccess
}

// Err returns the failure of the call, nil on success.
func (r *CallResult) Err() *travelkit.Error {
	if r == nil {
		return nil
	}
	return r.err
}

// Result converts the call into a tagged result.
func (r *CallResult) Result() travelkit.Result[*CallResult] {
	if r.OK() {
		return travelkit.Ok(r)
	}
	if r != nil && r.err != nil {
		return travelkit.Err[*CallResult](r.err)
	}
	return travelkit.Err[*CallResult](errors.New("tool call failed"))
}

// Failure builds the error CallResult of err.
func Failure(err error) *CallResult {
	te := travelkit.AsError(err)
	if te == nil {
		te = travelkit.SystemError(errors.New("unknown failure"))
	}
	res := &CallResult{
		Status:  StatusError,
		Message: te.Error(),
		Kind:    te.Kind,
		Field:   te.Field,
		Code:    te.StatusCode,
		err:     te,
	}
	if len(te.Details) > 0 {
		res.Details = te.Details
	}
	return res
}

// SearchTable builds the success CallResult of a search.
func SearchTable(r *travelkit.SearchResult) *CallResult {
	return &CallResult{
		Status:  StatusSuccess,
		Message: fmt.Sprintf("Found %s", r),
		Columns: r.Columns(),
		Rows:    r.Rows(),
	}
}

// present turns an arbitrary tool output into a CallResult.
func present(output any) *CallResult {
	switch out := output.(type) {
	case *CallResult:
		if out == nil {
			return Failure(errors.New("tool returned a nil result"))
		}
		return out
	case *travelkit.SearchResult:
		if out == nil {
			return Failure(errors.New("tool returned a nil result"))
		}
		return SearchTable(out)
	case string:
		return &CallResult{Status: StatusSuccess, Message: out}
	default:
		return &CallResult{Status: StatusSuccess, Details: out}
	}
}
