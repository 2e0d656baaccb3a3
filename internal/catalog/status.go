package catalog

import (
	"errors"
	"fmt"
)

// BackendStatus is the outcome of opening a catalog.
type BackendStatus int

const (
	StatusOk BackendStatus = iota
	StatusBadVersion
	StatusOpenFailed
	StatusGeneralError
	StatusNotInitialized
)

func (s BackendStatus) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusBadVersion:
		return "bad version"
	case StatusOpenFailed:
		return "open failed"
	case StatusNotInitialized:
		return "not initialized"
	default:
		return "general error"
	}
}

// StatusError carries a non-Ok BackendStatus together with its cause.
type StatusError struct {
	Status BackendStatus
	Err    error
}

func NewStatusError(status BackendStatus, err error) *StatusError {
	return &StatusError{Status: status, Err: err}
}

func (e *StatusError) Error() string {
	if e.Err == nil {
		return e.Status.String()
	}
	return fmt.Sprintf("%s: %v", e.Status, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// StatusOf maps an error returned by Backend.Init to its status. A nil error
// is StatusOk and errors without a StatusError in their chain are
// StatusGeneralError.
func StatusOf(err error) BackendStatus {
	if err == nil {
		return StatusOk
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return StatusGeneralError
}

// ProjectInfo names the catalog a backend should open.
type ProjectInfo struct {
	Name    string
	Path    string
	Backend string
}
