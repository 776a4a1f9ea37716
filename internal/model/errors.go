package model

import (
	"errors"
	"fmt"
)

// MinContentLength is the shortest trimmed text that can be analyzed
const MinContentLength = 10

// InvalidInputError reports content that cannot be analyzed. It is terminal.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

// AdapterUnavailableError reports an external signal source that was
// unreachable or returned malformed data. Callers treat it as "no data".
type AdapterUnavailableError struct {
	Adapter string
	Err     error
}

func (e *AdapterUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Adapter, e.Err)
}

func (e *AdapterUnavailableError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed store or read. An already computed
// result stays valid.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ErrNotFound is wrapped by stores when a record does not exist
var ErrNotFound = errors.New("record not found")
