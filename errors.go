package kvcache

import (
	"fmt"

	"github.com/unkn0wn-root/kvcache/store"
)

// ErrNotSupported reports a capability gap of the backend (e.g. key
// enumeration). Re-exported so callers matching with errors.Is need not
// import the store package.
var ErrNotSupported = store.ErrNotSupported

// OpError wraps a backend failure with the operation and key it happened on,
// so callers can tell "no data" from "no connection".
type OpError struct {
	Op  string
	Key string
	Err error
}

func (e *OpError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("kvcache: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("kvcache: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// opErr wraps err unless it is nil.
func opErr(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Key: key, Err: err}
}
