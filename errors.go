package mempool

import (
	"errors"
	"fmt"
)

var (
	ErrAllocatorExists   = errors.New("allocator already exists")
	ErrAllocatorNotFound = errors.New("allocator not found")
	ErrAllocatorClosed   = errors.New("allocator is closed")
	ErrInvalidConfig     = errors.New("invalid allocator configuration")
	ErrOutOfMemory       = errors.New("out of memory")
	ErrPointerType       = errors.New("type contains pointers")
	ErrSnapshotSchema    = errors.New("unsupported snapshot schema")
)

type AllocError struct {
	Op    string
	Name  string
	Cause error
}

func (e *AllocError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("mempool %s %s: %v", e.Op, e.Name, e.Cause)
	}
	return fmt.Sprintf("mempool %s: %v", e.Op, e.Cause)
}

func (e *AllocError) Unwrap() error {
	return e.Cause
}

func newAllocError(op, name string, cause error) *AllocError {
	return &AllocError{
		Op:    op,
		Name:  name,
		Cause: cause,
	}
}

func wrapError(op string, err error) *AllocError {
	return &AllocError{
		Op:    op,
		Cause: err,
	}
}
