// Package errors provides examples of structured error handling in respawn.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"io"

	"github.com/ajitpratap0/respawn/pkg/errors"
)

// Example demonstrates basic error creation with details.
func Example() {
	err := errors.New(errors.ErrorTypeConflict, "pool already exists").
		WithDetail("pool", "Enemy").
		WithDetail("size", 5)

	fmt.Println(err.Error())

	// Output:
	// conflict: pool already exists
}

// ExampleWrap shows how to wrap existing errors with context.
func ExampleWrap() {
	originalErr := io.ErrUnexpectedEOF

	err := errors.Wrap(originalErr, errors.ErrorTypeConfig, "failed to read pool config").
		WithDetail("file", "respawn.yaml")

	if errors.IsType(err, errors.ErrorTypeConfig) {
		fmt.Println("This is a config error")
	}

	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		fmt.Println("Original error was unexpected EOF")
	}

	// Output:
	// This is a config error
	// Original error was unexpected EOF
}

// ExampleError_Is shows matching a structured error against a sentinel.
func ExampleError_Is() {
	err := errors.New(errors.ErrorTypeNotFound, "pool not found").WithDetail("pool", "Boss")

	fmt.Println(stderrors.Is(err, errors.ErrUnknownPool))
	fmt.Println(stderrors.Is(err, errors.ErrDuplicatePool))

	// Same category, different error.
	size := errors.New(errors.ErrorTypeConfig, "pool size must be positive")
	fmt.Println(stderrors.Is(size, errors.ErrInvalidTemplate))
	fmt.Println(stderrors.Is(errors.New(errors.ErrorTypeValidation, "spawn point is nil"), errors.ErrManualPolicy))

	// Wrapping keeps the sentinel reachable.
	wrapped := errors.Wrap(errors.ErrInvalidTemplate, errors.ErrorTypeConfig, "catalog template does not implement Poolable")
	fmt.Println(stderrors.Is(wrapped, errors.ErrInvalidTemplate))

	// Output:
	// true
	// false
	// false
	// false
	// true
}

// ExampleTypeOf demonstrates classifying arbitrary errors.
func ExampleTypeOf() {
	fmt.Println(errors.TypeOf(errors.ErrNoSpawnPoint))
	fmt.Println(errors.TypeOf(io.EOF))

	// Output:
	// no_spawn_point
	// internal
}
