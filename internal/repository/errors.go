package repository

import (
	"fmt"
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	Key      string
	Value    string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with %s %s not found", e.Resource, e.Key, e.Value)
}

// ValidationError represents input the store cannot accept: a sort column
// outside the allow-list, a line item referencing an unknown product, or a
// constraint the write would violate.
type ValidationError struct {
	Reason string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Reason
}
