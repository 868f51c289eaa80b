package contracts

import (
	"errors"
	"fmt"
)

// ErrInsufficientData marks a symbol with too few bars or quarters.
// Callers skip the symbol; it is never fatal to a cycle.
var ErrInsufficientData = errors.New("insufficient data")

// ErrFundamentalsUnresolved marks a symbol whose fundamentals could not
// be fetched from any source. The symbol is skipped, never scored with
// an empty snapshot.
var ErrFundamentalsUnresolved = errors.New("fundamentals unresolved")

// ProviderError wraps a failure from a market-data or broker adapter.
// Callers log it and skip the symbol or the cycle's action.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err with provider and operation context
func NewProviderError(provider, op string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Op: op, Err: err}
}

// OrderRejectedError reports a broker-declined order. It is recorded as
// a failed order and causes no state mutation.
type OrderRejectedError struct {
	Symbol string
	Reason string
}

func (e *OrderRejectedError) Error() string {
	return fmt.Sprintf("order rejected for %s: %s", e.Symbol, e.Reason)
}

// PersistenceError reports a database write failure. The in-flight
// transaction rolls back and the error propagates as a cycle failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ReconciliationConflictError reports local/broker divergence the
// three-way diff cannot resolve deterministically. Broker state wins.
type ReconciliationConflictError struct {
	Symbol string
	Detail string
}

func (e *ReconciliationConflictError) Error() string {
	return fmt.Sprintf("reconciliation conflict for %s: %s", e.Symbol, e.Detail)
}
