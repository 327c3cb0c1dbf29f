package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound = errors.New("product not found")

	ErrAmountNotPositive   = errors.New("amount must be a positive integer")
	ErrBelowMinimum        = errors.New("amount is below the configured minimum")
	ErrInsufficientBalance = errors.New("insufficient balance")

	ErrDepositRefTaken = errors.New("deposit ref already exists")
	ErrInvoiceCreation = errors.New("invoice creation failed")

	ErrUnauthorized = errors.New("operator-only action")
)

// StorageError marks a store-level failure (unreachable database, constraint
// violation, timeout). It is fatal for the in-flight operation and is never
// retried automatically inside a financial mutation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func Storage(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
