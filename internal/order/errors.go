package order

import "errors"

var (
	ErrNotFound     = errors.New("order not found")
	ErrDuplicateKey = errors.New("idempotency key already used")
)
