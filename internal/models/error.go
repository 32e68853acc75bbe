package models

import "errors"

var (
	ErrConflictData       = errors.New("data conflicts with existing data")
	ErrDataNotFound       = errors.New("data not found")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrMissingCustomer    = errors.New("customer id is required")
	ErrNoReferences       = errors.New("at least one reference number is required")
	ErrNoFeeLines         = errors.New("at least one fee line is required")
	ErrInvalidQuantity    = errors.New("fee quantity must be positive")
	ErrInvalidStatus      = errors.New("unknown work order status")
)
