package domain

import "errors"

// Ledger errors
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrNegativeAmount      = errors.New("amount cannot be negative")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAssetNotFound       = errors.New("asset not found")
	ErrNotPurchased        = errors.New("asset was not purchased")
)

// Account errors
var (
	ErrAccountExists   = errors.New("account already exists")
	ErrAccountNotFound = errors.New("account not found")
	ErrWrongPassword   = errors.New("wrong password")
	ErrAlreadyLoggedIn = errors.New("user already logged in")
)
