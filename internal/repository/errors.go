package repository

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateSKU      = errors.New("duplicate sku")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUserExists        = errors.New("user already exists")
)
