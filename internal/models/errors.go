package models

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrCrossTenant = errors.New("resource belongs to another tenant")
	ErrConflict    = errors.New("already exists")
)
