package collection

import "errors"

var (
	// ErrCannotModifyID is returned when an update tries to set or unset the document id.
	ErrCannotModifyID = errors.New("cannot modify document id")
	// ErrDuplicateID is returned when a document with the same id already exists.
	ErrDuplicateID = errors.New("document id already exists")
)
