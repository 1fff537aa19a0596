package graph

import "errors"

var (
	// ErrNilCollection is returned when a graph is created without a collection.
	ErrNilCollection = errors.New("graph collection is nil")
	// ErrNoFields is returned when a graph is created with an empty field mapping.
	ErrNoFields = errors.New("graph field mapping is empty")
	// ErrInvalidField is returned when a field mapping entry has an empty name.
	ErrInvalidField = errors.New("graph field mapping has an empty field name")
	// ErrDuplicateField is returned when a logical or physical field is mapped twice.
	ErrDuplicateField = errors.New("graph field mapping has a duplicate field")
	// ErrInvalidSelector is returned when a selector is neither an id nor a link.
	ErrInvalidSelector = errors.New("invalid selector, expected an id or a link")
	// ErrNoIDField is returned when an id selector is used without an id field mapping.
	ErrNoIDField = errors.New("graph field mapping has no id field")
	// ErrUnknownEvent is returned when subscribing to an unsupported event.
	ErrUnknownEvent = errors.New("unknown graph event")
)
