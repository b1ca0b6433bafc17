package models

import "errors"

// ErrEventNotFound is returned when no stored event carries the requested id.
var ErrEventNotFound = errors.New("event not found")
