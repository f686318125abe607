package repository

import "errors"

// ErrNotFound is returned by scoped lookups when no row matches. Callers use
// it to tell "gone or never existed" apart from infrastructure failures.
var ErrNotFound = errors.New("record not found")
