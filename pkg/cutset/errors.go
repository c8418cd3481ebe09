package cutset

import "errors"

// ErrNotBound is wrapped by mix accessors that need operand
// resolution before any set has been bound.
var ErrNotBound = errors.New("mix is not bound to a cut set")

// ErrCutNotFound is wrapped when an operand id is missing from the
// bound set.
var ErrCutNotFound = errors.New("cut not found")
