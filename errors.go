package condqueue

import "errors"

// ErrInvalidCapacity is returned by NewBounded when the requested capacity is
// less than 1.
var ErrInvalidCapacity = errors.New("condqueue: capacity must be at least 1")
