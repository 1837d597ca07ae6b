package protocol

import "github.com/google/uuid"

// NewRequestID mints a fresh request id for a caller that does not already
// have a correlation id of its own, the same way history.New mints a
// conversation id.
func NewRequestID() ID {
	return ID(uuid.NewString())
}
