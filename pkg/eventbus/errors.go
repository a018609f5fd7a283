package eventbus

import "errors"

// ErrShutdownTimeout is returned when Shutdown's context expires before every
// subscriber has closed its done channel.
var ErrShutdownTimeout = errors.New("eventbus: context expired before all subscribers exited")
