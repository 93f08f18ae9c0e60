package trigger

import (
	"errors"
	"fmt"
)

// Configuration load errors. A ConfigError wraps one of these.
var (
	ErrMalformedLine      = errors.New("malformed line")
	ErrUnknownTriggerName = errors.New("unknown trigger name")
	ErrInvalidTimeFormat  = errors.New("invalid time format")
	ErrCyclicReference    = errors.New("cyclic trigger reference")
)

// ConfigError reports the rule line a configuration load failed on.
type ConfigError struct {
	Line int
	Text string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
