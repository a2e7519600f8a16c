package nrf24l01p

import (
	"errors"
	"fmt"
)

var (
	ErrPkg = errors.New("nrf24l01p")

	// ErrPrecondition reports that the hardware was not in the state an operation requires.
	ErrPrecondition = errors.New("precondition violated")
	// ErrInvalidConfig reports a configuration field outside its legal value set.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrTransport reports a failed bus transfer or control line write.
	ErrTransport = errors.New("transport failure")

	ErrReservedRegister = fmt.Errorf("%w: reserved register", ErrInvalidConfig)
	ErrUnknownRegister  = fmt.Errorf("%w: unknown register", ErrInvalidConfig)
	ErrRegisterWidth    = fmt.Errorf("%w: data length does not match register width", ErrInvalidConfig)
	ErrNotStandalone    = fmt.Errorf("%w: opcode is not a standalone command", ErrInvalidConfig)
	ErrVerify           = fmt.Errorf("%w: register read-back mismatch", ErrTransport)
)

// ConfigError describes a single rejected configuration field.
type ConfigError struct {
	Field  string
	Value  int
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s=%d: %s", ErrPkg, ErrInvalidConfig, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

func configErr(field string, value int, reason string) error {
	return &ConfigError{Field: field, Value: value, Reason: reason}
}

func transportErr(op string, err error) error {
	return fmt.Errorf("%w: %w: %s: %w", ErrPkg, ErrTransport, op, err)
}
