package ecr

import (
	"errors"
	"fmt"

	"github.com/nixxel-company-limited/ecr-task-server/device"
)

// ErrDevice marks a failure reported by the driver. The diagnostic text
// for it comes from the driver's last result code and description.
var ErrDevice = errors.New("device command failed")

// ValidationError is a task rejected before it reached the device.
// Its message takes priority over the driver's own diagnostics.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConfigError is returned by New when the driver rejects the settings
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// check converts a driver status into an error wrapping ErrDevice
func check(status int, step string) error {
	if status == device.ResultOK {
		return nil
	}
	return fmt.Errorf("%s returned %d: %w", step, status, ErrDevice)
}

// Kind classifies err for logs and metric labels
func Kind(err error) string {
	var verr *ValidationError
	var cerr *ConfigError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return "validation"
	case errors.As(err, &cerr):
		return "config"
	case errors.Is(err, ErrDevice):
		return "device"
	default:
		return "internal"
	}
}
