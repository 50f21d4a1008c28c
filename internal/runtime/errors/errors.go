package errors

import (
	sterrors "errors"
	"fmt"
)

var (
	ErrServiceRequired       = sterrors.New("routeflow: route service is required")
	ErrSourceRequired        = sterrors.New("routeflow: declaration source is required")
	ErrProcessorIDRequired   = sterrors.New("routeflow: processor id is required")
	ErrDuplicateProcessor    = sterrors.New("routeflow: processor id is already registered")
	ErrConfigRequired        = sterrors.New("routeflow: configuration is required")
	ErrLoggerRequired        = sterrors.New("routeflow: logger is required")
	ErrManifestFileRequired  = sterrors.New("routeflow: manifest file is required")
	ErrMissingTopicName      = sterrors.New("routeflow: topic name is not set but it is required")
	ErrMalformedSubscription = sterrors.New("routeflow: topic subscriber configuration is invalid")
	ErrNoRoutes              = sterrors.New("routeflow: processor does not declare any route")
	ErrTableAlreadyBuilt     = sterrors.New("routeflow: route table is already built")
)

// ConfigValidationError reports an invalid Config.
type ConfigValidationError struct {
	Err error
}

func (e ConfigValidationError) Error() string {
	return fmt.Sprintf("routeflow: invalid configuration: %v", e.Err)
}

func (e ConfigValidationError) Unwrap() error { return e.Err }

// NewConfigValidationError wraps err, returning nil when err is nil.
func NewConfigValidationError(err error) error {
	if err == nil {
		return nil
	}
	return ConfigValidationError{Err: err}
}
