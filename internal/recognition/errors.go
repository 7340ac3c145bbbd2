package recognition

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceUnavailable covers transport failures and non-success statuses
	ErrServiceUnavailable = errors.New("recognition service unavailable")
	// ErrMalformedResponse means the body did not match {productName, price}
	ErrMalformedResponse = errors.New("malformed recognition response")
	// ErrTimeout means the call exceeded the client deadline
	ErrTimeout = errors.New("recognition request timed out")
)

// CredentialsMissing is the stable identifier reported when the service has
// no credentials for its backend.
const CredentialsMissing = "credentials_missing"

// ConfigurationError reports missing or invalid service credentials. It is
// raised when the service boundary is set up, not per request.
type ConfigurationError struct {
	ID     string
	Detail string
}

func (e *ConfigurationError) Error() string {
	if e.Detail == "" {
		return "recognition configuration error: " + e.ID
	}
	return fmt.Sprintf("recognition configuration error: %s: %s", e.ID, e.Detail)
}

// IsConfigurationError reports whether err carries a ConfigurationError
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
