package pricetag

import (
	"context"

	"github.com/cartdanawa/pricescan/internal/models"
	"github.com/cartdanawa/pricescan/internal/recognition"
)

// Local lets scan sessions call the service in-process instead of over HTTP.
// When the service could not be configured every call reports that error,
// so each session falls back to local parsing after its first attempt.
type Local struct {
	svc *Service
	err error
}

// NewLocal builds a Local recognizer for the named provider
func NewLocal(provider string) *Local {
	svc, err := NewService(provider)
	return &Local{svc: svc, err: err}
}

// Unconfigured returns a Local that fails every call with err, or with a
// missing-credentials error when err is nil
func Unconfigured(err error) *Local {
	if err == nil {
		err = &recognition.ConfigurationError{ID: recognition.CredentialsMissing}
	}
	return &Local{err: err}
}

// LocalFor wraps an existing service
func LocalFor(svc *Service) *Local {
	return &Local{svc: svc}
}

// Err returns the configuration error, if any
func (l *Local) Err() error {
	return l.err
}

func (l *Local) Recognize(ctx context.Context, p recognition.Payload) (models.RecognitionResult, error) {
	if l.err != nil {
		return models.RecognitionResult{}, l.err
	}
	return l.svc.Recognize(ctx, p)
}
