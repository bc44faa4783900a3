package providers

import (
	"context"
	"fmt"

	"github.com/jonechelon/matchfly-pseo/internal/constants"
	"github.com/jonechelon/matchfly-pseo/internal/models"
)

// RowProvider defines the interface for raw-row sources feeding the pipeline
type RowProvider interface {
	// FetchRows fetches every raw row the source currently has
	FetchRows(ctx context.Context) ([]models.RawRow, error)

	// GetProviderType returns the provider type identifier
	GetProviderType() string
}

// ProviderError carries a machine-readable code alongside the message.
type ProviderError struct {
	Code    string
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = constants.GetErrorMessage(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
