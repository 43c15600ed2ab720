package directory

import (
	"context"

	"bookline/models"
)

// Service resolves a party's ID to display data. Identity lives in an
// external system; this service is presentation-only and never participates
// in state logic.
type Service interface {
	GetDisplayInfo(ctx context.Context, userID string) (models.DisplayInfo, error)
}
