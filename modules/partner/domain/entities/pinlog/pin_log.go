package pinlog

import (
	"context"
	"time"
)

// PinLog records a PIN change on an agent profile. Append-only; rows are
// never updated or pruned.
type PinLog struct {
	ID        int64
	ProfileID int64
	PartnerID int64
	OldPin    string
	NewPin    string
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, l PinLog) (PinLog, error)
	ListByProfileID(ctx context.Context, profileID int64) ([]PinLog, error)
}
