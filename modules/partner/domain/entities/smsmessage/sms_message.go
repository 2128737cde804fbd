package smsmessage

import (
	"context"
	"time"
)

// SmsMessage is a persisted outbound (or inbound) SMS tied to a partner.
// Queued records whether the gateway accepted it; Note explains why not.
type SmsMessage struct {
	ID        int64
	PartnerID int64
	Type      string
	From      string
	To        string
	Date      time.Time
	Text      string
	Note      string
	Queued    bool
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, m SmsMessage) (SmsMessage, error)
	ListByPartnerID(ctx context.Context, partnerID int64) ([]SmsMessage, error)
	CountByPartnerID(ctx context.Context, partnerID int64) (int64, error)
}
