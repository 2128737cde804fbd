package persistence

import (
	"context"

	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/pinlog"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/smsmessage"
	"github.com/acacia-erp/acacia-sdk/pkg/composables"
)

type PinLogRepository struct{}

func NewPinLogRepository() pinlog.Repository {
	return &PinLogRepository{}
}

func (r *PinLogRepository) Create(ctx context.Context, l pinlog.PinLog) (pinlog.PinLog, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return pinlog.PinLog{}, err
	}
	if err := tx.QueryRow(ctx, `
INSERT INTO pin_logs (profile_id, partner_id, old_pin, new_pin)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at
`, l.ProfileID, l.PartnerID, l.OldPin, l.NewPin).Scan(&l.ID, &l.CreatedAt); err != nil {
		return pinlog.PinLog{}, err
	}
	return l, nil
}

func (r *PinLogRepository) ListByProfileID(ctx context.Context, profileID int64) ([]pinlog.PinLog, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT id, profile_id, partner_id, old_pin, new_pin, created_at
FROM pin_logs
WHERE profile_id = $1
ORDER BY id
`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []pinlog.PinLog
	for rows.Next() {
		var l pinlog.PinLog
		if err := rows.Scan(&l.ID, &l.ProfileID, &l.PartnerID, &l.OldPin, &l.NewPin, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

type SmsMessageRepository struct{}

func NewSmsMessageRepository() smsmessage.Repository {
	return &SmsMessageRepository{}
}

func (r *SmsMessageRepository) Create(ctx context.Context, m smsmessage.SmsMessage) (smsmessage.SmsMessage, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return smsmessage.SmsMessage{}, err
	}
	if err := tx.QueryRow(ctx, `
INSERT INTO sms_messages (partner_id, type, from_number, to_number, date, text, note, queued)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at
`, m.PartnerID, m.Type, m.From, m.To, m.Date, m.Text, m.Note, m.Queued).Scan(&m.ID, &m.CreatedAt); err != nil {
		return smsmessage.SmsMessage{}, err
	}
	return m, nil
}

func (r *SmsMessageRepository) ListByPartnerID(ctx context.Context, partnerID int64) ([]smsmessage.SmsMessage, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT id, partner_id, type, from_number, to_number, date, text, note, queued, created_at
FROM sms_messages
WHERE partner_id = $1
ORDER BY id
`, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []smsmessage.SmsMessage
	for rows.Next() {
		var m smsmessage.SmsMessage
		if err := rows.Scan(&m.ID, &m.PartnerID, &m.Type, &m.From, &m.To, &m.Date, &m.Text, &m.Note, &m.Queued, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *SmsMessageRepository) CountByPartnerID(ctx context.Context, partnerID int64) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM sms_messages WHERE partner_id = $1`, partnerID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
