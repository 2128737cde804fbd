// Package sms is the outbound messaging collaborator. Callers decide
// whether a message should be queued and what it says; the gateway owns
// delivery, retries and queueing.
package sms

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// TypeOutbox marks an outbound message record.
const TypeOutbox = "outbox"

type Message struct {
	PartnerID int64     `json:"partner_id"`
	Type      string    `json:"type"`
	From      string    `json:"from_num"`
	To        string    `json:"to_num"`
	Date      time.Time `json:"date"`
	Text      string    `json:"text"`
	Note      string    `json:"note"`
}

// Gateway accepts an outbound message and reports whether it was queued
// for delivery. A false return with a nil error is not a failure: the
// message was deliberately not queued (e.g. no destination number).
type Gateway interface {
	Queue(ctx context.Context, msg Message) (bool, error)
}

// LogGateway logs messages instead of sending them. Used in development
// and whenever SMS is disabled by configuration.
type LogGateway struct {
	log logrus.FieldLogger
}

func NewLogGateway(log logrus.FieldLogger) *LogGateway {
	return &LogGateway{log: log}
}

func (g *LogGateway) Queue(_ context.Context, msg Message) (bool, error) {
	if msg.To == "" {
		g.log.WithField("partner_id", msg.PartnerID).Warn("sms: no destination number, not queued")
		return false, nil
	}
	g.log.WithFields(logrus.Fields{
		"partner_id": msg.PartnerID,
		"to":         msg.To,
		"note":       msg.Note,
	}).Infof("sms: %s", msg.Text)
	return true, nil
}
