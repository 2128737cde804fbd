package events

import (
	"time"

	"github.com/google/uuid"
)

// Events published on the in-process bus after successful writes. The bus
// dispatches by argument type, so each event is its own struct.

type Meta struct {
	EventID    uuid.UUID `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewMeta() Meta {
	return Meta{EventID: uuid.New(), OccurredAt: time.Now()}
}

type LocationCreated struct {
	Meta
	LocationID int64  `json:"location_id"`
	Name       string `json:"name"`
}

type LocationUpdated struct {
	Meta
	LocationID int64  `json:"location_id"`
	Name       string `json:"name"`
}

type LocationDeleted struct {
	Meta
	LocationID int64 `json:"location_id"`
}

type RollupRecomputed struct {
	Meta
	LocationID int64 `json:"location_id"`
	AgentCount int   `json:"agent_count"`
}

type TerritoryCreated struct {
	Meta
	TerritoryID int64  `json:"territory_id"`
	Name        string `json:"name"`
}

type TerritoryUpdated struct {
	Meta
	TerritoryID int64  `json:"territory_id"`
	Name        string `json:"name"`
}

type TerritoryDeleted struct {
	Meta
	TerritoryID int64 `json:"territory_id"`
}

type PartnerCreated struct {
	Meta
	PartnerID   int64  `json:"partner_id"`
	PartnerType string `json:"partner_type"`
}

type PartnerUpdated struct {
	Meta
	PartnerID int64 `json:"partner_id"`
}

type ActiveAgentToggled struct {
	Meta
	PartnerID   int64 `json:"partner_id"`
	ActiveAgent bool  `json:"active_agent"`
}

type ProfileCreated struct {
	Meta
	ProfileID int64 `json:"profile_id"`
	PartnerID int64 `json:"partner_id"`
}

type ProfileUpdated struct {
	Meta
	ProfileID int64 `json:"profile_id"`
}

type PinIssued struct {
	Meta
	ProfileID int64 `json:"profile_id"`
	PartnerID int64 `json:"partner_id"`
	SmsQueued bool  `json:"sms_queued"`
}

type PinChanged struct {
	Meta
	ProfileID int64 `json:"profile_id"`
}
