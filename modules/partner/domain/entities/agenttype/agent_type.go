package agenttype

import (
	"context"
	"time"

	"github.com/acacia-erp/acacia-sdk/pkg/serrors"
)

var ErrNotFound = serrors.NewError("AGENT_TYPE_NOT_FOUND", "agent type not found", "")

// Categories with extra validation requirements on agent profiles.
const (
	CategoryInstitution = "Institution"
	CategoryField       = "Field"
)

// AgentType classifies agents and carries their defaults: the receivable
// account posted to, delivery SLA, and prepayment exemption.
type AgentType struct {
	ID                  int64
	Name                string
	Category            string
	ReceivableAccountID *int64
	SlaDays             int
	PrepaymentsExempted bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type Repository interface {
	GetByID(ctx context.Context, id int64) (AgentType, error)
	List(ctx context.Context) ([]AgentType, error)
}
