package account

import (
	"context"

	"github.com/acacia-erp/acacia-sdk/pkg/serrors"
)

// ErrNoReceivable is raised when no receivable account exists to default a
// partner to. Missing-reference class: the write is rejected.
var ErrNoReceivable = serrors.NewError("PARTNER_NO_RECEIVABLE", "no active receivable account configured", "")

// Account is a chart-of-accounts entry. Only receivable accounts matter
// here: agent partners default to one on creation.
type Account struct {
	ID           int64
	Name         string
	Code         string
	InternalType string
	Active       bool
	Deprecated   bool
}

type Repository interface {
	GetByID(ctx context.Context, id int64) (Account, error)

	// FirstActiveReceivable returns the lowest-id active, non-deprecated
	// receivable account, or ErrNoReceivable.
	FirstActiveReceivable(ctx context.Context) (Account, error)
}
