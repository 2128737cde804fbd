package partner

import (
	"context"
	"time"

	"github.com/acacia-erp/acacia-sdk/pkg/repo"
)

type FindParams struct {
	Filter repo.Expr
	Limit  int
	Offset int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Partner, int64, error)
	GetByID(ctx context.Context, id int64) (Partner, error)
	Create(ctx context.Context, p Partner) (Partner, error)
	Update(ctx context.Context, p Partner) (Partner, error)
	Delete(ctx context.Context, id int64) error

	// CountPhoneUsage counts partners other than excludeID whose phone or
	// mobile column holds value. Both columns are checked so a number used
	// as one partner's phone cannot become another's mobile.
	CountPhoneUsage(ctx context.Context, value string, excludeID int64) (int64, error)

	// ListAgentsCreatedBetween returns agent partners created inside the
	// half-open window [from, to).
	ListAgentsCreatedBetween(ctx context.Context, from, to time.Time) ([]Partner, error)
}
