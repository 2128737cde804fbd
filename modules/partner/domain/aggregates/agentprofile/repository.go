package agentprofile

import (
	"context"

	"github.com/acacia-erp/acacia-sdk/pkg/repo"
)

type FindParams struct {
	Filter repo.Expr
	Limit  int
	Offset int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Profile, int64, error)
	GetByID(ctx context.Context, id int64) (Profile, error)
	GetByPartnerID(ctx context.Context, partnerID int64) ([]Profile, error)
	Create(ctx context.Context, p Profile) (Profile, error)
	Update(ctx context.Context, p Profile) (Profile, error)
	Delete(ctx context.Context, id int64) error

	// ListIDsByLocationIDs returns profile ids whose location is one of
	// locationIDs, ascending.
	ListIDsByLocationIDs(ctx context.Context, locationIDs []int64) ([]int64, error)
}
