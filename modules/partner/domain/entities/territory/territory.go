package territory

import (
	"context"
	"time"

	"github.com/acacia-erp/acacia-sdk/pkg/hierarchy"
	"github.com/acacia-erp/acacia-sdk/pkg/repo"
	"github.com/acacia-erp/acacia-sdk/pkg/serrors"
)

var ErrNotFound = serrors.NewError("TERRITORY_NOT_FOUND", "territory not found", "")

// Territory is a node in the sales-territory tree.
type Territory struct {
	ID        int64
	Name      string
	ParentID  *int64
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t Territory) Node() hierarchy.Node {
	return hierarchy.Node{ID: t.ID, Name: t.Name, ParentID: t.ParentID}
}

type Repository interface {
	// Search satisfies hierarchy.Repository.
	Search(ctx context.Context, filter repo.Expr, limit int) ([]hierarchy.Node, error)

	GetByID(ctx context.Context, id int64) (Territory, error)
	List(ctx context.Context, limit, offset int) ([]Territory, error)
	Create(ctx context.Context, t Territory) (Territory, error)
	Update(ctx context.Context, t Territory) (Territory, error)
	Delete(ctx context.Context, id int64) error
}
