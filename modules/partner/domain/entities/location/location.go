package location

import (
	"context"
	"time"

	"github.com/acacia-erp/acacia-sdk/pkg/hierarchy"
	"github.com/acacia-erp/acacia-sdk/pkg/repo"
	"github.com/acacia-erp/acacia-sdk/pkg/serrors"
)

var ErrNotFound = serrors.NewError("LOCATION_NOT_FOUND", "location not found", "")

// Location is a node in the self-referential location tree. PartnerIDs and
// AgentCount are the stored agent rollup: every agent profile attached to
// this location or any descendant.
type Location struct {
	ID             int64
	Name           string
	ParentID       *int64
	LocationTypeID *int64
	Active         bool
	PartnerIDs     []int64
	AgentCount     int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (l Location) Node() hierarchy.Node {
	return hierarchy.Node{ID: l.ID, Name: l.Name, ParentID: l.ParentID}
}

type Repository interface {
	// Search satisfies hierarchy.Repository.
	Search(ctx context.Context, filter repo.Expr, limit int) ([]hierarchy.Node, error)

	GetByID(ctx context.Context, id int64) (Location, error)
	List(ctx context.Context, limit, offset int) ([]Location, error)
	Create(ctx context.Context, l Location) (Location, error)
	Update(ctx context.Context, l Location) (Location, error)
	Delete(ctx context.Context, id int64) error

	// ChildIDs returns ids of locations whose parent is one of parentIDs.
	ChildIDs(ctx context.Context, parentIDs []int64) ([]int64, error)

	// SaveRollup stores the aggregated agent-profile ids and their count.
	SaveRollup(ctx context.Context, id int64, profileIDs []int64) error
}
