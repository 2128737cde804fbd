package locationtype

import "context"

// LocationType labels location tree nodes (e.g. country, region, route).
type LocationType struct {
	ID   int64
	Name string
}

type Repository interface {
	GetByID(ctx context.Context, id int64) (LocationType, error)
	List(ctx context.Context) ([]LocationType, error)
}
