package businesstype

import "context"

// BusinessType classifies an agent's side business (kiosk, salon, ...).
type BusinessType struct {
	ID   int64
	Name string
}

type Repository interface {
	GetByID(ctx context.Context, id int64) (BusinessType, error)
	List(ctx context.Context) ([]BusinessType, error)
}
