package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/territory"
	"github.com/acacia-erp/acacia-sdk/pkg/composables"
	"github.com/acacia-erp/acacia-sdk/pkg/hierarchy"
	"github.com/acacia-erp/acacia-sdk/pkg/repo"
)

type TerritoryRepository struct{}

func NewTerritoryRepository() territory.Repository {
	return &TerritoryRepository{}
}

func (r *TerritoryRepository) Search(ctx context.Context, filter repo.Expr, limit int) ([]hierarchy.Node, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	where, args := repo.ToSQL(filter, nil)
	lim, args := limitClause(args, limit)
	rows, err := tx.Query(ctx, `
SELECT id, name, parent_id
FROM partner_territories
WHERE `+where+`
ORDER BY id`+lim, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []hierarchy.Node
	for rows.Next() {
		var n hierarchy.Node
		if err := rows.Scan(&n.ID, &n.Name, &n.ParentID); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *TerritoryRepository) GetByID(ctx context.Context, id int64) (territory.Territory, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return territory.Territory{}, err
	}
	var t territory.Territory
	err = tx.QueryRow(ctx, `
SELECT id, name, parent_id, active, created_at, updated_at
FROM partner_territories
WHERE id = $1
`, id).Scan(&t.ID, &t.Name, &t.ParentID, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return territory.Territory{}, territory.ErrNotFound
		}
		return territory.Territory{}, err
	}
	return t, nil
}

func (r *TerritoryRepository) List(ctx context.Context, limit, offset int) ([]territory.Territory, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := tx.Query(ctx, `
SELECT id, name, parent_id, active, created_at, updated_at
FROM partner_territories
ORDER BY id
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []territory.Territory
	for rows.Next() {
		var t territory.Territory
		if err := rows.Scan(&t.ID, &t.Name, &t.ParentID, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TerritoryRepository) Create(ctx context.Context, t territory.Territory) (territory.Territory, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return territory.Territory{}, err
	}
	if err := tx.QueryRow(ctx, `
INSERT INTO partner_territories (name, parent_id, active)
VALUES ($1, $2, $3)
RETURNING id, created_at, updated_at
`, t.Name, t.ParentID, t.Active).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return territory.Territory{}, err
	}
	return t, nil
}

func (r *TerritoryRepository) Update(ctx context.Context, t territory.Territory) (territory.Territory, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return territory.Territory{}, err
	}
	tag, err := tx.Exec(ctx, `
UPDATE partner_territories
SET name = $2, parent_id = $3, active = $4, updated_at = now()
WHERE id = $1
`, t.ID, t.Name, t.ParentID, t.Active)
	if err != nil {
		return territory.Territory{}, err
	}
	if tag.RowsAffected() == 0 {
		return territory.Territory{}, territory.ErrNotFound
	}
	return t, nil
}

func (r *TerritoryRepository) Delete(ctx context.Context, id int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM partner_territories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return territory.ErrNotFound
	}
	return nil
}
