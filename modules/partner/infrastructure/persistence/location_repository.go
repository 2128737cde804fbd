package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/location"
	"github.com/acacia-erp/acacia-sdk/pkg/composables"
	"github.com/acacia-erp/acacia-sdk/pkg/hierarchy"
	"github.com/acacia-erp/acacia-sdk/pkg/repo"
)

type LocationRepository struct{}

func NewLocationRepository() location.Repository {
	return &LocationRepository{}
}

func (r *LocationRepository) Search(ctx context.Context, filter repo.Expr, limit int) ([]hierarchy.Node, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	where, args := repo.ToSQL(filter, nil)
	lim, args := limitClause(args, limit)
	rows, err := tx.Query(ctx, `
SELECT id, name, parent_id
FROM partner_locations
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

func (r *LocationRepository) GetByID(ctx context.Context, id int64) (location.Location, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return location.Location{}, err
	}
	var (
		l   location.Location
		raw []byte
	)
	err = tx.QueryRow(ctx, `
SELECT id, name, parent_id, location_type_id, active, partner_ids, agent_count, created_at, updated_at
FROM partner_locations
WHERE id = $1
`, id).Scan(&l.ID, &l.Name, &l.ParentID, &l.LocationTypeID, &l.Active, &raw, &l.AgentCount, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return location.Location{}, location.ErrNotFound
		}
		return location.Location{}, err
	}
	if l.PartnerIDs, err = unmarshalIDs(raw); err != nil {
		return location.Location{}, err
	}
	return l, nil
}

func (r *LocationRepository) List(ctx context.Context, limit, offset int) ([]location.Location, error) {
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
SELECT id, name, parent_id, location_type_id, active, partner_ids, agent_count, created_at, updated_at
FROM partner_locations
ORDER BY id
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []location.Location
	for rows.Next() {
		var (
			l   location.Location
			raw []byte
		)
		if err := rows.Scan(&l.ID, &l.Name, &l.ParentID, &l.LocationTypeID, &l.Active, &raw, &l.AgentCount, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		if l.PartnerIDs, err = unmarshalIDs(raw); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *LocationRepository) Create(ctx context.Context, l location.Location) (location.Location, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return location.Location{}, err
	}
	if err := tx.QueryRow(ctx, `
INSERT INTO partner_locations (name, parent_id, location_type_id, active)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, updated_at
`, l.Name, l.ParentID, l.LocationTypeID, l.Active).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return location.Location{}, err
	}
	return l, nil
}

func (r *LocationRepository) Update(ctx context.Context, l location.Location) (location.Location, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return location.Location{}, err
	}
	tag, err := tx.Exec(ctx, `
UPDATE partner_locations
SET name = $2, parent_id = $3, location_type_id = $4, active = $5, updated_at = now()
WHERE id = $1
`, l.ID, l.Name, l.ParentID, l.LocationTypeID, l.Active)
	if err != nil {
		return location.Location{}, err
	}
	if tag.RowsAffected() == 0 {
		return location.Location{}, location.ErrNotFound
	}
	return l, nil
}

func (r *LocationRepository) Delete(ctx context.Context, id int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM partner_locations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return location.ErrNotFound
	}
	return nil
}

func (r *LocationRepository) ChildIDs(ctx context.Context, parentIDs []int64) ([]int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT id FROM partner_locations WHERE parent_id = ANY($1) ORDER BY id
`, parentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *LocationRepository) SaveRollup(ctx context.Context, id int64, profileIDs []int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	raw, err := marshalIDs(profileIDs)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
UPDATE partner_locations
SET partner_ids = $2, agent_count = $3, updated_at = now()
WHERE id = $1
`, id, raw, len(profileIDs))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return location.ErrNotFound
	}
	return nil
}
