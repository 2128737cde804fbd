package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/account"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/agenttype"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/businesstype"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/locationtype"
	"github.com/acacia-erp/acacia-sdk/pkg/composables"
)

type AgentTypeRepository struct{}

func NewAgentTypeRepository() agenttype.Repository {
	return &AgentTypeRepository{}
}

func (r *AgentTypeRepository) GetByID(ctx context.Context, id int64) (agenttype.AgentType, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return agenttype.AgentType{}, err
	}
	var t agenttype.AgentType
	err = tx.QueryRow(ctx, `
SELECT id, name, category, receivable_account_id, sla_days, prepayments_exempted, created_at, updated_at
FROM agent_types
WHERE id = $1
`, id).Scan(&t.ID, &t.Name, &t.Category, &t.ReceivableAccountID, &t.SlaDays, &t.PrepaymentsExempted, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return agenttype.AgentType{}, agenttype.ErrNotFound
		}
		return agenttype.AgentType{}, err
	}
	return t, nil
}

func (r *AgentTypeRepository) List(ctx context.Context) ([]agenttype.AgentType, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT id, name, category, receivable_account_id, sla_days, prepayments_exempted, created_at, updated_at
FROM agent_types
ORDER BY id
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []agenttype.AgentType
	for rows.Next() {
		var t agenttype.AgentType
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &t.ReceivableAccountID, &t.SlaDays, &t.PrepaymentsExempted, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type AccountRepository struct{}

func NewAccountRepository() account.Repository {
	return &AccountRepository{}
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (account.Account, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return account.Account{}, err
	}
	var a account.Account
	err = tx.QueryRow(ctx, `
SELECT id, name, code, internal_type, active, deprecated
FROM receivable_accounts
WHERE id = $1
`, id).Scan(&a.ID, &a.Name, &a.Code, &a.InternalType, &a.Active, &a.Deprecated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNoReceivable
		}
		return account.Account{}, err
	}
	return a, nil
}

func (r *AccountRepository) FirstActiveReceivable(ctx context.Context) (account.Account, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return account.Account{}, err
	}
	var a account.Account
	err = tx.QueryRow(ctx, `
SELECT id, name, code, internal_type, active, deprecated
FROM receivable_accounts
WHERE internal_type = 'receivable' AND active AND NOT deprecated
ORDER BY id
LIMIT 1
`).Scan(&a.ID, &a.Name, &a.Code, &a.InternalType, &a.Active, &a.Deprecated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNoReceivable
		}
		return account.Account{}, err
	}
	return a, nil
}

type LocationTypeRepository struct{}

func NewLocationTypeRepository() locationtype.Repository {
	return &LocationTypeRepository{}
}

func (r *LocationTypeRepository) GetByID(ctx context.Context, id int64) (locationtype.LocationType, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return locationtype.LocationType{}, err
	}
	var t locationtype.LocationType
	err = tx.QueryRow(ctx, `SELECT id, name FROM partner_location_types WHERE id = $1`, id).Scan(&t.ID, &t.Name)
	if err != nil {
		return locationtype.LocationType{}, err
	}
	return t, nil
}

func (r *LocationTypeRepository) List(ctx context.Context) ([]locationtype.LocationType, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `SELECT id, name FROM partner_location_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []locationtype.LocationType
	for rows.Next() {
		var t locationtype.LocationType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type BusinessTypeRepository struct{}

func NewBusinessTypeRepository() businesstype.Repository {
	return &BusinessTypeRepository{}
}

func (r *BusinessTypeRepository) GetByID(ctx context.Context, id int64) (businesstype.BusinessType, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return businesstype.BusinessType{}, err
	}
	var t businesstype.BusinessType
	err = tx.QueryRow(ctx, `SELECT id, name FROM partner_business_types WHERE id = $1`, id).Scan(&t.ID, &t.Name)
	if err != nil {
		return businesstype.BusinessType{}, err
	}
	return t, nil
}

func (r *BusinessTypeRepository) List(ctx context.Context) ([]businesstype.BusinessType, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `SELECT id, name FROM partner_business_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []businesstype.BusinessType
	for rows.Next() {
		var t businesstype.BusinessType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
