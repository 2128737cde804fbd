package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/aggregates/partner"
	"github.com/acacia-erp/acacia-sdk/pkg/composables"
	"github.com/acacia-erp/acacia-sdk/pkg/repo"
)

const partnerColumns = `
id, name, phone, mobile, partner_type, is_agent, is_sale_associate, customer,
can_purchase, active_agent, agent_type_id, credit_days, sale_associate_id,
agent_id, receivable_account_id, created_at, updated_at`

type PartnerRepository struct{}

func NewPartnerRepository() partner.Repository {
	return &PartnerRepository{}
}

func scanPartner(row pgx.Row) (partner.Partner, error) {
	var (
		id                  int64
		name                string
		phone               string
		mobile              string
		partnerType         string
		isAgent             bool
		isSaleAssociate     bool
		customer            bool
		canPurchase         bool
		activeAgent         bool
		agentTypeID         *int64
		creditDays          int
		saleAssociateID     *int64
		agentID             *int64
		receivableAccountID *int64
		createdAt           time.Time
		updatedAt           time.Time
	)
	if err := row.Scan(
		&id, &name, &phone, &mobile, &partnerType, &isAgent, &isSaleAssociate,
		&customer, &canPurchase, &activeAgent, &agentTypeID, &creditDays,
		&saleAssociateID, &agentID, &receivableAccountID, &createdAt, &updatedAt,
	); err != nil {
		return partner.Partner{}, err
	}
	return partner.Hydrate(
		id, name, phone, mobile, partner.Type(partnerType), isAgent,
		isSaleAssociate, customer, canPurchase, activeAgent, agentTypeID,
		creditDays, saleAssociateID, agentID, receivableAccountID,
		createdAt, updatedAt,
	), nil
}

func (r *PartnerRepository) GetPaginated(ctx context.Context, params *partner.FindParams) ([]partner.Partner, int64, error) {
	if params == nil {
		params = &partner.FindParams{}
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	where, args := repo.ToSQL(params.Filter, nil)

	var total int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM partners WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit)
	limitPos := placeholder(len(args))
	args = append(args, offset)
	offsetPos := placeholder(len(args))

	rows, err := tx.Query(ctx, `
SELECT `+partnerColumns+`
FROM partners
WHERE `+where+`
ORDER BY id
LIMIT $`+limitPos+` OFFSET $`+offsetPos, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []partner.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *PartnerRepository) GetByID(ctx context.Context, id int64) (partner.Partner, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return partner.Partner{}, err
	}
	p, err := scanPartner(tx.QueryRow(ctx, `
SELECT `+partnerColumns+`
FROM partners
WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return partner.Partner{}, partner.ErrNotFound
		}
		return partner.Partner{}, err
	}
	return p, nil
}

func (r *PartnerRepository) Create(ctx context.Context, p partner.Partner) (partner.Partner, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return partner.Partner{}, err
	}
	row := tx.QueryRow(ctx, `
INSERT INTO partners (
	name, phone, mobile, partner_type, is_agent, is_sale_associate, customer,
	can_purchase, active_agent, agent_type_id, credit_days, sale_associate_id,
	agent_id, receivable_account_id
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
RETURNING `+partnerColumns,
		p.Name(), p.Phone(), p.Mobile(), string(p.PartnerType()), p.IsAgent(),
		p.IsSaleAssociate(), p.Customer(), p.CanPurchase(), p.ActiveAgent(),
		p.AgentTypeID(), p.CreditDays(), p.SaleAssociateID(), p.AgentID(),
		p.ReceivableAccountID(),
	)
	return scanPartner(row)
}

func (r *PartnerRepository) Update(ctx context.Context, p partner.Partner) (partner.Partner, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return partner.Partner{}, err
	}
	row := tx.QueryRow(ctx, `
UPDATE partners
SET name = $2, phone = $3, mobile = $4, partner_type = $5, is_agent = $6,
	is_sale_associate = $7, customer = $8, can_purchase = $9, active_agent = $10,
	agent_type_id = $11, credit_days = $12, sale_associate_id = $13,
	agent_id = $14, receivable_account_id = $15, updated_at = now()
WHERE id = $1
RETURNING `+partnerColumns,
		p.ID(), p.Name(), p.Phone(), p.Mobile(), string(p.PartnerType()),
		p.IsAgent(), p.IsSaleAssociate(), p.Customer(), p.CanPurchase(),
		p.ActiveAgent(), p.AgentTypeID(), p.CreditDays(), p.SaleAssociateID(),
		p.AgentID(), p.ReceivableAccountID(),
	)
	updated, err := scanPartner(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return partner.Partner{}, partner.ErrNotFound
		}
		return partner.Partner{}, err
	}
	return updated, nil
}

func (r *PartnerRepository) Delete(ctx context.Context, id int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM partners WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return partner.ErrNotFound
	}
	return nil
}

func (r *PartnerRepository) CountPhoneUsage(ctx context.Context, value string, excludeID int64) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, `
SELECT COUNT(*)
FROM partners
WHERE id <> $1 AND (phone = $2 OR mobile = $2)
`, excludeID, value).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PartnerRepository) ListAgentsCreatedBetween(ctx context.Context, from, to time.Time) ([]partner.Partner, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+partnerColumns+`
FROM partners
WHERE partner_type = 'agent' AND created_at >= $1 AND created_at < $2
ORDER BY id
`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []partner.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
