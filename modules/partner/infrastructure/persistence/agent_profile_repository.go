package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/aggregates/agentprofile"
	"github.com/acacia-erp/acacia-sdk/pkg/composables"
	"github.com/acacia-erp/acacia-sdk/pkg/repo"
)

const profileColumns = `
id, name, partner_id, pin, location_id, territory_id, location_type_id,
warehouse_id, till_number, kra_pin, phone_type, gender, latitude, longitude,
directions, alternate_contact_name, alternate_contact_phone, business_name,
orders_per_month, number_of_permanent_workers, number_of_casual_workers,
credit_days, prepayments_exempted, can_earn_commission, created_at, updated_at`

type AgentProfileRepository struct{}

func NewAgentProfileRepository() agentprofile.Repository {
	return &AgentProfileRepository{}
}

func scanProfile(row pgx.Row) (agentprofile.Profile, error) {
	var (
		id                       int64
		name                     string
		partnerID                int64
		pin                      string
		locationID               *int64
		territoryID              *int64
		locationTypeID           *int64
		warehouseID              *int64
		tillNumber               string
		kraPin                   string
		phoneType                string
		gender                   string
		latitude                 float64
		longitude                float64
		directions               string
		alternateContactName     string
		alternateContactPhone    string
		businessName             string
		ordersPerMonth           int
		numberOfPermanentWorkers int
		numberOfCasualWorkers    int
		creditDays               int
		prepaymentsExempted      bool
		canEarnCommission        bool
		createdAt                time.Time
		updatedAt                time.Time
	)
	if err := row.Scan(
		&id, &name, &partnerID, &pin, &locationID, &territoryID, &locationTypeID,
		&warehouseID, &tillNumber, &kraPin, &phoneType, &gender, &latitude,
		&longitude, &directions, &alternateContactName, &alternateContactPhone,
		&businessName, &ordersPerMonth, &numberOfPermanentWorkers,
		&numberOfCasualWorkers, &creditDays, &prepaymentsExempted,
		&canEarnCommission, &createdAt, &updatedAt,
	); err != nil {
		return agentprofile.Profile{}, err
	}
	return agentprofile.Hydrate(
		id, name, partnerID, pin, locationID, territoryID, locationTypeID,
		warehouseID, tillNumber, kraPin, phoneType, gender, latitude, longitude,
		directions, alternateContactName, alternateContactPhone, businessName,
		nil, ordersPerMonth, numberOfPermanentWorkers, numberOfCasualWorkers,
		creditDays, prepaymentsExempted, canEarnCommission, createdAt, updatedAt,
	), nil
}

func (r *AgentProfileRepository) loadBusinessTypes(ctx context.Context, tx repo.Tx, p *agentprofile.Profile) error {
	rows, err := tx.Query(ctx, `
SELECT business_type_id
FROM agent_profile_business_types
WHERE profile_id = $1
ORDER BY business_type_id
`, p.ID())
	if err != nil {
		return err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	p.SetBusiness(p.BusinessName(), ids)
	return nil
}

func (r *AgentProfileRepository) saveBusinessTypes(ctx context.Context, tx repo.Tx, profileID int64, ids []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM agent_profile_business_types WHERE profile_id = $1`, profileID); err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := tx.Exec(ctx, `
INSERT INTO agent_profile_business_types (profile_id, business_type_id)
VALUES ($1, $2)
`, profileID, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *AgentProfileRepository) GetPaginated(ctx context.Context, params *agentprofile.FindParams) ([]agentprofile.Profile, int64, error) {
	if params == nil {
		params = &agentprofile.FindParams{}
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
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM agent_profiles WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit)
	limitPos := placeholder(len(args))
	args = append(args, offset)
	offsetPos := placeholder(len(args))

	rows, err := tx.Query(ctx, `
SELECT `+profileColumns+`
FROM agent_profiles
WHERE `+where+`
ORDER BY id
LIMIT $`+limitPos+` OFFSET $`+offsetPos, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []agentprofile.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range out {
		if err := r.loadBusinessTypes(ctx, tx, &out[i]); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

func (r *AgentProfileRepository) GetByID(ctx context.Context, id int64) (agentprofile.Profile, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return agentprofile.Profile{}, err
	}
	p, err := scanProfile(tx.QueryRow(ctx, `
SELECT `+profileColumns+`
FROM agent_profiles
WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return agentprofile.Profile{}, agentprofile.ErrNotFound
		}
		return agentprofile.Profile{}, err
	}
	if err := r.loadBusinessTypes(ctx, tx, &p); err != nil {
		return agentprofile.Profile{}, err
	}
	return p, nil
}

func (r *AgentProfileRepository) GetByPartnerID(ctx context.Context, partnerID int64) ([]agentprofile.Profile, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+profileColumns+`
FROM agent_profiles
WHERE partner_id = $1
ORDER BY id
`, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []agentprofile.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadBusinessTypes(ctx, tx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *AgentProfileRepository) Create(ctx context.Context, p agentprofile.Profile) (agentprofile.Profile, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return agentprofile.Profile{}, err
	}
	row := tx.QueryRow(ctx, `
INSERT INTO agent_profiles (
	name, partner_id, pin, location_id, territory_id, location_type_id,
	warehouse_id, till_number, kra_pin, phone_type, gender, latitude, longitude,
	directions, alternate_contact_name, alternate_contact_phone, business_name,
	orders_per_month, number_of_permanent_workers, number_of_casual_workers,
	credit_days, prepayments_exempted, can_earn_commission
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
RETURNING `+profileColumns,
		p.Name(), p.PartnerID(), p.Pin(), p.LocationID(), p.TerritoryID(),
		p.LocationTypeID(), p.WarehouseID(), p.TillNumber(), p.KraPin(),
		p.PhoneType(), p.Gender(), p.Latitude(), p.Longitude(), p.Directions(),
		p.AlternateContactName(), p.AlternateContactPhone(), p.BusinessName(),
		p.OrdersPerMonth(), p.NumberOfPermanentWorkers(), p.NumberOfCasualWorkers(),
		p.CreditDays(), p.PrepaymentsExempted(), p.CanEarnCommission(),
	)
	created, err := scanProfile(row)
	if err != nil {
		return agentprofile.Profile{}, err
	}
	if err := r.saveBusinessTypes(ctx, tx, created.ID(), p.BusinessTypeIDs()); err != nil {
		return agentprofile.Profile{}, err
	}
	created.SetBusiness(created.BusinessName(), p.BusinessTypeIDs())
	return created, nil
}

func (r *AgentProfileRepository) Update(ctx context.Context, p agentprofile.Profile) (agentprofile.Profile, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return agentprofile.Profile{}, err
	}
	row := tx.QueryRow(ctx, `
UPDATE agent_profiles
SET name = $2, pin = $3, location_id = $4, territory_id = $5,
	location_type_id = $6, warehouse_id = $7, till_number = $8, kra_pin = $9,
	phone_type = $10, gender = $11, latitude = $12, longitude = $13,
	directions = $14, alternate_contact_name = $15, alternate_contact_phone = $16,
	business_name = $17, orders_per_month = $18, number_of_permanent_workers = $19,
	number_of_casual_workers = $20, credit_days = $21, prepayments_exempted = $22,
	can_earn_commission = $23, updated_at = now()
WHERE id = $1
RETURNING `+profileColumns,
		p.ID(), p.Name(), p.Pin(), p.LocationID(), p.TerritoryID(),
		p.LocationTypeID(), p.WarehouseID(), p.TillNumber(), p.KraPin(),
		p.PhoneType(), p.Gender(), p.Latitude(), p.Longitude(), p.Directions(),
		p.AlternateContactName(), p.AlternateContactPhone(), p.BusinessName(),
		p.OrdersPerMonth(), p.NumberOfPermanentWorkers(), p.NumberOfCasualWorkers(),
		p.CreditDays(), p.PrepaymentsExempted(), p.CanEarnCommission(),
	)
	updated, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return agentprofile.Profile{}, agentprofile.ErrNotFound
		}
		return agentprofile.Profile{}, err
	}
	if err := r.saveBusinessTypes(ctx, tx, updated.ID(), p.BusinessTypeIDs()); err != nil {
		return agentprofile.Profile{}, err
	}
	updated.SetBusiness(updated.BusinessName(), p.BusinessTypeIDs())
	return updated, nil
}

func (r *AgentProfileRepository) Delete(ctx context.Context, id int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM agent_profiles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return agentprofile.ErrNotFound
	}
	return nil
}

func (r *AgentProfileRepository) ListIDsByLocationIDs(ctx context.Context, locationIDs []int64) ([]int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT id FROM agent_profiles WHERE location_id = ANY($1) ORDER BY id
`, locationIDs)
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
