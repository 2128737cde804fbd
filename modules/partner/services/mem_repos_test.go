package services

import (
	"context"
	"sort"
	"time"

	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/aggregates/agentprofile"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/aggregates/partner"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/account"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/agenttype"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/location"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/pinlog"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/smsmessage"
	"github.com/acacia-erp/acacia-sdk/pkg/hierarchy"
	"github.com/acacia-erp/acacia-sdk/pkg/repo"
	"github.com/acacia-erp/acacia-sdk/pkg/sms"
)

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type memLocationRepo struct {
	seq   int64
	items map[int64]location.Location
}

func newMemLocationRepo() *memLocationRepo {
	return &memLocationRepo{items: map[int64]location.Location{}}
}

func (r *memLocationRepo) add(name string, parentID *int64) location.Location {
	r.seq++
	l := location.Location{ID: r.seq, Name: name, ParentID: parentID, Active: true}
	r.items[l.ID] = l
	return l
}

func (r *memLocationRepo) getter(l location.Location) func(string) any {
	return func(field string) any {
		switch field {
		case "id":
			return l.ID
		case "name":
			return l.Name
		case "parent_id":
			return l.ParentID
		default:
			return nil
		}
	}
}

func (r *memLocationRepo) Search(_ context.Context, filter repo.Expr, limit int) ([]hierarchy.Node, error) {
	var out []hierarchy.Node
	for _, id := range sortedIDs(r.items) {
		l := r.items[id]
		if repo.Match(filter, r.getter(l)) {
			out = append(out, l.Node())
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *memLocationRepo) GetByID(_ context.Context, id int64) (location.Location, error) {
	l, ok := r.items[id]
	if !ok {
		return location.Location{}, location.ErrNotFound
	}
	return l, nil
}

func (r *memLocationRepo) List(_ context.Context, limit, offset int) ([]location.Location, error) {
	var out []location.Location
	for _, id := range sortedIDs(r.items) {
		out = append(out, r.items[id])
	}
	return out, nil
}

func (r *memLocationRepo) Create(_ context.Context, l location.Location) (location.Location, error) {
	r.seq++
	l.ID = r.seq
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	r.items[l.ID] = l
	return l, nil
}

func (r *memLocationRepo) Update(_ context.Context, l location.Location) (location.Location, error) {
	if _, ok := r.items[l.ID]; !ok {
		return location.Location{}, location.ErrNotFound
	}
	r.items[l.ID] = l
	return l, nil
}

func (r *memLocationRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.items[id]; !ok {
		return location.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memLocationRepo) ChildIDs(_ context.Context, parentIDs []int64) ([]int64, error) {
	parents := map[int64]struct{}{}
	for _, id := range parentIDs {
		parents[id] = struct{}{}
	}
	var out []int64
	for _, id := range sortedIDs(r.items) {
		l := r.items[id]
		if l.ParentID == nil {
			continue
		}
		if _, ok := parents[*l.ParentID]; ok {
			out = append(out, l.ID)
		}
	}
	return out, nil
}

func (r *memLocationRepo) SaveRollup(_ context.Context, id int64, profileIDs []int64) error {
	l, ok := r.items[id]
	if !ok {
		return location.ErrNotFound
	}
	l.PartnerIDs = profileIDs
	l.AgentCount = len(profileIDs)
	r.items[id] = l
	return nil
}

type memPartnerRepo struct {
	seq   int64
	items map[int64]partner.Partner
}

func newMemPartnerRepo() *memPartnerRepo {
	return &memPartnerRepo{items: map[int64]partner.Partner{}}
}

func (r *memPartnerRepo) withID(p partner.Partner, id int64, createdAt time.Time) partner.Partner {
	return partner.Hydrate(
		id, p.Name(), p.Phone(), p.Mobile(), p.PartnerType(), p.IsAgent(),
		p.IsSaleAssociate(), p.Customer(), p.CanPurchase(), p.ActiveAgent(),
		p.AgentTypeID(), p.CreditDays(), p.SaleAssociateID(), p.AgentID(),
		p.ReceivableAccountID(), createdAt, createdAt,
	)
}

func (r *memPartnerRepo) getter(p partner.Partner) func(string) any {
	return func(field string) any {
		switch field {
		case "id":
			return p.ID()
		case "name":
			return p.Name()
		case "phone":
			return p.Phone()
		case "mobile":
			return p.Mobile()
		case "partner_type":
			return string(p.PartnerType())
		default:
			return nil
		}
	}
}

func (r *memPartnerRepo) GetPaginated(_ context.Context, params *partner.FindParams) ([]partner.Partner, int64, error) {
	if params == nil {
		params = &partner.FindParams{}
	}
	var out []partner.Partner
	for _, id := range sortedIDs(r.items) {
		p := r.items[id]
		if repo.Match(params.Filter, r.getter(p)) {
			out = append(out, p)
			if params.Limit > 0 && len(out) >= params.Limit {
				break
			}
		}
	}
	return out, int64(len(out)), nil
}

func (r *memPartnerRepo) GetByID(_ context.Context, id int64) (partner.Partner, error) {
	p, ok := r.items[id]
	if !ok {
		return partner.Partner{}, partner.ErrNotFound
	}
	return p, nil
}

func (r *memPartnerRepo) Create(_ context.Context, p partner.Partner) (partner.Partner, error) {
	r.seq++
	created := r.withID(p, r.seq, time.Now())
	r.items[created.ID()] = created
	return created, nil
}

func (r *memPartnerRepo) Update(_ context.Context, p partner.Partner) (partner.Partner, error) {
	if _, ok := r.items[p.ID()]; !ok {
		return partner.Partner{}, partner.ErrNotFound
	}
	r.items[p.ID()] = p
	return p, nil
}

func (r *memPartnerRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.items[id]; !ok {
		return partner.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memPartnerRepo) CountPhoneUsage(_ context.Context, value string, excludeID int64) (int64, error) {
	var count int64
	for _, p := range r.items {
		if p.ID() == excludeID {
			continue
		}
		if p.Phone() == value || p.Mobile() == value {
			count++
		}
	}
	return count, nil
}

func (r *memPartnerRepo) ListAgentsCreatedBetween(_ context.Context, from, to time.Time) ([]partner.Partner, error) {
	var out []partner.Partner
	for _, id := range sortedIDs(r.items) {
		p := r.items[id]
		if p.PartnerType() != partner.TypeAgent {
			continue
		}
		if p.CreatedAt().Before(from) || !p.CreatedAt().Before(to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type memProfileRepo struct {
	seq   int64
	items map[int64]agentprofile.Profile
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{items: map[int64]agentprofile.Profile{}}
}

func (r *memProfileRepo) withID(p agentprofile.Profile, id int64, createdAt time.Time) agentprofile.Profile {
	return agentprofile.Hydrate(
		id, p.Name(), p.PartnerID(), p.Pin(), p.LocationID(), p.TerritoryID(),
		p.LocationTypeID(), p.WarehouseID(), p.TillNumber(), p.KraPin(),
		p.PhoneType(), p.Gender(), p.Latitude(), p.Longitude(), p.Directions(),
		p.AlternateContactName(), p.AlternateContactPhone(), p.BusinessName(),
		p.BusinessTypeIDs(), p.OrdersPerMonth(), p.NumberOfPermanentWorkers(),
		p.NumberOfCasualWorkers(), p.CreditDays(), p.PrepaymentsExempted(),
		p.CanEarnCommission(), createdAt, createdAt,
	)
}

func (r *memProfileRepo) GetPaginated(_ context.Context, params *agentprofile.FindParams) ([]agentprofile.Profile, int64, error) {
	var out []agentprofile.Profile
	for _, id := range sortedIDs(r.items) {
		out = append(out, r.items[id])
	}
	return out, int64(len(out)), nil
}

func (r *memProfileRepo) GetByID(_ context.Context, id int64) (agentprofile.Profile, error) {
	p, ok := r.items[id]
	if !ok {
		return agentprofile.Profile{}, agentprofile.ErrNotFound
	}
	return p, nil
}

func (r *memProfileRepo) GetByPartnerID(_ context.Context, partnerID int64) ([]agentprofile.Profile, error) {
	var out []agentprofile.Profile
	for _, id := range sortedIDs(r.items) {
		if r.items[id].PartnerID() == partnerID {
			out = append(out, r.items[id])
		}
	}
	return out, nil
}

func (r *memProfileRepo) Create(_ context.Context, p agentprofile.Profile) (agentprofile.Profile, error) {
	r.seq++
	created := r.withID(p, r.seq, time.Now())
	r.items[created.ID()] = created
	return created, nil
}

func (r *memProfileRepo) Update(_ context.Context, p agentprofile.Profile) (agentprofile.Profile, error) {
	if _, ok := r.items[p.ID()]; !ok {
		return agentprofile.Profile{}, agentprofile.ErrNotFound
	}
	r.items[p.ID()] = p
	return p, nil
}

func (r *memProfileRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.items[id]; !ok {
		return agentprofile.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memProfileRepo) ListIDsByLocationIDs(_ context.Context, locationIDs []int64) ([]int64, error) {
	want := map[int64]struct{}{}
	for _, id := range locationIDs {
		want[id] = struct{}{}
	}
	var out []int64
	for _, id := range sortedIDs(r.items) {
		p := r.items[id]
		if p.LocationID() == nil {
			continue
		}
		if _, ok := want[*p.LocationID()]; ok {
			out = append(out, p.ID())
		}
	}
	return out, nil
}

type memAgentTypeRepo struct {
	items map[int64]agenttype.AgentType
}

func (r *memAgentTypeRepo) GetByID(_ context.Context, id int64) (agenttype.AgentType, error) {
	t, ok := r.items[id]
	if !ok {
		return agenttype.AgentType{}, agenttype.ErrNotFound
	}
	return t, nil
}

func (r *memAgentTypeRepo) List(_ context.Context) ([]agenttype.AgentType, error) {
	var out []agenttype.AgentType
	for _, id := range sortedIDs(r.items) {
		out = append(out, r.items[id])
	}
	return out, nil
}

type memAccountRepo struct {
	items map[int64]account.Account
}

func (r *memAccountRepo) GetByID(_ context.Context, id int64) (account.Account, error) {
	a, ok := r.items[id]
	if !ok {
		return account.Account{}, account.ErrNoReceivable
	}
	return a, nil
}

func (r *memAccountRepo) FirstActiveReceivable(_ context.Context) (account.Account, error) {
	for _, id := range sortedIDs(r.items) {
		a := r.items[id]
		if a.InternalType == "receivable" && a.Active && !a.Deprecated {
			return a, nil
		}
	}
	return account.Account{}, account.ErrNoReceivable
}

type memPinLogRepo struct {
	seq   int64
	items []pinlog.PinLog
}

func (r *memPinLogRepo) Create(_ context.Context, l pinlog.PinLog) (pinlog.PinLog, error) {
	r.seq++
	l.ID = r.seq
	l.CreatedAt = time.Now()
	r.items = append(r.items, l)
	return l, nil
}

func (r *memPinLogRepo) ListByProfileID(_ context.Context, profileID int64) ([]pinlog.PinLog, error) {
	var out []pinlog.PinLog
	for _, l := range r.items {
		if l.ProfileID == profileID {
			out = append(out, l)
		}
	}
	return out, nil
}

type memSmsRepo struct {
	seq   int64
	items []smsmessage.SmsMessage
}

func (r *memSmsRepo) Create(_ context.Context, m smsmessage.SmsMessage) (smsmessage.SmsMessage, error) {
	r.seq++
	m.ID = r.seq
	m.CreatedAt = time.Now()
	r.items = append(r.items, m)
	return m, nil
}

func (r *memSmsRepo) ListByPartnerID(_ context.Context, partnerID int64) ([]smsmessage.SmsMessage, error) {
	var out []smsmessage.SmsMessage
	for _, m := range r.items {
		if m.PartnerID == partnerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memSmsRepo) CountByPartnerID(_ context.Context, partnerID int64) (int64, error) {
	out, _ := r.ListByPartnerID(context.Background(), partnerID)
	return int64(len(out)), nil
}

type stubGateway struct {
	calls  []sms.Message
	queued bool
	err    error
}

func (g *stubGateway) Queue(_ context.Context, m sms.Message) (bool, error) {
	g.calls = append(g.calls, m)
	return g.queued, g.err
}
