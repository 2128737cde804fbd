package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/aggregates/partner"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/account"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/agenttype"
	"github.com/acacia-erp/acacia-sdk/pkg/repo"
)

type partnerFixture struct {
	partners   *memPartnerRepo
	agentTypes *memAgentTypeRepo
	accounts   *memAccountRepo
	profiles   *memProfileRepo
	smsLog     *memSmsRepo
	gateway    *stubGateway
	svc        *PartnerService
}

func newPartnerFixture() *partnerFixture {
	f := &partnerFixture{
		partners:   newMemPartnerRepo(),
		agentTypes: &memAgentTypeRepo{items: map[int64]agenttype.AgentType{}},
		accounts:   &memAccountRepo{items: map[int64]account.Account{}},
		profiles:   newMemProfileRepo(),
		smsLog:     &memSmsRepo{},
		gateway:    &stubGateway{queued: true},
	}
	f.svc = NewPartnerService(
		f.partners, f.agentTypes, f.accounts, f.profiles, f.smsLog,
		f.gateway, nil, quietBus(), quietLog(), "Acacia",
	)
	return f
}

func TestPartnerService_Create_AgentActivation(t *testing.T) {
	ctx := context.Background()
	f := newPartnerFixture()
	accID := int64(11)
	f.agentTypes.items[1] = agenttype.AgentType{ID: 1, Name: "Duka", ReceivableAccountID: &accID}

	p, err := partner.New("Jane Wanjiku", partner.TypeAgent)
	require.NoError(t, err)
	typeID := int64(1)
	p.SetAgentTypeID(&typeID)

	created, err := f.svc.Create(ctx, p)
	require.NoError(t, err)
	assert.True(t, created.IsAgent())
	assert.True(t, created.CanPurchase())
	assert.True(t, created.ActiveAgent())
	require.NotNil(t, created.ReceivableAccountID())
	assert.Equal(t, accID, *created.ReceivableAccountID())
}

func TestPartnerService_Create_ReceivableFallback(t *testing.T) {
	ctx := context.Background()
	f := newPartnerFixture()
	f.agentTypes.items[1] = agenttype.AgentType{ID: 1, Name: "Duka"}
	f.accounts.items[3] = account.Account{ID: 3, Name: "Deprecated AR", InternalType: "receivable", Active: true, Deprecated: true}
	f.accounts.items[7] = account.Account{ID: 7, Name: "Trade Debtors", InternalType: "receivable", Active: true}

	p, err := partner.New("Jane Wanjiku", partner.TypeAgent)
	require.NoError(t, err)
	typeID := int64(1)
	p.SetAgentTypeID(&typeID)

	created, err := f.svc.Create(ctx, p)
	require.NoError(t, err)
	require.NotNil(t, created.ReceivableAccountID())
	assert.Equal(t, int64(7), *created.ReceivableAccountID())
}

func TestPartnerService_Create_NoReceivable(t *testing.T) {
	ctx := context.Background()
	f := newPartnerFixture()
	f.agentTypes.items[1] = agenttype.AgentType{ID: 1, Name: "Duka"}

	p, err := partner.New("Jane Wanjiku", partner.TypeAgent)
	require.NoError(t, err)
	typeID := int64(1)
	p.SetAgentTypeID(&typeID)

	_, err = f.svc.Create(ctx, p)
	require.Error(t, err)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusUnprocessableEntity, svcErr.Status)
	assert.Equal(t, "PARTNER_NO_RECEIVABLE", svcErr.Code)
}

func TestPartnerService_Create_PhoneDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newPartnerFixture()

	first, err := partner.New("Jane Wanjiku", partner.TypeCustomer)
	require.NoError(t, err)
	require.NoError(t, first.SetPhones("+254712345678", ""))
	_, err = f.svc.Create(ctx, first)
	require.NoError(t, err)

	// The same number is rejected as a second partner's mobile too.
	second, err := partner.New("Peter Otieno", partner.TypeCustomer)
	require.NoError(t, err)
	require.NoError(t, second.SetPhones("", "+254712345678"))
	_, err = f.svc.Create(ctx, second)
	require.Error(t, err)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "PARTNER_PHONE_DUP", svcErr.Code)
}

func TestPartnerService_ToggleActiveAgent_RecomputesCommission(t *testing.T) {
	ctx := context.Background()
	f := newPartnerFixture()

	p, err := partner.New("Jane Wanjiku", partner.TypeAgent)
	require.NoError(t, err)
	p.ActivateAgent()
	created, err := f.partners.Create(ctx, p)
	require.NoError(t, err)

	prof := addProfile(t, f.profiles, created.ID(), 1)
	prof.SetCanEarnCommission(true)
	_, err = f.profiles.Update(ctx, prof)
	require.NoError(t, err)

	toggled, err := f.svc.ToggleActiveAgent(ctx, created.ID())
	require.NoError(t, err)
	assert.False(t, toggled.ActiveAgent())
	assert.False(t, toggled.CanPurchase())

	got, err := f.profiles.GetByID(ctx, prof.ID())
	require.NoError(t, err)
	assert.False(t, got.CanEarnCommission())

	toggled, err = f.svc.ToggleActiveAgent(ctx, created.ID())
	require.NoError(t, err)
	assert.True(t, toggled.ActiveAgent())

	got, err = f.profiles.GetByID(ctx, prof.ID())
	require.NoError(t, err)
	assert.True(t, got.CanEarnCommission())
}

func TestPartnerService_SearchByNameOrPhone(t *testing.T) {
	ctx := context.Background()
	f := newPartnerFixture()

	jane, err := partner.New("Jane Wanjiku", partner.TypeCustomer)
	require.NoError(t, err)
	require.NoError(t, jane.SetPhones("+254712345678", ""))
	_, err = f.svc.Create(ctx, jane)
	require.NoError(t, err)

	peter, err := partner.New("Peter Otieno", partner.TypeCustomer)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, peter)
	require.NoError(t, err)

	// Positive operators match the phone column as well as the name.
	found, err := f.svc.SearchByNameOrPhone(ctx, "712345", repo.OpILike, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Jane Wanjiku", found[0].Name())

	// Negative operators only consider the name.
	found, err = f.svc.SearchByNameOrPhone(ctx, "Jane", repo.OpNotILike, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Peter Otieno", found[0].Name())
}

func TestPartnerService_SmsNewAgents(t *testing.T) {
	ctx := context.Background()
	f := newPartnerFixture()

	withPhone, err := partner.New("Jane Wanjiku", partner.TypeAgent)
	require.NoError(t, err)
	require.NoError(t, withPhone.SetPhones("+254712345678", ""))
	_, err = f.partners.Create(ctx, withPhone)
	require.NoError(t, err)

	noPhone, err := partner.New("Peter Otieno", partner.TypeAgent)
	require.NoError(t, err)
	_, err = f.partners.Create(ctx, noPhone)
	require.NoError(t, err)

	notAgent, err := partner.New("Mary Atieno", partner.TypeCustomer)
	require.NoError(t, err)
	_, err = f.partners.Create(ctx, notAgent)
	require.NoError(t, err)

	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)
	results, err := f.svc.SmsNewAgents(ctx, from, to, "")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Queued)
	assert.False(t, results[1].Queued)
	assert.Contains(t, results[0].Message, "Ajenti")

	// One gateway call: the phoneless agent never reaches the gateway.
	assert.Len(t, f.gateway.calls, 1)

	require.Len(t, f.smsLog.items, 2)
	assert.Equal(t, "New Agent", f.smsLog.items[0].Note)
	assert.Equal(t, "New Agent Failure (No Number)", f.smsLog.items[1].Note)
	assert.False(t, f.smsLog.items[1].Queued)
}

type stubInvoices struct {
	rows []DueInvoice
}

func (s *stubInvoices) ListDueInvoices(_ context.Context, _ time.Time) ([]DueInvoice, error) {
	return s.rows, nil
}

func TestPartnerService_SmsNightToPay(t *testing.T) {
	ctx := context.Background()
	f := newPartnerFixture()
	f.svc.invoices = &stubInvoices{rows: []DueInvoice{
		{PartnerID: 1, Name: "Jane Wanjiku", Phone: "+254712345678", AmountTotal: 12345.6},
		{PartnerID: 2, Name: "Peter Otieno", Phone: "", AmountTotal: 50},
	}}

	results, err := f.svc.SmsNightToPay(ctx, time.Time{}, "")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Queued)
	assert.Contains(t, results[0].Message, "KSHS 12,345.60")
	assert.False(t, results[1].Queued)
	assert.Len(t, f.gateway.calls, 1)
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{50, "50.00"},
		{999.999, "1,000.00"},
		{12345.6, "12,345.60"},
		{1234567.89, "1,234,567.89"},
		{-9876.5, "-9,876.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAmount(tt.in))
	}
}
