package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/aggregates/agentprofile"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/aggregates/partner"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/agenttype"
)

type profileFixture struct {
	profiles   *memProfileRepo
	partners   *memPartnerRepo
	agentTypes *memAgentTypeRepo
	pinLogs    *memPinLogRepo
	smsLog     *memSmsRepo
	gateway    *stubGateway
	svc        *AgentProfileService
}

func newProfileFixture() *profileFixture {
	f := &profileFixture{
		profiles:   newMemProfileRepo(),
		partners:   newMemPartnerRepo(),
		agentTypes: &memAgentTypeRepo{items: map[int64]agenttype.AgentType{}},
		pinLogs:    &memPinLogRepo{},
		smsLog:     &memSmsRepo{},
		gateway:    &stubGateway{queued: true},
	}
	f.svc = NewAgentProfileService(
		f.profiles, f.partners, f.agentTypes, f.pinLogs, f.smsLog,
		f.gateway, quietBus(), quietLog(), "Acacia",
	)
	return f
}

func (f *profileFixture) addPartner(t *testing.T, name, phone string, pt partner.Type) partner.Partner {
	t.Helper()
	p, err := partner.New(name, pt)
	require.NoError(t, err)
	if phone != "" {
		require.NoError(t, p.SetPhones(phone, ""))
	}
	if pt == partner.TypeAgent {
		p.ActivateAgent()
	}
	created, err := f.partners.Create(context.Background(), p)
	require.NoError(t, err)
	return created
}

func newProfileFor(t *testing.T, owner partner.Partner) agentprofile.Profile {
	t.Helper()
	p, err := agentprofile.New("", owner.ID())
	require.NoError(t, err)
	p.SetCoordinates(-1.2921, 36.8219)
	return p
}

func TestAgentProfileService_Create_IssuesPin(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture()
	owner := f.addPartner(t, "Jane Wanjiku", "+254712345678", partner.TypeAgent)

	created, err := f.svc.Create(ctx, newProfileFor(t, owner))
	require.NoError(t, err)

	assert.Equal(t, "Jane Wanjiku", created.Name())
	require.Len(t, created.Pin(), 4)
	assert.NotEqual(t, "0000", created.Pin())
	assert.NotEqual(t, "1234", created.Pin())
	assert.True(t, created.CanEarnCommission())

	// Exactly one notification leaves the building.
	require.Len(t, f.gateway.calls, 1)
	assert.Equal(t, "+254712345678", f.gateway.calls[0].To)
	assert.Contains(t, f.gateway.calls[0].Text, created.Pin())

	require.Len(t, f.smsLog.items, 1)
	assert.Equal(t, "PIN generation", f.smsLog.items[0].Note)
	assert.True(t, f.smsLog.items[0].Queued)
}

func TestAgentProfileService_Create_NoPhoneStillIssuesPin(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture()
	owner := f.addPartner(t, "Jane Wanjiku", "", partner.TypeAgent)

	created, err := f.svc.Create(ctx, newProfileFor(t, owner))
	require.NoError(t, err)

	assert.Len(t, created.Pin(), 4)
	assert.Empty(t, f.gateway.calls)
	assert.Empty(t, f.smsLog.items)
}

func TestAgentProfileService_Create_CustomerGetsNoPin(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture()
	owner := f.addPartner(t, "Mary Atieno", "+254700000001", partner.TypeCustomer)

	created, err := f.svc.Create(ctx, newProfileFor(t, owner))
	require.NoError(t, err)

	assert.Empty(t, created.Pin())
	assert.False(t, created.CanEarnCommission())
	assert.Empty(t, f.gateway.calls)
}

func TestAgentProfileService_Create_Validation(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture()
	typeInst := int64(1)
	typeField := int64(2)
	f.agentTypes.items[typeInst] = agenttype.AgentType{ID: typeInst, Name: "School", Category: agenttype.CategoryInstitution}
	f.agentTypes.items[typeField] = agenttype.AgentType{ID: typeField, Name: "Duka", Category: agenttype.CategoryField}

	expectCode := func(t *testing.T, err error, code string) {
		t.Helper()
		require.Error(t, err)
		var svcErr *ServiceError
		require.True(t, errors.As(err, &svcErr))
		assert.Equal(t, http.StatusUnprocessableEntity, svcErr.Status)
		assert.Equal(t, code, svcErr.Code)
	}

	t.Run("missing coordinates", func(t *testing.T) {
		owner := f.addPartner(t, "Jane Wanjiku", "", partner.TypeAgent)
		p, err := agentprofile.New("", owner.ID())
		require.NoError(t, err)
		_, err = f.svc.Create(ctx, p)
		expectCode(t, err, "PARTNER_GEO_REQUIRED")
	})

	t.Run("bad alternate phone", func(t *testing.T) {
		owner := f.addPartner(t, "Jane Wanjiku", "", partner.TypeAgent)
		p := newProfileFor(t, owner)
		p.SetAlternateContact("Peter", "0712345678")
		_, err := f.svc.Create(ctx, p)
		expectCode(t, err, "PARTNER_PHONE_FORMAT")
	})

	t.Run("institution needs workers", func(t *testing.T) {
		owner := f.addPartner(t, "Jane Wanjiku", "", partner.TypeAgent)
		owner.SetAgentTypeID(&typeInst)
		_, err := f.partners.Update(ctx, owner)
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, newProfileFor(t, owner))
		expectCode(t, err, "PARTNER_WORKERS_REQUIRED")

		// Both counts are required, not just one of the two.
		p := newProfileFor(t, owner)
		p.SetWorkerCounts(3, 0)
		_, err = f.svc.Create(ctx, p)
		expectCode(t, err, "PARTNER_WORKERS_REQUIRED")

		p = newProfileFor(t, owner)
		p.SetWorkerCounts(3, 2)
		_, err = f.svc.Create(ctx, p)
		require.NoError(t, err)
	})

	t.Run("field needs business", func(t *testing.T) {
		owner := f.addPartner(t, "Jane Wanjiku", "", partner.TypeAgent)
		owner.SetAgentTypeID(&typeField)
		_, err := f.partners.Update(ctx, owner)
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, newProfileFor(t, owner))
		expectCode(t, err, "PARTNER_BUSINESS_REQUIRED")

		p := newProfileFor(t, owner)
		p.SetBusiness("Mama Jane Shop", []int64{1})
		_, err = f.svc.Create(ctx, p)
		require.NoError(t, err)
	})
}

func TestAgentProfileService_Update_LogsPinChange(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture()
	owner := f.addPartner(t, "Jane Wanjiku", "", partner.TypeAgent)

	created, err := f.svc.Create(ctx, newProfileFor(t, owner))
	require.NoError(t, err)
	oldPin := created.Pin()
	require.NotEmpty(t, oldPin)

	created.AssignPin("9876")
	updated, err := f.svc.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "9876", updated.Pin())

	history, err := f.svc.PinHistory(ctx, created.ID())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, oldPin, history[0].OldPin)
	assert.Equal(t, "9876", history[0].NewPin)
	assert.Equal(t, owner.ID(), history[0].PartnerID)

	// An update that keeps the PIN leaves the trail alone.
	updated.SetDirections("Next to the market")
	_, err = f.svc.Update(ctx, updated)
	require.NoError(t, err)

	history, err = f.svc.PinHistory(ctx, created.ID())
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestAgentProfileService_ToggleCanEarnCommission(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture()
	owner := f.addPartner(t, "Jane Wanjiku", "", partner.TypeAgent)

	created, err := f.svc.Create(ctx, newProfileFor(t, owner))
	require.NoError(t, err)
	require.True(t, created.CanEarnCommission())

	toggled, err := f.svc.ToggleCanEarnCommission(ctx, created.ID())
	require.NoError(t, err)
	assert.False(t, toggled.CanEarnCommission())

	toggled, err = f.svc.ToggleCanEarnCommission(ctx, created.ID())
	require.NoError(t, err)
	assert.True(t, toggled.CanEarnCommission())
}
