package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/aggregates/agentprofile"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/location"
	"github.com/acacia-erp/acacia-sdk/pkg/eventbus"
	"github.com/acacia-erp/acacia-sdk/pkg/repo"
)

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func quietBus() eventbus.EventBus {
	return eventbus.NewEventPublisher(quietLog())
}

func addProfile(t *testing.T, profiles *memProfileRepo, partnerID, locationID int64) agentprofile.Profile {
	t.Helper()
	p, err := agentprofile.New("Duka", partnerID)
	require.NoError(t, err)
	p.SetLocationID(&locationID)
	created, err := profiles.Create(context.Background(), p)
	require.NoError(t, err)
	return created
}

func TestLocationService_RecomputeRollup(t *testing.T) {
	ctx := context.Background()
	locations := newMemLocationRepo()
	profiles := newMemProfileRepo()

	root := locations.add("Root", nil)
	child1 := locations.add("Child1", &root.ID)
	child2 := locations.add("Child2", &root.ID)

	addProfile(t, profiles, 1, child1.ID)
	addProfile(t, profiles, 2, root.ID)

	svc := NewLocationService(locations, profiles, quietBus(), quietLog())

	// Every id in the batch gets its own recompute.
	require.NoError(t, svc.RecomputeRollup(ctx, []int64{root.ID, child1.ID, child2.ID}))

	got, err := svc.GetByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AgentCount)

	got, err = svc.GetByID(ctx, child1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AgentCount)

	got, err = svc.GetByID(ctx, child2.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AgentCount)
	assert.Empty(t, got.PartnerIDs)
}

func TestLocationService_Create_DuplicateName(t *testing.T) {
	ctx := context.Background()
	locations := newMemLocationRepo()
	locations.add("Kenya", nil)

	svc := NewLocationService(locations, newMemProfileRepo(), quietBus(), quietLog())

	_, err := svc.Create(ctx, location.Location{Name: "Kenya", Active: true})
	require.Error(t, err)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusConflict, svcErr.Status)
	assert.Equal(t, "PARTNER_DUP_NAME", svcErr.Code)
}

func TestLocationService_Update_Recursion(t *testing.T) {
	ctx := context.Background()
	locations := newMemLocationRepo()
	root := locations.add("Root", nil)
	child := locations.add("Child", &root.ID)

	svc := NewLocationService(locations, newMemProfileRepo(), quietBus(), quietLog())

	// Reparenting the root under its own descendant must fail and leave
	// the tree unchanged.
	moved := root
	moved.ParentID = &child.ID
	_, err := svc.Update(ctx, moved)
	require.Error(t, err)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "PARTNER_RECURSION", svcErr.Code)

	stored, err := svc.GetByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ParentID)
}

func TestLocationService_SearchByName_Symmetry(t *testing.T) {
	ctx := context.Background()
	locations := newMemLocationRepo()
	root := locations.add("Kenya", nil)
	nairobi := locations.add("Nairobi", &root.ID)

	svc := NewLocationService(locations, newMemProfileRepo(), quietBus(), quietLog())

	display, err := svc.DisplayName(ctx, nairobi.ID)
	require.NoError(t, err)
	require.Equal(t, "Kenya / Nairobi", display)

	found, err := svc.SearchByName(ctx, display, "", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, nairobi.ID, found[0].ID)
	assert.Equal(t, display, found[0].DisplayName)
}

func TestLocationService_GetAgents(t *testing.T) {
	ctx := context.Background()
	locations := newMemLocationRepo()
	profiles := newMemProfileRepo()
	root := locations.add("Root", nil)
	child := locations.add("Child", &root.ID)

	p1 := addProfile(t, profiles, 1, child.ID)
	p2 := addProfile(t, profiles, 2, root.ID)

	svc := NewLocationService(locations, profiles, quietBus(), quietLog())
	require.NoError(t, svc.RecomputeRollup(ctx, []int64{root.ID}))

	action, err := svc.GetAgents(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, "partner.agent_profile", action.Model)
	assert.Equal(t, "id", action.Domain.Field)
	assert.Equal(t, repo.OpIn, action.Domain.Op)
	assert.ElementsMatch(t, []int64{p1.ID(), p2.ID()}, action.Domain.Value)
}
