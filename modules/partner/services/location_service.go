package services

import (
	"context"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/aggregates/agentprofile"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/location"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/events"
	"github.com/acacia-erp/acacia-sdk/pkg/eventbus"
	"github.com/acacia-erp/acacia-sdk/pkg/hierarchy"
	"github.com/acacia-erp/acacia-sdk/pkg/metrics"
	"github.com/acacia-erp/acacia-sdk/pkg/repo"
)

// AgentsAction mirrors the "view agents" window action: a model name plus
// the filter clients should apply to it.
type AgentsAction struct {
	Model  string    `json:"model"`
	Domain repo.Cond `json:"domain"`
}

type LocationService struct {
	repo     location.Repository
	profiles agentprofile.Repository
	searcher *hierarchy.Searcher
	bus      eventbus.EventBus
	log      logrus.FieldLogger
}

func NewLocationService(
	repo location.Repository,
	profiles agentprofile.Repository,
	bus eventbus.EventBus,
	log logrus.FieldLogger,
) *LocationService {
	return &LocationService{
		repo:     repo,
		profiles: profiles,
		searcher: hierarchy.NewSearcher(repo),
		bus:      bus,
		log:      log,
	}
}

func (s *LocationService) GetByID(ctx context.Context, id int64) (location.Location, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return location.Location{}, mapError(err)
	}
	return l, nil
}

func (s *LocationService) List(ctx context.Context, limit, offset int) ([]location.Location, error) {
	out, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (s *LocationService) Create(ctx context.Context, l location.Location) (location.Location, error) {
	created, err := inTx(ctx, func(txCtx context.Context) (location.Location, error) {
		if err := s.searcher.CheckUniqueName(txCtx, l.ID, l.Name); err != nil {
			return location.Location{}, err
		}
		if err := s.searcher.CheckRecursion(txCtx, l.ID, l.ParentID); err != nil {
			return location.Location{}, err
		}
		return s.repo.Create(txCtx, l)
	})
	if err != nil {
		return location.Location{}, mapError(err)
	}
	s.bus.Publish(events.LocationCreated{Meta: events.NewMeta(), LocationID: created.ID, Name: created.Name})
	return created, nil
}

func (s *LocationService) Update(ctx context.Context, l location.Location) (location.Location, error) {
	updated, err := inTx(ctx, func(txCtx context.Context) (location.Location, error) {
		if err := s.searcher.CheckUniqueName(txCtx, l.ID, l.Name); err != nil {
			return location.Location{}, err
		}
		if err := s.searcher.CheckRecursion(txCtx, l.ID, l.ParentID); err != nil {
			return location.Location{}, err
		}
		return s.repo.Update(txCtx, l)
	})
	if err != nil {
		return location.Location{}, mapError(err)
	}
	s.bus.Publish(events.LocationUpdated{Meta: events.NewMeta(), LocationID: updated.ID, Name: updated.Name})
	return updated, nil
}

func (s *LocationService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapError(err)
	}
	s.bus.Publish(events.LocationDeleted{Meta: events.NewMeta(), LocationID: id})
	return nil
}

// SearchByName resolves slash-separated path queries ("Kenya / Nairobi")
// to matching locations with their full display names.
func (s *LocationService) SearchByName(ctx context.Context, name string, op repo.Op, limit int) ([]hierarchy.NameValue, error) {
	out, err := s.searcher.SearchByPath(ctx, name, nil, op, limit)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (s *LocationService) DisplayName(ctx context.Context, id int64) (string, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", mapError(err)
	}
	name, err := s.searcher.DisplayName(ctx, l.Node())
	if err != nil {
		return "", mapError(err)
	}
	return name, nil
}

// RecomputeRollup rebuilds the stored agent rollup for every given
// location: a breadth-first walk over the subtree collecting the agent
// profiles attached at each level.
func (s *LocationService) RecomputeRollup(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		count, err := inTx(ctx, func(txCtx context.Context) (int, error) {
			profileIDs, err := s.rollupSubtree(txCtx, id)
			if err != nil {
				return 0, err
			}
			if err := s.repo.SaveRollup(txCtx, id, profileIDs); err != nil {
				return 0, err
			}
			return len(profileIDs), nil
		})
		metrics.RecordRollupRun(err)
		if err != nil {
			return mapError(err)
		}
		s.bus.Publish(events.RollupRecomputed{Meta: events.NewMeta(), LocationID: id, AgentCount: count})
	}
	return nil
}

func (s *LocationService) rollupSubtree(ctx context.Context, id int64) ([]int64, error) {
	var collected []int64
	frontier := []int64{id}
	for len(frontier) > 0 {
		profileIDs, err := s.profiles.ListIDsByLocationIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}
		collected = append(collected, profileIDs...)
		frontier, err = s.repo.ChildIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}
	}
	slices.Sort(collected)
	return collected, nil
}

// GetAgents returns the window-action descriptor listing the rolled-up
// agent profiles of a location.
func (s *LocationService) GetAgents(ctx context.Context, id int64) (AgentsAction, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return AgentsAction{}, mapError(err)
	}
	ids := l.PartnerIDs
	if ids == nil {
		ids = []int64{}
	}
	return AgentsAction{
		Model:  "partner.agent_profile",
		Domain: repo.Cond{Field: "id", Op: repo.OpIn, Value: ids},
	}, nil
}
