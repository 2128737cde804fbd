package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/entities/territory"
	"github.com/acacia-erp/acacia-sdk/modules/partner/domain/events"
	"github.com/acacia-erp/acacia-sdk/pkg/eventbus"
	"github.com/acacia-erp/acacia-sdk/pkg/hierarchy"
	"github.com/acacia-erp/acacia-sdk/pkg/repo"
)

type TerritoryService struct {
	repo     territory.Repository
	searcher *hierarchy.Searcher
	bus      eventbus.EventBus
	log      logrus.FieldLogger
}

func NewTerritoryService(repo territory.Repository, bus eventbus.EventBus, log logrus.FieldLogger) *TerritoryService {
	return &TerritoryService{
		repo:     repo,
		searcher: hierarchy.NewSearcher(repo),
		bus:      bus,
		log:      log,
	}
}

func (s *TerritoryService) GetByID(ctx context.Context, id int64) (territory.Territory, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return territory.Territory{}, mapError(err)
	}
	return t, nil
}

func (s *TerritoryService) List(ctx context.Context, limit, offset int) ([]territory.Territory, error) {
	out, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (s *TerritoryService) Create(ctx context.Context, t territory.Territory) (territory.Territory, error) {
	created, err := inTx(ctx, func(txCtx context.Context) (territory.Territory, error) {
		if err := s.searcher.CheckUniqueName(txCtx, t.ID, t.Name); err != nil {
			return territory.Territory{}, err
		}
		if err := s.searcher.CheckRecursion(txCtx, t.ID, t.ParentID); err != nil {
			return territory.Territory{}, err
		}
		return s.repo.Create(txCtx, t)
	})
	if err != nil {
		return territory.Territory{}, mapError(err)
	}
	s.bus.Publish(events.TerritoryCreated{Meta: events.NewMeta(), TerritoryID: created.ID, Name: created.Name})
	return created, nil
}

func (s *TerritoryService) Update(ctx context.Context, t territory.Territory) (territory.Territory, error) {
	updated, err := inTx(ctx, func(txCtx context.Context) (territory.Territory, error) {
		if err := s.searcher.CheckUniqueName(txCtx, t.ID, t.Name); err != nil {
			return territory.Territory{}, err
		}
		if err := s.searcher.CheckRecursion(txCtx, t.ID, t.ParentID); err != nil {
			return territory.Territory{}, err
		}
		return s.repo.Update(txCtx, t)
	})
	if err != nil {
		return territory.Territory{}, mapError(err)
	}
	s.bus.Publish(events.TerritoryUpdated{Meta: events.NewMeta(), TerritoryID: updated.ID, Name: updated.Name})
	return updated, nil
}

func (s *TerritoryService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapError(err)
	}
	s.bus.Publish(events.TerritoryDeleted{Meta: events.NewMeta(), TerritoryID: id})
	return nil
}

func (s *TerritoryService) SearchByName(ctx context.Context, name string, op repo.Op, limit int) ([]hierarchy.NameValue, error) {
	out, err := s.searcher.SearchByPath(ctx, name, nil, op, limit)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (s *TerritoryService) DisplayName(ctx context.Context, id int64) (string, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", mapError(err)
	}
	name, err := s.searcher.DisplayName(ctx, t.Node())
	if err != nil {
		return "", mapError(err)
	}
	return name, nil
}
