package app

import (
	"context"

	"smart-spray/internal/domain/entity"
	"smart-spray/internal/domain/port"
)

type OperatorService struct {
	repo port.OperatorRepository
}

func NewOperatorService(repo port.OperatorRepository) *OperatorService {
	return &OperatorService{repo: repo}
}

func (s *OperatorService) Get(ctx context.Context, userID, chatID int64) (*entity.Operator, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *OperatorService) SetState(ctx context.Context, userID, chatID int64, state entity.OperatorState) (*entity.Operator, error) {
	op, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	op.SetState(state)
	if err := s.repo.Save(ctx, op); err != nil {
		return nil, err
	}

	return op, nil
}

func (s *OperatorService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.Operator, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingPhoto)
}

func (s *OperatorService) StartProcessing(ctx context.Context, userID, chatID int64) (*entity.Operator, error) {
	return s.SetState(ctx, userID, chatID, entity.StateProcessing)
}

func (s *OperatorService) Cancel(ctx context.Context, userID, chatID int64) (*entity.Operator, error) {
	return s.SetState(ctx, userID, chatID, entity.StateIdle)
}

// SetSubscribed включает или выключает уведомления о решениях
func (s *OperatorService) SetSubscribed(ctx context.Context, userID, chatID int64, subscribed bool) (*entity.Operator, error) {
	op, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	op.Subscribed = subscribed
	if err := s.repo.Save(ctx, op); err != nil {
		return nil, err
	}

	return op, nil
}

func (s *OperatorService) Subscribers(ctx context.Context) ([]*entity.Operator, error) {
	return s.repo.Subscribers(ctx)
}
