package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gudangpos/backend/internal/domain"
	"gudangpos/backend/internal/store"
)

const expenseDateLayout = "2006-01-02"

func (s *Service) CreateExpense(ctx context.Context, req domain.ExpenseCreateRequest) (domain.Expense, error) {
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return domain.Expense{}, fmt.Errorf("%w: category is required", store.ErrInvalidInput)
	}
	if req.AmountCents < 0 {
		return domain.Expense{}, fmt.Errorf("%w: amount must not be negative", store.ErrInvalidInput)
	}
	if _, err := time.Parse(expenseDateLayout, req.Date); err != nil {
		return domain.Expense{}, fmt.Errorf("%w: date must be YYYY-MM-DD", store.ErrInvalidInput)
	}

	expense := domain.Expense{
		ID:          uuid.NewString(),
		Date:        req.Date,
		Category:    category,
		AmountCents: req.AmountCents,
		Description: strings.TrimSpace(req.Description),
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}

	created, err := s.repo.CreateExpense(ctx, expense)
	if err != nil {
		return domain.Expense{}, err
	}

	s.invalidateSummary(ctx)
	s.logger.Info("expense created",
		zap.String("expense_id", created.ID),
		zap.String("date", created.Date),
		zap.Int64("amount_cents", created.AmountCents))
	return *created, nil
}

func (s *Service) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	return s.repo.ListExpenses(ctx)
}

func (s *Service) GetExpense(ctx context.Context, id string) (domain.Expense, error) {
	expense, err := s.repo.GetExpense(ctx, id)
	if err != nil {
		return domain.Expense{}, err
	}
	return *expense, nil
}

func (s *Service) UpdateExpense(ctx context.Context, id string, req domain.ExpenseUpdateRequest) (domain.Expense, error) {
	if req.Date == nil && req.Category == nil && req.AmountCents == nil && req.Description == nil {
		return domain.Expense{}, fmt.Errorf("%w: empty update payload", store.ErrInvalidInput)
	}

	existing, err := s.repo.GetExpense(ctx, id)
	if err != nil {
		return domain.Expense{}, err
	}

	updated := *existing
	if req.Date != nil {
		if _, err := time.Parse(expenseDateLayout, *req.Date); err != nil {
			return domain.Expense{}, fmt.Errorf("%w: date must be YYYY-MM-DD", store.ErrInvalidInput)
		}
		updated.Date = *req.Date
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return domain.Expense{}, fmt.Errorf("%w: category must not be blank", store.ErrInvalidInput)
		}
		updated.Category = category
	}
	if req.AmountCents != nil {
		if *req.AmountCents < 0 {
			return domain.Expense{}, fmt.Errorf("%w: amount must not be negative", store.ErrInvalidInput)
		}
		updated.AmountCents = *req.AmountCents
	}
	if req.Description != nil {
		updated.Description = strings.TrimSpace(*req.Description)
	}

	now := time.Now().UTC()
	updated.UpdatedAt = &now

	saved, err := s.repo.UpdateExpense(ctx, updated)
	if err != nil {
		return domain.Expense{}, err
	}

	s.invalidateSummary(ctx)
	return *saved, nil
}

func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	if err := s.repo.SoftDeleteExpense(ctx, id, time.Now().UTC()); err != nil {
		return err
	}
	s.invalidateSummary(ctx)
	s.logger.Info("expense deleted", zap.String("expense_id", id))
	return nil
}
