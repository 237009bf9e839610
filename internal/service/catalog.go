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

func (s *Service) CreateCategory(ctx context.Context, req domain.CategoryCreateRequest) (domain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Category{}, fmt.Errorf("%w: category name is required", store.ErrInvalidInput)
	}

	category := domain.Category{
		ID:        uuid.NewString(),
		Name:      name,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		return domain.Category{}, err
	}

	s.logger.Info("category created", zap.String("category_id", created.ID), zap.String("name", created.Name))
	return *created, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) UpdateCategory(ctx context.Context, id string, req domain.CategoryUpdateRequest) (domain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Category{}, fmt.Errorf("%w: category name is required", store.ErrInvalidInput)
	}

	existing, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}

	now := time.Now().UTC()
	updated := *existing
	updated.Name = name
	updated.UpdatedAt = &now

	saved, err := s.repo.UpdateCategory(ctx, updated)
	if err != nil {
		return domain.Category{}, err
	}
	return *saved, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := s.repo.SoftDeleteCategory(ctx, id, time.Now().UTC()); err != nil {
		return err
	}
	s.logger.Info("category deleted", zap.String("category_id", id))
	return nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.CategoryID = strings.TrimSpace(req.CategoryID)

	if req.Name == "" || req.CategoryID == "" {
		return domain.Product{}, fmt.Errorf("%w: name and category_id are required", store.ErrInvalidInput)
	}
	if req.PurchasePriceCents < 0 || req.SellingPriceCents < 0 || req.StockQty < 0 {
		return domain.Product{}, fmt.Errorf("%w: prices and stock must not be negative", store.ErrInvalidInput)
	}
	if _, err := s.repo.GetCategory(ctx, req.CategoryID); err != nil {
		return domain.Product{}, fmt.Errorf("%w: category %s", store.ErrNotFound, req.CategoryID)
	}

	barcode, err := s.nextBarcode(ctx)
	if err != nil {
		return domain.Product{}, err
	}

	product := domain.Product{
		ID:                 uuid.NewString(),
		Name:               req.Name,
		CategoryID:         req.CategoryID,
		PurchasePriceCents: req.PurchasePriceCents,
		SellingPriceCents:  req.SellingPriceCents,
		Barcode:            barcode,
		StockQty:           req.StockQty,
		Active:             true,
		CreatedAt:          time.Now().UTC(),
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.invalidateSummary(ctx)
	s.logger.Info("product created",
		zap.String("product_id", created.ID),
		zap.String("barcode", created.Barcode),
		zap.Int("stock_qty", created.StockQty))
	return *created, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProductByBarcode(ctx context.Context, barcode string) (domain.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return domain.Product{}, fmt.Errorf("%w: barcode is required", store.ErrInvalidInput)
	}
	product, err := s.repo.GetProductByBarcode(ctx, barcode)
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	if req.Name == nil && req.CategoryID == nil && req.PurchasePriceCents == nil && req.SellingPriceCents == nil && req.StockQty == nil {
		return domain.Product{}, fmt.Errorf("%w: empty update payload", store.ErrInvalidInput)
	}

	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, fmt.Errorf("%w: name must not be blank", store.ErrInvalidInput)
		}
		updated.Name = name
	}
	if req.CategoryID != nil {
		categoryID := strings.TrimSpace(*req.CategoryID)
		if _, err := s.repo.GetCategory(ctx, categoryID); err != nil {
			return domain.Product{}, fmt.Errorf("%w: category %s", store.ErrNotFound, categoryID)
		}
		updated.CategoryID = categoryID
	}
	if req.PurchasePriceCents != nil {
		if *req.PurchasePriceCents < 0 {
			return domain.Product{}, fmt.Errorf("%w: purchase price must not be negative", store.ErrInvalidInput)
		}
		updated.PurchasePriceCents = *req.PurchasePriceCents
	}
	if req.SellingPriceCents != nil {
		if *req.SellingPriceCents < 0 {
			return domain.Product{}, fmt.Errorf("%w: selling price must not be negative", store.ErrInvalidInput)
		}
		updated.SellingPriceCents = *req.SellingPriceCents
	}
	if req.StockQty != nil {
		if *req.StockQty < 0 {
			return domain.Product{}, fmt.Errorf("%w: stock must not be negative", store.ErrInvalidInput)
		}
		updated.StockQty = *req.StockQty
	}

	now := time.Now().UTC()
	updated.UpdatedAt = &now

	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}

	s.invalidateSummary(ctx)
	return *saved, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.SoftDeleteProduct(ctx, id, time.Now().UTC()); err != nil {
		return err
	}
	s.invalidateSummary(ctx)
	s.logger.Info("product deleted", zap.String("product_id", id))
	return nil
}
