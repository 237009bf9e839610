package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gudangpos/backend/internal/domain"
	"gudangpos/backend/internal/store"
)

// CreatePurchase records a supplier invoice and stocks its lines in. Stock
// is incremented per line as the invoice is walked; if a later line names a
// missing product the earlier increments stay applied and no purchase
// record is written.
func (s *Service) CreatePurchase(ctx context.Context, req domain.PurchaseCreateRequest) (domain.Purchase, error) {
	invoiceNo := strings.TrimSpace(req.InvoiceNo)
	supplier := strings.TrimSpace(req.SupplierName)
	if invoiceNo == "" || supplier == "" {
		return domain.Purchase{}, fmt.Errorf("%w: invoice_no and supplier_name are required", store.ErrInvalidInput)
	}
	if len(req.Items) == 0 {
		return domain.Purchase{}, fmt.Errorf("%w: at least one item is required", store.ErrInvalidInput)
	}

	items, total, err := s.applyPurchaseItems(ctx, req.Items)
	if err != nil {
		return domain.Purchase{}, err
	}

	purchase := domain.Purchase{
		ID:               uuid.NewString(),
		InvoiceNo:        invoiceNo,
		SupplierName:     supplier,
		Items:            items,
		TotalAmountCents: total,
		Active:           true,
		CreatedAt:        time.Now().UTC(),
	}

	created, err := s.repo.CreatePurchase(ctx, purchase)
	if err != nil {
		return domain.Purchase{}, err
	}

	s.invalidateSummary(ctx)
	s.logger.Info("purchase created",
		zap.String("purchase_id", created.ID),
		zap.String("invoice_no", created.InvoiceNo),
		zap.Int64("total_cents", created.TotalAmountCents),
		zap.Int("lines", len(created.Items)))
	return *created, nil
}

func (s *Service) ListPurchases(ctx context.Context) ([]domain.Purchase, error) {
	return s.repo.ListPurchases(ctx)
}

func (s *Service) GetPurchase(ctx context.Context, id string) (domain.Purchase, error) {
	purchase, err := s.repo.GetPurchase(ctx, id)
	if err != nil {
		return domain.Purchase{}, err
	}
	return *purchase, nil
}

// UpdatePurchase rewrites an invoice in two phases: every old line is
// reversed out of stock first, then the new lines are applied like a fresh
// purchase. The phases are not atomic; a missing product in the new lines
// aborts the update after the reversals (and earlier new lines) have
// already mutated stock, leaving the stored purchase untouched.
func (s *Service) UpdatePurchase(ctx context.Context, id string, req domain.PurchaseUpdateRequest) (domain.Purchase, error) {
	invoiceNo := strings.TrimSpace(req.InvoiceNo)
	supplier := strings.TrimSpace(req.SupplierName)
	if invoiceNo == "" || supplier == "" {
		return domain.Purchase{}, fmt.Errorf("%w: invoice_no and supplier_name are required", store.ErrInvalidInput)
	}
	if len(req.Items) == 0 {
		return domain.Purchase{}, fmt.Errorf("%w: at least one item is required", store.ErrInvalidInput)
	}

	existing, err := s.repo.GetPurchase(ctx, id)
	if err != nil {
		return domain.Purchase{}, err
	}

	s.reverseItems(ctx, existing.Items)

	items, total, err := s.applyPurchaseItems(ctx, req.Items)
	if err != nil {
		return domain.Purchase{}, err
	}

	now := time.Now().UTC()
	updated := *existing
	updated.InvoiceNo = invoiceNo
	updated.SupplierName = supplier
	updated.Items = items
	updated.TotalAmountCents = total
	updated.UpdatedAt = &now

	saved, err := s.repo.UpdatePurchase(ctx, updated)
	if err != nil {
		return domain.Purchase{}, err
	}

	s.invalidateSummary(ctx)
	s.logger.Info("purchase updated",
		zap.String("purchase_id", saved.ID),
		zap.Int64("total_cents", saved.TotalAmountCents))
	return *saved, nil
}

// DeletePurchase reverses the invoice out of stock and hides the record.
// A second delete of the same id reports not found.
func (s *Service) DeletePurchase(ctx context.Context, id string) error {
	existing, err := s.repo.GetPurchase(ctx, id)
	if err != nil {
		return err
	}

	s.reverseItems(ctx, existing.Items)

	if err := s.repo.SoftDeletePurchase(ctx, id, time.Now().UTC()); err != nil {
		return err
	}

	s.invalidateSummary(ctx)
	s.logger.Info("purchase deleted", zap.String("purchase_id", id))
	return nil
}

// applyPurchaseItems resolves and stocks in each line in order, returning
// the normalized lines and the accumulated total.
func (s *Service) applyPurchaseItems(ctx context.Context, lines []domain.PurchaseItem) ([]domain.PurchaseItem, int64, error) {
	items := make([]domain.PurchaseItem, 0, len(lines))
	var total int64
	for _, line := range lines {
		product, err := s.repo.GetProduct(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, 0, fmt.Errorf("%w: product %s", store.ErrNotFound, line.ProductID)
			}
			return nil, 0, err
		}
		if err := s.repo.AdjustStock(ctx, product.ID, line.Qty); err != nil {
			return nil, 0, err
		}
		total += int64(line.Qty) * line.PriceCents
		items = append(items, domain.PurchaseItem{
			ProductID:  product.ID,
			Qty:        line.Qty,
			PriceCents: line.PriceCents,
		})
	}
	return items, total, nil
}

// reverseItems decrements stock for each line, best effort: products that
// have vanished since the purchase was recorded are skipped. There is no
// lower bound, so stock can go negative.
func (s *Service) reverseItems(ctx context.Context, items []domain.PurchaseItem) {
	for _, item := range items {
		err := s.repo.AdjustStock(ctx, item.ProductID, -item.Qty)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("stock reversal failed",
				zap.String("product_id", item.ProductID),
				zap.Int("qty", item.Qty),
				zap.Error(err))
		}
	}
}
