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

// CreateSale stocks out each scanned line in order. The per-line guard is
// check-then-decrement without a lock, and there is no rollback: if line N
// fails, lines 1..N-1 stay decremented and no sale record is written.
// The unit price is snapshotted from the product's current selling price.
func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (domain.Sale, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.Sale{}, fmt.Errorf("missing actor")
	}

	billNo := strings.TrimSpace(req.BillNo)
	paymentMode := strings.TrimSpace(req.PaymentMode)
	if billNo == "" || paymentMode == "" {
		return domain.Sale{}, fmt.Errorf("%w: bill_no and payment_mode are required", store.ErrInvalidInput)
	}
	if len(req.Items) == 0 {
		return domain.Sale{}, fmt.Errorf("%w: at least one item is required", store.ErrInvalidInput)
	}

	items := make([]domain.SaleItem, 0, len(req.Items))
	var total int64
	for _, line := range req.Items {
		barcode := strings.TrimSpace(line.Barcode)
		product, err := s.repo.GetProductByBarcode(ctx, barcode)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Sale{}, fmt.Errorf("%w: product not found for barcode %s", store.ErrNotFound, barcode)
			}
			return domain.Sale{}, err
		}
		if product.StockQty < line.Qty {
			return domain.Sale{}, fmt.Errorf("%w: insufficient stock for %s", store.ErrInsufficientStock, product.Name)
		}
		if err := s.repo.AdjustStock(ctx, product.ID, -line.Qty); err != nil {
			return domain.Sale{}, err
		}
		total += int64(line.Qty) * product.SellingPriceCents
		items = append(items, domain.SaleItem{
			ProductID:  product.ID,
			Barcode:    product.Barcode,
			Qty:        line.Qty,
			PriceCents: product.SellingPriceCents,
		})
	}

	sale := domain.Sale{
		ID:               uuid.NewString(),
		BillNo:           billNo,
		Items:            items,
		TotalAmountCents: total,
		PaymentMode:      paymentMode,
		CreatedBy:        actor.ID,
		CreatedAt:        time.Now().UTC(),
	}

	created, err := s.repo.CreateSale(ctx, sale)
	if err != nil {
		return domain.Sale{}, err
	}

	s.invalidateSummary(ctx)
	s.logger.Info("sale created",
		zap.String("sale_id", created.ID),
		zap.String("bill_no", created.BillNo),
		zap.Int64("total_cents", created.TotalAmountCents),
		zap.String("created_by", created.CreatedBy))
	return *created, nil
}

func (s *Service) ListSales(ctx context.Context) ([]domain.Sale, error) {
	return s.repo.ListSales(ctx)
}

func (s *Service) GetSale(ctx context.Context, id string) (domain.Sale, error) {
	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return domain.Sale{}, err
	}
	return *sale, nil
}
