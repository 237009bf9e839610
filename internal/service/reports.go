package service

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"gudangpos/backend/internal/domain"
)

const reportDateLayout = "2006-01-02"

// DashboardSummary aggregates the headline numbers. The result is cached
// for a short TTL because dashboards poll it and every computation rescans
// sales and purchases.
func (s *Service) DashboardSummary(ctx context.Context) (domain.DashboardSummary, error) {
	if cached, found, err := s.summaries.Get(ctx); err != nil {
		s.logger.Warn("summary cache read failed", zap.Error(err))
	} else if found {
		return *cached, nil
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	purchases, err := s.repo.ListPurchases(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	expenses, err := s.repo.ListExpenses(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}

	summary := domain.DashboardSummary{
		TotalProducts: len(products),
		TotalSales:    len(sales),
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	for _, p := range products {
		if p.StockQty <= s.lowStock {
			summary.LowStockCount++
		}
	}
	for _, sale := range sales {
		summary.RevenueCents += sale.TotalAmountCents
	}
	for _, purchase := range purchases {
		for _, item := range purchase.Items {
			summary.PurchasedQty += item.Qty
		}
	}
	for _, expense := range expenses {
		summary.TotalExpensesCents += expense.AmountCents
	}

	for _, role := range []string{domain.RoleSuperAdmin, domain.RoleAdmin} {
		users, err := s.repo.ListUsersByRole(ctx, role)
		if err != nil {
			return domain.DashboardSummary{}, err
		}
		summary.AdminCount += len(users)
	}
	staff, err := s.repo.ListUsersByRole(ctx, domain.RoleStaff)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	summary.StaffCount = len(staff)

	if err := s.summaries.Set(ctx, &summary, s.summaryTTL); err != nil {
		s.logger.Warn("summary cache write failed", zap.Error(err))
	}
	return summary, nil
}

func (s *Service) SalesAnalysis(ctx context.Context, days int) (domain.SalesAnalysis, error) {
	if days < 1 {
		days = 7
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -(days - 1))

	sales, err := s.repo.ListSalesSince(ctx, from)
	if err != nil {
		return domain.SalesAnalysis{}, err
	}

	byDay := make(map[string]*domain.DailySalesPoint, days)
	points := make([]domain.DailySalesPoint, 0, days)
	for i := 0; i < days; i++ {
		date := from.AddDate(0, 0, i).Format(reportDateLayout)
		points = append(points, domain.DailySalesPoint{Date: date})
		byDay[date] = &points[len(points)-1]
	}
	for _, sale := range sales {
		point, ok := byDay[sale.CreatedAt.UTC().Format(reportDateLayout)]
		if !ok {
			continue
		}
		point.Transactions++
		point.RevenueCents += sale.TotalAmountCents
	}

	return domain.SalesAnalysis{Days: days, Points: points}, nil
}

func (s *Service) TopProducts(ctx context.Context, limit int) ([]domain.TopProduct, error) {
	if limit < 1 {
		limit = 5
	}

	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	names, err := s.productNames(ctx)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[string]*domain.TopProduct)
	for _, sale := range sales {
		for _, item := range sale.Items {
			entry, ok := byProduct[item.ProductID]
			if !ok {
				entry = &domain.TopProduct{
					ProductID: item.ProductID,
					Name:      names[item.ProductID],
					Barcode:   item.Barcode,
				}
				byProduct[item.ProductID] = entry
			}
			entry.QtySold += item.Qty
			entry.RevenueCents += int64(item.Qty) * item.PriceCents
		}
	}

	top := make([]domain.TopProduct, 0, len(byProduct))
	for _, entry := range byProduct {
		top = append(top, *entry)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].QtySold == top[j].QtySold {
			return top[i].RevenueCents > top[j].RevenueCents
		}
		return top[i].QtySold > top[j].QtySold
	})
	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func (s *Service) DailySalesReport(ctx context.Context, date string) (domain.DailySalesReport, error) {
	day, err := time.Parse(reportDateLayout, date)
	if err != nil {
		day = time.Now().UTC().Truncate(24 * time.Hour)
	}
	next := day.AddDate(0, 0, 1)

	sales, err := s.repo.ListSalesSince(ctx, day)
	if err != nil {
		return domain.DailySalesReport{}, err
	}

	report := domain.DailySalesReport{
		Date:  day.Format(reportDateLayout),
		Sales: make([]domain.Sale, 0, len(sales)),
	}
	for _, sale := range sales {
		if !sale.CreatedAt.Before(next) {
			continue
		}
		report.Transactions++
		report.TotalCents += sale.TotalAmountCents
		report.Sales = append(report.Sales, sale)
	}
	return report, nil
}

func (s *Service) MonthlySalesReport(ctx context.Context, year int, month int) (domain.MonthlySalesReport, error) {
	now := time.Now().UTC()
	if year < 1 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		month = int(now.Month())
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	next := from.AddDate(0, 1, 0)

	sales, err := s.repo.ListSalesSince(ctx, from)
	if err != nil {
		return domain.MonthlySalesReport{}, err
	}

	report := domain.MonthlySalesReport{
		Year:  year,
		Month: month,
		Sales: make([]domain.Sale, 0, len(sales)),
	}
	for _, sale := range sales {
		if !sale.CreatedAt.Before(next) {
			continue
		}
		report.Transactions++
		report.TotalCents += sale.TotalAmountCents
		report.Sales = append(report.Sales, sale)
	}
	return report, nil
}

// ProfitReport prices cost at the product's current purchase price, not
// the historical invoice price. Products deleted since their sales count
// revenue but zero cost.
func (s *Service) ProfitReport(ctx context.Context) (domain.ProfitReport, error) {
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return domain.ProfitReport{}, err
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.ProfitReport{}, err
	}

	costByID := make(map[string]int64, len(products))
	nameByID := make(map[string]string, len(products))
	for _, p := range products {
		costByID[p.ID] = p.PurchasePriceCents
		nameByID[p.ID] = p.Name
	}

	byProduct := make(map[string]*domain.ProductProfit)
	for _, sale := range sales {
		for _, item := range sale.Items {
			entry, ok := byProduct[item.ProductID]
			if !ok {
				entry = &domain.ProductProfit{ProductID: item.ProductID, Name: nameByID[item.ProductID]}
				byProduct[item.ProductID] = entry
			}
			entry.UnitsSold += item.Qty
			entry.RevenueCents += int64(item.Qty) * item.PriceCents
			entry.CostCents += int64(item.Qty) * costByID[item.ProductID]
		}
	}

	report := domain.ProfitReport{Products: make([]domain.ProductProfit, 0, len(byProduct))}
	for _, entry := range byProduct {
		entry.ProfitCents = entry.RevenueCents - entry.CostCents
		if entry.RevenueCents > 0 {
			entry.MarginPercent = math.Round(float64(entry.ProfitCents)/float64(entry.RevenueCents)*10000) / 100
		}
		report.Products = append(report.Products, *entry)
		report.TotalRevenueCents += entry.RevenueCents
		report.TotalCostCents += entry.CostCents
	}
	report.TotalProfitCents = report.TotalRevenueCents - report.TotalCostCents
	sort.Slice(report.Products, func(i, j int) bool {
		return report.Products[i].ProfitCents > report.Products[j].ProfitCents
	})
	return report, nil
}

func (s *Service) StockSummary(ctx context.Context) (domain.StockSummary, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.StockSummary{}, err
	}

	summary := domain.StockSummary{Items: make([]domain.StockSummaryItem, 0, len(products))}
	for _, p := range products {
		item := domain.StockSummaryItem{
			ProductID:        p.ID,
			Name:             p.Name,
			Barcode:          p.Barcode,
			StockQty:         p.StockQty,
			StockValueCents:  int64(p.StockQty) * p.PurchasePriceCents,
			RetailValueCents: int64(p.StockQty) * p.SellingPriceCents,
		}
		summary.Items = append(summary.Items, item)
		summary.TotalStockValueCents += item.StockValueCents
		summary.TotalRetailValueCents += item.RetailValueCents
	}
	return summary, nil
}

func (s *Service) LowStock(ctx context.Context, threshold int) (domain.LowStockReport, error) {
	if threshold < 1 {
		threshold = s.lowStock
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.LowStockReport{}, err
	}

	report := domain.LowStockReport{Threshold: threshold, Products: make([]domain.Product, 0, 8)}
	for _, p := range products {
		if p.StockQty <= threshold {
			report.Products = append(report.Products, p)
		}
	}
	return report, nil
}

func (s *Service) SlowMoving(ctx context.Context, days int) (domain.SlowMovingReport, error) {
	if days < 1 {
		days = 30
	}

	sold, err := s.soldQtySince(ctx, days)
	if err != nil {
		return domain.SlowMovingReport{}, err
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.SlowMovingReport{}, err
	}

	report := domain.SlowMovingReport{Days: days, Products: make([]domain.SlowMovingProduct, 0, 8)}
	for _, p := range products {
		if sold[p.ID] > 0 {
			continue
		}
		report.Products = append(report.Products, domain.SlowMovingProduct{
			ProductID: p.ID,
			Name:      p.Name,
			Barcode:   p.Barcode,
			StockQty:  p.StockQty,
		})
	}
	return report, nil
}

// RestockSuggestions proposes order quantities for low-stock products from
// their 30-day sales velocity: enough for two weeks of sales, with a floor
// of twice the low-stock threshold for products that barely sell.
func (s *Service) RestockSuggestions(ctx context.Context) (domain.RestockReport, error) {
	const windowDays = 30

	sold, err := s.soldQtySince(ctx, windowDays)
	if err != nil {
		return domain.RestockReport{}, err
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.RestockReport{}, err
	}

	report := domain.RestockReport{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Suggestions: make([]domain.RestockSuggestion, 0, 8),
	}
	for _, p := range products {
		if p.StockQty > s.lowStock {
			continue
		}
		rate := float64(sold[p.ID]) / windowDays
		suggested := int(math.Ceil(rate * 14))
		if floor := s.lowStock * 2; suggested < floor {
			suggested = floor
		}
		report.Suggestions = append(report.Suggestions, domain.RestockSuggestion{
			ProductID:    p.ID,
			Name:         p.Name,
			CurrentStock: p.StockQty,
			DailySales:   math.Round(rate*100) / 100,
			SuggestedQty: suggested,
		})
	}
	return report, nil
}

func (s *Service) DemandPrediction(ctx context.Context, days int) (domain.DemandReport, error) {
	if days < 1 {
		days = 30
	}

	sold, err := s.soldQtySince(ctx, days)
	if err != nil {
		return domain.DemandReport{}, err
	}
	names, err := s.productNames(ctx)
	if err != nil {
		return domain.DemandReport{}, err
	}

	report := domain.DemandReport{Days: days, Forecasts: make([]domain.DemandForecast, 0, len(sold))}
	for productID, qty := range sold {
		if qty < 1 {
			continue
		}
		avg := float64(qty) / float64(days)
		report.Forecasts = append(report.Forecasts, domain.DemandForecast{
			ProductID:        productID,
			Name:             names[productID],
			AvgDailyQty:      math.Round(avg*100) / 100,
			PredictedWeekQty: int(math.Ceil(avg * 7)),
		})
	}
	sort.Slice(report.Forecasts, func(i, j int) bool {
		return report.Forecasts[i].PredictedWeekQty > report.Forecasts[j].PredictedWeekQty
	})
	return report, nil
}

func (s *Service) SupplierPurchases(ctx context.Context) (domain.SupplierPurchaseReport, error) {
	purchases, err := s.repo.ListPurchases(ctx)
	if err != nil {
		return domain.SupplierPurchaseReport{}, err
	}

	bySupplier := make(map[string]*domain.SupplierPurchaseSummary)
	for _, purchase := range purchases {
		entry, ok := bySupplier[purchase.SupplierName]
		if !ok {
			entry = &domain.SupplierPurchaseSummary{SupplierName: purchase.SupplierName}
			bySupplier[purchase.SupplierName] = entry
		}
		entry.Purchases++
		entry.TotalCents += purchase.TotalAmountCents
		for _, item := range purchase.Items {
			entry.TotalQty += item.Qty
		}
	}

	report := domain.SupplierPurchaseReport{Suppliers: make([]domain.SupplierPurchaseSummary, 0, len(bySupplier))}
	for _, entry := range bySupplier {
		report.Suppliers = append(report.Suppliers, *entry)
	}
	sort.Slice(report.Suppliers, func(i, j int) bool {
		return report.Suppliers[i].TotalCents > report.Suppliers[j].TotalCents
	})
	return report, nil
}

func (s *Service) soldQtySince(ctx context.Context, days int) (map[string]int, error) {
	from := time.Now().UTC().AddDate(0, 0, -days)
	sales, err := s.repo.ListSalesSince(ctx, from)
	if err != nil {
		return nil, err
	}

	sold := make(map[string]int)
	for _, sale := range sales {
		for _, item := range sale.Items {
			sold[item.ProductID] += item.Qty
		}
	}
	return sold, nil
}

func (s *Service) productNames(ctx context.Context) (map[string]string, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return names, nil
}
