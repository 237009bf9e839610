package domain

import "time"

const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleStaff      = "staff"
)

const (
	PaymentModeCash = "cash"
	PaymentModeCard = "card"
	PaymentModeUPI  = "upi"
)

// Actor is the authenticated identity carried through request contexts.
type Actor struct {
	ID       string
	Username string
	Role     string
}

type User struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Password  string     `json:"-"`
	Role      string     `json:"role"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

type UserCreateRequest struct {
	Username string `json:"username" validate:"required,min=4"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type UserUpdateRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	ExpiresAt   string `json:"expires_at"`
}

type Category struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type CategoryCreateRequest struct {
	Name string `json:"name" validate:"required"`
}

type CategoryUpdateRequest struct {
	Name string `json:"name" validate:"required"`
}

type Product struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	CategoryID         string     `json:"category_id"`
	PurchasePriceCents int64      `json:"purchase_price_cents"`
	SellingPriceCents  int64      `json:"selling_price_cents"`
	Barcode            string     `json:"barcode"`
	StockQty           int        `json:"stock_qty"`
	Active             bool       `json:"active"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

type ProductCreateRequest struct {
	Name               string `json:"name" validate:"required"`
	CategoryID         string `json:"category_id" validate:"required"`
	PurchasePriceCents int64  `json:"purchase_price_cents" validate:"min=0"`
	SellingPriceCents  int64  `json:"selling_price_cents" validate:"min=0"`
	StockQty           int    `json:"stock_qty" validate:"min=0"`
}

type ProductUpdateRequest struct {
	Name               *string `json:"name,omitempty"`
	CategoryID         *string `json:"category_id,omitempty"`
	PurchasePriceCents *int64  `json:"purchase_price_cents,omitempty"`
	SellingPriceCents  *int64  `json:"selling_price_cents,omitempty"`
	StockQty           *int    `json:"stock_qty,omitempty"`
}

type PurchaseItem struct {
	ProductID  string `json:"product_id"`
	Qty        int    `json:"qty"`
	PriceCents int64  `json:"price_cents"`
}

type Purchase struct {
	ID               string         `json:"id"`
	InvoiceNo        string         `json:"invoice_no"`
	SupplierName     string         `json:"supplier_name"`
	Items            []PurchaseItem `json:"items"`
	TotalAmountCents int64          `json:"total_amount_cents"`
	Active           bool           `json:"active"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        *time.Time     `json:"updated_at,omitempty"`
}

type PurchaseCreateRequest struct {
	InvoiceNo    string         `json:"invoice_no" validate:"required"`
	SupplierName string         `json:"supplier_name" validate:"required"`
	Items        []PurchaseItem `json:"items" validate:"required,min=1"`
}

type PurchaseUpdateRequest struct {
	InvoiceNo    string         `json:"invoice_no" validate:"required"`
	SupplierName string         `json:"supplier_name" validate:"required"`
	Items        []PurchaseItem `json:"items" validate:"required,min=1"`
}

type SaleItem struct {
	ProductID  string `json:"product_id"`
	Barcode    string `json:"barcode"`
	Qty        int    `json:"qty"`
	PriceCents int64  `json:"price_cents"`
}

type Sale struct {
	ID               string     `json:"id"`
	BillNo           string     `json:"bill_no"`
	Items            []SaleItem `json:"items"`
	TotalAmountCents int64      `json:"total_amount_cents"`
	PaymentMode      string     `json:"payment_mode"`
	CreatedBy        string     `json:"created_by"`
	CreatedAt        time.Time  `json:"created_at"`
}

type SaleLineRequest struct {
	Barcode string `json:"barcode" validate:"required"`
	Qty     int    `json:"qty"`
}

type SaleCreateRequest struct {
	BillNo      string            `json:"bill_no" validate:"required"`
	PaymentMode string            `json:"payment_mode" validate:"required"`
	Items       []SaleLineRequest `json:"items" validate:"required,min=1"`
}

type Expense struct {
	ID          string     `json:"id"`
	Date        string     `json:"date"`
	Category    string     `json:"category"`
	AmountCents int64      `json:"amount_cents"`
	Description string     `json:"description"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type ExpenseCreateRequest struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Category    string `json:"category" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"min=0"`
	Description string `json:"description"`
}

type ExpenseUpdateRequest struct {
	Date        *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Category    *string `json:"category,omitempty"`
	AmountCents *int64  `json:"amount_cents,omitempty"`
	Description *string `json:"description,omitempty"`
}

type DashboardSummary struct {
	TotalProducts      int    `json:"total_products"`
	LowStockCount      int    `json:"low_stock_count"`
	TotalSales         int    `json:"total_sales"`
	RevenueCents       int64  `json:"revenue_cents"`
	PurchasedQty       int    `json:"purchased_qty"`
	TotalExpensesCents int64  `json:"total_expenses_cents"`
	AdminCount         int    `json:"admin_count"`
	StaffCount         int    `json:"staff_count"`
	GeneratedAt        string `json:"generated_at"`
}

type DailySalesPoint struct {
	Date         string `json:"date"`
	Transactions int    `json:"transactions"`
	RevenueCents int64  `json:"revenue_cents"`
}

type SalesAnalysis struct {
	Days   int               `json:"days"`
	Points []DailySalesPoint `json:"points"`
}

type TopProduct struct {
	ProductID    string `json:"product_id"`
	Name         string `json:"name"`
	Barcode      string `json:"barcode"`
	QtySold      int    `json:"qty_sold"`
	RevenueCents int64  `json:"revenue_cents"`
}

type DailySalesReport struct {
	Date         string `json:"date"`
	Transactions int    `json:"transactions"`
	TotalCents   int64  `json:"total_cents"`
	Sales        []Sale `json:"sales"`
}

type MonthlySalesReport struct {
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	Transactions int    `json:"transactions"`
	TotalCents   int64  `json:"total_cents"`
	Sales        []Sale `json:"sales"`
}

type ProductProfit struct {
	ProductID     string  `json:"product_id"`
	Name          string  `json:"name"`
	UnitsSold     int     `json:"units_sold"`
	RevenueCents  int64   `json:"revenue_cents"`
	CostCents     int64   `json:"cost_cents"`
	ProfitCents   int64   `json:"profit_cents"`
	MarginPercent float64 `json:"margin_percent"`
}

type ProfitReport struct {
	Products          []ProductProfit `json:"products"`
	TotalRevenueCents int64           `json:"total_revenue_cents"`
	TotalCostCents    int64           `json:"total_cost_cents"`
	TotalProfitCents  int64           `json:"total_profit_cents"`
}

type StockSummaryItem struct {
	ProductID        string `json:"product_id"`
	Name             string `json:"name"`
	Barcode          string `json:"barcode"`
	StockQty         int    `json:"stock_qty"`
	StockValueCents  int64  `json:"stock_value_cents"`
	RetailValueCents int64  `json:"retail_value_cents"`
}

type StockSummary struct {
	Items                 []StockSummaryItem `json:"items"`
	TotalStockValueCents  int64              `json:"total_stock_value_cents"`
	TotalRetailValueCents int64              `json:"total_retail_value_cents"`
}

type LowStockReport struct {
	Threshold int       `json:"threshold"`
	Products  []Product `json:"products"`
}

type SlowMovingProduct struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Barcode   string `json:"barcode"`
	StockQty  int    `json:"stock_qty"`
}

type SlowMovingReport struct {
	Days     int                 `json:"days"`
	Products []SlowMovingProduct `json:"products"`
}

type RestockSuggestion struct {
	ProductID    string  `json:"product_id"`
	Name         string  `json:"name"`
	CurrentStock int     `json:"current_stock"`
	DailySales   float64 `json:"daily_sales"`
	SuggestedQty int     `json:"suggested_qty"`
}

type RestockReport struct {
	GeneratedAt string              `json:"generated_at"`
	Suggestions []RestockSuggestion `json:"suggestions"`
}

type DemandForecast struct {
	ProductID        string  `json:"product_id"`
	Name             string  `json:"name"`
	AvgDailyQty      float64 `json:"avg_daily_qty"`
	PredictedWeekQty int     `json:"predicted_week_qty"`
}

type DemandReport struct {
	Days      int              `json:"days"`
	Forecasts []DemandForecast `json:"forecasts"`
}

type SupplierPurchaseSummary struct {
	SupplierName string `json:"supplier_name"`
	Purchases    int    `json:"purchases"`
	TotalCents   int64  `json:"total_cents"`
	TotalQty     int    `json:"total_qty"`
}

type SupplierPurchaseReport struct {
	Suppliers []SupplierPurchaseSummary `json:"suppliers"`
}
