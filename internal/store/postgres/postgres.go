package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"gudangpos/backend/internal/domain"
	"gudangpos/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL,
			password TEXT NOT NULL,
			role TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ,
			last_login TIMESTAMPTZ
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_username_active ON users (username) WHERE active`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_active ON users (email) WHERE active`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS categories_name_active ON categories (lower(name)) WHERE active`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category_id TEXT NOT NULL,
			purchase_price_cents BIGINT NOT NULL,
			selling_price_cents BIGINT NOT NULL,
			barcode TEXT NOT NULL,
			stock_qty INTEGER NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS products_barcode_active ON products (barcode) WHERE active`,
		`CREATE TABLE IF NOT EXISTS purchases (
			id TEXT PRIMARY KEY,
			invoice_no TEXT NOT NULL,
			supplier_name TEXT NOT NULL,
			total_amount_cents BIGINT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS purchase_items (
			purchase_id TEXT NOT NULL REFERENCES purchases(id) ON DELETE CASCADE,
			line_no INTEGER NOT NULL,
			product_id TEXT NOT NULL,
			qty INTEGER NOT NULL,
			price_cents BIGINT NOT NULL,
			PRIMARY KEY (purchase_id, line_no)
		)`,
		`CREATE TABLE IF NOT EXISTS sales (
			id TEXT PRIMARY KEY,
			bill_no TEXT NOT NULL,
			total_amount_cents BIGINT NOT NULL,
			payment_mode TEXT NOT NULL,
			created_by TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sale_items (
			sale_id TEXT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
			line_no INTEGER NOT NULL,
			product_id TEXT NOT NULL,
			barcode TEXT NOT NULL,
			qty INTEGER NOT NULL,
			price_cents BIGINT NOT NULL,
			PRIMARY KEY (sale_id, line_no)
		)`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			category TEXT NOT NULL,
			amount_cents BIGINT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return storeErr(err)
		}
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	if user.ID == "" || user.Username == "" {
		return nil, store.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password, role, active, created_at, updated_at, last_login)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, user.ID, user.Username, user.Email, user.Password, user.Role, user.Active, user.CreatedAt, nullTime(user.UpdatedAt), nullTime(user.LastLogin))
	if err != nil {
		return nil, storeErr(err)
	}
	created := user
	return &created, nil
}

const userColumns = `id, username, email, password, role, active, created_at, updated_at, last_login`

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND active`, id)
	return scanUser(row)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE username = $1 ORDER BY active DESC LIMIT 1
	`, username)
	return scanUser(row)
}

func (s *Store) FindUserByUsernameOrEmail(ctx context.Context, username string, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE active AND (username = $1 OR email = $2) LIMIT 1
	`, username, email)
	return scanUser(row)
}

func (s *Store) ListUsersByRole(ctx context.Context, role string) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE active AND role = $1 ORDER BY username
	`, role)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	users := make([]domain.User, 0, 16)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET username = $2, email = $3, password = $4, role = $5, active = $6, updated_at = $7
		WHERE id = $1 AND active
	`, user.ID, user.Username, user.Email, user.Password, user.Role, user.Active, nullTime(user.UpdatedAt))
	if err != nil {
		return nil, storeErr(err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	updated := user
	return &updated, nil
}

func (s *Store) SoftDeleteUser(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET active = false, updated_at = $2 WHERE id = $1 AND active
	`, id, at)
	if err != nil {
		return storeErr(err)
	}
	return requireAffected(res)
}

func (s *Store) RecordLogin(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
	if err != nil {
		return storeErr(err)
	}
	return requireAffected(res)
}

func (s *Store) CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	if category.ID == "" || category.Name == "" {
		return nil, store.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
	`, category.ID, category.Name, category.Active, category.CreatedAt, nullTime(category.UpdatedAt))
	if err != nil {
		return nil, storeErr(err)
	}
	created := category
	return &created, nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, active, created_at, updated_at FROM categories WHERE id = $1 AND active
	`, id)
	return scanCategory(row)
}

func (s *Store) GetCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, active, created_at, updated_at FROM categories WHERE lower(name) = lower($1) AND active
	`, name)
	return scanCategory(row)
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, active, created_at, updated_at FROM categories WHERE active ORDER BY name
	`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0, 32)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *category)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return categories, nil
}

func (s *Store) UpdateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = $2, updated_at = $3 WHERE id = $1 AND active
	`, category.ID, category.Name, nullTime(category.UpdatedAt))
	if err != nil {
		return nil, storeErr(err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	updated := category
	return &updated, nil
}

func (s *Store) SoftDeleteCategory(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE categories SET active = false, updated_at = $2 WHERE id = $1 AND active
	`, id, at)
	if err != nil {
		return storeErr(err)
	}
	return requireAffected(res)
}

const productColumns = `id, name, category_id, purchase_price_cents, selling_price_cents, barcode, stock_qty, active, created_at, updated_at`

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.Name == "" || product.Barcode == "" {
		return nil, store.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, category_id, purchase_price_cents, selling_price_cents, barcode, stock_qty, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, product.ID, product.Name, product.CategoryID, product.PurchasePriceCents, product.SellingPriceCents,
		product.Barcode, product.StockQty, product.Active, product.CreatedAt, nullTime(product.UpdatedAt))
	if err != nil {
		return nil, storeErr(err)
	}
	created := product
	return &created, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND active`, id)
	return scanProduct(row)
}

func (s *Store) GetProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE barcode = $1 AND active`, barcode)
	return scanProduct(row)
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products WHERE active ORDER BY name`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 128)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return products, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, category_id = $3, purchase_price_cents = $4, selling_price_cents = $5, stock_qty = $6, updated_at = $7
		WHERE id = $1 AND active
	`, product.ID, product.Name, product.CategoryID, product.PurchasePriceCents, product.SellingPriceCents,
		product.StockQty, nullTime(product.UpdatedAt))
	if err != nil {
		return nil, storeErr(err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	updated := product
	return &updated, nil
}

func (s *Store) SoftDeleteProduct(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products SET active = false, updated_at = $2 WHERE id = $1 AND active
	`, id, at)
	if err != nil {
		return storeErr(err)
	}
	return requireAffected(res)
}

func (s *Store) AdjustStock(ctx context.Context, productID string, delta int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products SET stock_qty = stock_qty + $2 WHERE id = $1
	`, productID, delta)
	if err != nil {
		return storeErr(err)
	}
	return requireAffected(res)
}

func (s *Store) CreatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	if purchase.ID == "" {
		return nil, store.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO purchases (id, invoice_no, supplier_name, total_amount_cents, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, purchase.ID, purchase.InvoiceNo, purchase.SupplierName, purchase.TotalAmountCents,
		purchase.Active, purchase.CreatedAt, nullTime(purchase.UpdatedAt))
	if err != nil {
		return nil, storeErr(err)
	}
	if err := insertPurchaseItems(ctx, tx, purchase.ID, purchase.Items); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr(err)
	}

	created := purchase
	return &created, nil
}

func (s *Store) GetPurchase(ctx context.Context, id string) (*domain.Purchase, error) {
	var (
		purchase  domain.Purchase
		updatedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, invoice_no, supplier_name, total_amount_cents, active, created_at, updated_at
		FROM purchases WHERE id = $1 AND active
	`, id).Scan(&purchase.ID, &purchase.InvoiceNo, &purchase.SupplierName, &purchase.TotalAmountCents,
		&purchase.Active, &purchase.CreatedAt, &updatedAt)
	if err != nil {
		return nil, storeErr(err)
	}
	purchase.UpdatedAt = timePtr(updatedAt)

	items, err := s.purchaseItems(ctx, purchase.ID)
	if err != nil {
		return nil, err
	}
	purchase.Items = items
	return &purchase, nil
}

func (s *Store) ListPurchases(ctx context.Context) ([]domain.Purchase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, invoice_no, supplier_name, total_amount_cents, active, created_at, updated_at
		FROM purchases WHERE active ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	purchases := make([]domain.Purchase, 0, 64)
	for rows.Next() {
		var (
			purchase  domain.Purchase
			updatedAt sql.NullTime
		)
		if err := rows.Scan(&purchase.ID, &purchase.InvoiceNo, &purchase.SupplierName, &purchase.TotalAmountCents,
			&purchase.Active, &purchase.CreatedAt, &updatedAt); err != nil {
			return nil, storeErr(err)
		}
		purchase.UpdatedAt = timePtr(updatedAt)
		purchases = append(purchases, purchase)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}

	for i := range purchases {
		items, err := s.purchaseItems(ctx, purchases[i].ID)
		if err != nil {
			return nil, err
		}
		purchases[i].Items = items
	}
	return purchases, nil
}

func (s *Store) UpdatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE purchases
		SET invoice_no = $2, supplier_name = $3, total_amount_cents = $4, updated_at = $5
		WHERE id = $1 AND active
	`, purchase.ID, purchase.InvoiceNo, purchase.SupplierName, purchase.TotalAmountCents, nullTime(purchase.UpdatedAt))
	if err != nil {
		return nil, storeErr(err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM purchase_items WHERE purchase_id = $1`, purchase.ID); err != nil {
		return nil, storeErr(err)
	}
	if err := insertPurchaseItems(ctx, tx, purchase.ID, purchase.Items); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr(err)
	}

	updated := purchase
	return &updated, nil
}

func (s *Store) SoftDeletePurchase(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE purchases SET active = false, updated_at = $2 WHERE id = $1 AND active
	`, id, at)
	if err != nil {
		return storeErr(err)
	}
	return requireAffected(res)
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.ID == "" {
		return nil, store.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, bill_no, total_amount_cents, payment_mode, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, sale.ID, sale.BillNo, sale.TotalAmountCents, sale.PaymentMode, sale.CreatedBy, sale.CreatedAt)
	if err != nil {
		return nil, storeErr(err)
	}
	for i, item := range sale.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sale_items (sale_id, line_no, product_id, barcode, qty, price_cents)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, sale.ID, i, item.ProductID, item.Barcode, item.Qty, item.PriceCents)
		if err != nil {
			return nil, storeErr(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr(err)
	}

	created := sale
	return &created, nil
}

func (s *Store) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	var sale domain.Sale
	err := s.db.QueryRowContext(ctx, `
		SELECT id, bill_no, total_amount_cents, payment_mode, created_by, created_at
		FROM sales WHERE id = $1
	`, id).Scan(&sale.ID, &sale.BillNo, &sale.TotalAmountCents, &sale.PaymentMode, &sale.CreatedBy, &sale.CreatedAt)
	if err != nil {
		return nil, storeErr(err)
	}

	items, err := s.saleItems(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return &sale, nil
}

func (s *Store) ListSales(ctx context.Context) ([]domain.Sale, error) {
	return s.listSales(ctx, `
		SELECT id, bill_no, total_amount_cents, payment_mode, created_by, created_at
		FROM sales ORDER BY created_at DESC
	`)
}

func (s *Store) ListSalesSince(ctx context.Context, from time.Time) ([]domain.Sale, error) {
	return s.listSales(ctx, `
		SELECT id, bill_no, total_amount_cents, payment_mode, created_by, created_at
		FROM sales WHERE created_at >= $1 ORDER BY created_at DESC
	`, from)
}

func (s *Store) listSales(ctx context.Context, query string, args ...any) ([]domain.Sale, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, 128)
	for rows.Next() {
		var sale domain.Sale
		if err := rows.Scan(&sale.ID, &sale.BillNo, &sale.TotalAmountCents, &sale.PaymentMode,
			&sale.CreatedBy, &sale.CreatedAt); err != nil {
			return nil, storeErr(err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}

	for i := range sales {
		items, err := s.saleItems(ctx, sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Items = items
	}
	return sales, nil
}

func (s *Store) CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
	if expense.ID == "" {
		return nil, store.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (id, date, category, amount_cents, description, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, expense.ID, expense.Date, expense.Category, expense.AmountCents, expense.Description,
		expense.Active, expense.CreatedAt, nullTime(expense.UpdatedAt))
	if err != nil {
		return nil, storeErr(err)
	}
	created := expense
	return &created, nil
}

func (s *Store) GetExpense(ctx context.Context, id string) (*domain.Expense, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, date, category, amount_cents, description, active, created_at, updated_at
		FROM expenses WHERE id = $1 AND active
	`, id)
	return scanExpense(row)
}

func (s *Store) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, category, amount_cents, description, active, created_at, updated_at
		FROM expenses WHERE active ORDER BY date DESC, created_at DESC
	`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	expenses := make([]domain.Expense, 0, 64)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return expenses, nil
}

func (s *Store) UpdateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE expenses
		SET date = $2, category = $3, amount_cents = $4, description = $5, updated_at = $6
		WHERE id = $1 AND active
	`, expense.ID, expense.Date, expense.Category, expense.AmountCents, expense.Description, nullTime(expense.UpdatedAt))
	if err != nil {
		return nil, storeErr(err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	updated := expense
	return &updated, nil
}

func (s *Store) SoftDeleteExpense(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE expenses SET active = false, updated_at = $2 WHERE id = $1 AND active
	`, id, at)
	if err != nil {
		return storeErr(err)
	}
	return requireAffected(res)
}

func (s *Store) purchaseItems(ctx context.Context, purchaseID string) ([]domain.PurchaseItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, qty, price_cents FROM purchase_items WHERE purchase_id = $1 ORDER BY line_no
	`, purchaseID)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	items := make([]domain.PurchaseItem, 0, 8)
	for rows.Next() {
		var item domain.PurchaseItem
		if err := rows.Scan(&item.ProductID, &item.Qty, &item.PriceCents); err != nil {
			return nil, storeErr(err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) saleItems(ctx context.Context, saleID string) ([]domain.SaleItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, barcode, qty, price_cents FROM sale_items WHERE sale_id = $1 ORDER BY line_no
	`, saleID)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	items := make([]domain.SaleItem, 0, 8)
	for rows.Next() {
		var item domain.SaleItem
		if err := rows.Scan(&item.ProductID, &item.Barcode, &item.Qty, &item.PriceCents); err != nil {
			return nil, storeErr(err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func insertPurchaseItems(ctx context.Context, tx *sql.Tx, purchaseID string, items []domain.PurchaseItem) error {
	for i, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO purchase_items (purchase_id, line_no, product_id, qty, price_cents)
			VALUES ($1,$2,$3,$4,$5)
		`, purchaseID, i, item.ProductID, item.Qty, item.PriceCents)
		if err != nil {
			return storeErr(err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user      domain.User
		updatedAt sql.NullTime
		lastLogin sql.NullTime
	)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.Role,
		&user.Active, &user.CreatedAt, &updatedAt, &lastLogin)
	if err != nil {
		return nil, storeErr(err)
	}
	user.UpdatedAt = timePtr(updatedAt)
	user.LastLogin = timePtr(lastLogin)
	return &user, nil
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var (
		category  domain.Category
		updatedAt sql.NullTime
	)
	err := row.Scan(&category.ID, &category.Name, &category.Active, &category.CreatedAt, &updatedAt)
	if err != nil {
		return nil, storeErr(err)
	}
	category.UpdatedAt = timePtr(updatedAt)
	return &category, nil
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		product   domain.Product
		updatedAt sql.NullTime
	)
	err := row.Scan(&product.ID, &product.Name, &product.CategoryID, &product.PurchasePriceCents,
		&product.SellingPriceCents, &product.Barcode, &product.StockQty, &product.Active,
		&product.CreatedAt, &updatedAt)
	if err != nil {
		return nil, storeErr(err)
	}
	product.UpdatedAt = timePtr(updatedAt)
	return &product, nil
}

func scanExpense(row rowScanner) (*domain.Expense, error) {
	var (
		expense   domain.Expense
		updatedAt sql.NullTime
	)
	err := row.Scan(&expense.ID, &expense.Date, &expense.Category, &expense.AmountCents,
		&expense.Description, &expense.Active, &expense.CreatedAt, &updatedAt)
	if err != nil {
		return nil, storeErr(err)
	}
	expense.UpdatedAt = timePtr(updatedAt)
	return &expense, nil
}

func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if isUniqueViolation(err) {
		return store.ErrConflict
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}
