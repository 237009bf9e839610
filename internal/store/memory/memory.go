package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gudangpos/backend/internal/domain"
	"gudangpos/backend/internal/store"
)

type Store struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	categories map[string]domain.Category
	products   map[string]domain.Product
	purchases  map[string]domain.Purchase
	sales      map[string]domain.Sale
	expenses   map[string]domain.Expense
}

func New() *Store {
	return &Store{
		users:      make(map[string]domain.User),
		categories: make(map[string]domain.Category),
		products:   make(map[string]domain.Product),
		purchases:  make(map[string]domain.Purchase),
		sales:      make(map[string]domain.Sale),
		expenses:   make(map[string]domain.Expense),
	}
}

// seedUsers builds the initial in-memory accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD
// environment variables. If unset, hardcoded dev defaults are used with a
// warning printed to stdout. These credentials are never used in production
// (the backend uses PostgreSQL when DATABASE_URL is set).
func seedUsers(s *Store) {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	staffPwd := envOr("SEED_STAFF_PASSWORD", "staff123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_STAFF_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD to override.")
	}

	now := time.Now().UTC()
	for _, u := range []struct {
		username string
		email    string
		password string
		role     string
	}{
		{"admin", "admin@gudangpos.local", adminPwd, domain.RoleAdmin},
		{"staff", "staff@gudangpos.local", staffPwd, domain.RoleStaff},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		id := uuid.NewString()
		s.users[id] = domain.User{
			ID:        id,
			Username:  u.username,
			Email:     u.email,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()

	categories := []domain.Category{
		{ID: uuid.NewString(), Name: "Sembako", Active: true, CreatedAt: now},
		{ID: uuid.NewString(), Name: "Minuman", Active: true, CreatedAt: now},
		{ID: uuid.NewString(), Name: "Snack", Active: true, CreatedAt: now},
		{ID: uuid.NewString(), Name: "Rumah Tangga", Active: true, CreatedAt: now},
	}
	for _, c := range categories {
		s.categories[c.ID] = c
	}

	products := []struct {
		name     string
		category int
		buy      int64
		sell     int64
		barcode  string
		stock    int
	}{
		{"Mie Goreng Instan", 0, 2800, 3500, "1001", 120},
		{"Telur 10 Butir", 0, 23000, 26500, "1002", 40},
		{"Gula 1kg", 0, 15500, 17400, "1003", 35},
		{"Air Mineral 600ml", 1, 3200, 3900, "1004", 200},
		{"Kopi Sachet", 1, 1700, 2600, "1005", 150},
		{"Teh Celup", 1, 7600, 9800, "1006", 60},
		{"Keripik Singkong", 2, 8100, 12800, "1007", 45},
		{"Coklat Batang", 2, 5600, 8600, "1008", 50},
		{"Sabun Mandi", 3, 5000, 7400, "1009", 80},
		{"Shampoo Sachet", 3, 2100, 3200, "1010", 90},
	}
	for _, p := range products {
		id := uuid.NewString()
		s.products[id] = domain.Product{
			ID:                 id,
			Name:               p.name,
			CategoryID:         categories[p.category].ID,
			PurchasePriceCents: p.buy,
			SellingPriceCents:  p.sell,
			Barcode:            p.barcode,
			StockQty:           p.stock,
			Active:             true,
			CreatedAt:          now,
		}
	}

	seedUsers(s)
	return s
}

func (s *Store) CreateUser(_ context.Context, user domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" || user.Username == "" {
		return nil, store.ErrInvalidInput
	}
	for _, existing := range s.users {
		if !existing.Active {
			continue
		}
		if existing.Username == user.Username || existing.Email == user.Email {
			return nil, store.ErrConflict
		}
	}

	s.users[user.ID] = user
	created := user
	return &created, nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists || !user.Active {
		return nil, store.ErrNotFound
	}
	copied := user
	return &copied, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			copied := user
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) FindUserByUsernameOrEmail(_ context.Context, username string, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if !user.Active {
			continue
		}
		if user.Username == username || user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListUsersByRole(_ context.Context, role string) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.User, 0, len(s.users))
	for _, user := range s.users {
		if !user.Active || user.Role != role {
			continue
		}
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.User) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUser(_ context.Context, user domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.users[user.ID]
	if !exists || !existing.Active {
		return nil, store.ErrNotFound
	}
	for id, other := range s.users {
		if id == user.ID || !other.Active {
			continue
		}
		if other.Username == user.Username || other.Email == user.Email {
			return nil, store.ErrConflict
		}
	}

	s.users[user.ID] = user
	updated := user
	return &updated, nil
}

func (s *Store) SoftDeleteUser(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[id]
	if !exists || !user.Active {
		return store.ErrNotFound
	}
	user.Active = false
	user.UpdatedAt = &at
	s.users[id] = user
	return nil
}

func (s *Store) RecordLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[id]
	if !exists {
		return store.ErrNotFound
	}
	user.LastLogin = &at
	s.users[id] = user
	return nil
}

func (s *Store) CreateCategory(_ context.Context, category domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category.ID == "" || category.Name == "" {
		return nil, store.ErrInvalidInput
	}
	for _, existing := range s.categories {
		if existing.Active && strings.EqualFold(existing.Name, category.Name) {
			return nil, store.ErrConflict
		}
	}

	s.categories[category.ID] = category
	created := category
	return &created, nil
}

func (s *Store) GetCategory(_ context.Context, id string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, exists := s.categories[id]
	if !exists || !category.Active {
		return nil, store.ErrNotFound
	}
	copied := category
	return &copied, nil
}

func (s *Store) GetCategoryByName(_ context.Context, name string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, category := range s.categories {
		if category.Active && strings.EqualFold(category.Name, name) {
			copied := category
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]domain.Category, 0, len(s.categories))
	for _, category := range s.categories {
		if !category.Active {
			continue
		}
		categories = append(categories, category)
	}
	slices.SortFunc(categories, func(a, b domain.Category) int {
		return strings.Compare(a.Name, b.Name)
	})
	return categories, nil
}

func (s *Store) UpdateCategory(_ context.Context, category domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.categories[category.ID]
	if !exists || !existing.Active {
		return nil, store.ErrNotFound
	}
	for id, other := range s.categories {
		if id == category.ID || !other.Active {
			continue
		}
		if strings.EqualFold(other.Name, category.Name) {
			return nil, store.ErrConflict
		}
	}

	s.categories[category.ID] = category
	updated := category
	return &updated, nil
}

func (s *Store) SoftDeleteCategory(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	category, exists := s.categories[id]
	if !exists || !category.Active {
		return store.ErrNotFound
	}
	category.Active = false
	category.UpdatedAt = &at
	s.categories[id] = category
	return nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" || product.Name == "" || product.Barcode == "" {
		return nil, store.ErrInvalidInput
	}
	for _, existing := range s.products {
		if existing.Active && existing.Barcode == product.Barcode {
			return nil, store.ErrConflict
		}
	}

	s.products[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[id]
	if !exists || !product.Active {
		return nil, store.ErrNotFound
	}
	copied := product
	return &copied, nil
}

func (s *Store) GetProductByBarcode(_ context.Context, barcode string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, product := range s.products {
		if product.Active && product.Barcode == barcode {
			copied := product
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, product := range s.products {
		if !product.Active {
			continue
		}
		products = append(products, product)
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		return strings.Compare(a.Name, b.Name)
	})
	return products, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.products[product.ID]
	if !exists || !existing.Active {
		return nil, store.ErrNotFound
	}

	s.products[product.ID] = product
	updated := product
	return &updated, nil
}

func (s *Store) SoftDeleteProduct(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, exists := s.products[id]
	if !exists || !product.Active {
		return store.ErrNotFound
	}
	product.Active = false
	product.UpdatedAt = &at
	s.products[id] = product
	return nil
}

func (s *Store) AdjustStock(_ context.Context, productID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, exists := s.products[productID]
	if !exists {
		return store.ErrNotFound
	}
	product.StockQty += delta
	s.products[productID] = product
	return nil
}

func (s *Store) CreatePurchase(_ context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if purchase.ID == "" {
		return nil, store.ErrInvalidInput
	}
	s.purchases[purchase.ID] = clonePurchase(purchase)
	created := clonePurchase(purchase)
	return &created, nil
}

func (s *Store) GetPurchase(_ context.Context, id string) (*domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	purchase, exists := s.purchases[id]
	if !exists || !purchase.Active {
		return nil, store.ErrNotFound
	}
	copied := clonePurchase(purchase)
	return &copied, nil
}

func (s *Store) ListPurchases(_ context.Context) ([]domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	purchases := make([]domain.Purchase, 0, len(s.purchases))
	for _, purchase := range s.purchases {
		if !purchase.Active {
			continue
		}
		purchases = append(purchases, clonePurchase(purchase))
	}
	slices.SortFunc(purchases, func(a, b domain.Purchase) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return purchases, nil
}

func (s *Store) UpdatePurchase(_ context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.purchases[purchase.ID]
	if !exists || !existing.Active {
		return nil, store.ErrNotFound
	}

	s.purchases[purchase.ID] = clonePurchase(purchase)
	updated := clonePurchase(purchase)
	return &updated, nil
}

func (s *Store) SoftDeletePurchase(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	purchase, exists := s.purchases[id]
	if !exists || !purchase.Active {
		return store.ErrNotFound
	}
	purchase.Active = false
	purchase.UpdatedAt = &at
	s.purchases[id] = purchase
	return nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sale.ID == "" {
		return nil, store.ErrInvalidInput
	}
	s.sales[sale.ID] = cloneSale(sale)
	created := cloneSale(sale)
	return &created, nil
}

func (s *Store) GetSale(_ context.Context, id string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, exists := s.sales[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copied := cloneSale(sale)
	return &copied, nil
}

func (s *Store) ListSales(_ context.Context) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		sales = append(sales, cloneSale(sale))
	}
	slices.SortFunc(sales, func(a, b domain.Sale) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return sales, nil
}

func (s *Store) ListSalesSince(_ context.Context, from time.Time) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		if sale.CreatedAt.Before(from) {
			continue
		}
		sales = append(sales, cloneSale(sale))
	}
	slices.SortFunc(sales, func(a, b domain.Sale) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return sales, nil
}

func (s *Store) CreateExpense(_ context.Context, expense domain.Expense) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expense.ID == "" {
		return nil, store.ErrInvalidInput
	}
	s.expenses[expense.ID] = expense
	created := expense
	return &created, nil
}

func (s *Store) GetExpense(_ context.Context, id string) (*domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expense, exists := s.expenses[id]
	if !exists || !expense.Active {
		return nil, store.ErrNotFound
	}
	copied := expense
	return &copied, nil
}

func (s *Store) ListExpenses(_ context.Context) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expenses := make([]domain.Expense, 0, len(s.expenses))
	for _, expense := range s.expenses {
		if !expense.Active {
			continue
		}
		expenses = append(expenses, expense)
	}
	slices.SortFunc(expenses, func(a, b domain.Expense) int {
		if a.Date == b.Date {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
		return strings.Compare(b.Date, a.Date)
	})
	return expenses, nil
}

func (s *Store) UpdateExpense(_ context.Context, expense domain.Expense) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.expenses[expense.ID]
	if !exists || !existing.Active {
		return nil, store.ErrNotFound
	}

	s.expenses[expense.ID] = expense
	updated := expense
	return &updated, nil
}

func (s *Store) SoftDeleteExpense(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expense, exists := s.expenses[id]
	if !exists || !expense.Active {
		return store.ErrNotFound
	}
	expense.Active = false
	expense.UpdatedAt = &at
	s.expenses[id] = expense
	return nil
}

func clonePurchase(p domain.Purchase) domain.Purchase {
	copied := p
	copied.Items = slices.Clone(p.Items)
	return copied
}

func cloneSale(s domain.Sale) domain.Sale {
	copied := s
	copied.Items = slices.Clone(s.Items)
	return copied
}
