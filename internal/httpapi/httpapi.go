package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"gudangpos/backend/internal/domain"
	"gudangpos/backend/internal/service"
	"gudangpos/backend/internal/store"
)

type API struct {
	service       *service.Service
	auth          *AuthManager
	allowedOrigin string
	logger        *zap.Logger
	validate      *validator.Validate
	loginLimiter  *attemptLimiter
}

func New(svc *service.Service, auth *AuthManager, allowedOrigin string, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		service:       svc,
		auth:          auth,
		allowedOrigin: allowedOrigin,
		logger:        logger,
		validate:      validator.New(),
		loginLimiter:  newAttemptLimiter(5, time.Minute),
	}
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(a.withHeaders)
	r.Use(a.logRequests)

	r.Get("/healthz", a.handleHealth)
	r.Post("/auth/login", a.handleLogin)

	// Any authenticated role.
	r.Group(func(r chi.Router) {
		r.Use(a.requireAuth())

		r.Post("/products/add", a.handleProductCreate)
		r.Get("/products/list", a.handleProductList)
		r.Get("/products/by-barcode/{barcode}", a.handleProductByBarcode)
		r.Post("/categories/add", a.handleCategoryCreate)
		r.Get("/categories/list", a.handleCategoryList)

		r.Post("/sales/add", a.handleSaleCreate)
		r.Get("/sales/list", a.handleSaleList)
		r.Get("/sales/details/{id}", a.handleSaleDetails)

		r.Get("/dashboard/summary", a.handleDashboardSummary)
		r.Get("/dashboard/sales-analysis", a.handleSalesAnalysis)
		r.Get("/dashboard/top-products", a.handleTopProducts)
		r.Get("/reports/daily-sales", a.handleDailySales)
		r.Get("/reports/daily-sales/export", a.handleDailySalesExport)
		r.Get("/reports/monthly-sales", a.handleMonthlySales)
		r.Get("/profit/product-wise", a.handleProfitReport)
		r.Get("/stock/summary", a.handleStockSummary)
		r.Get("/stock/low-stock", a.handleLowStock)
		r.Get("/analytics/slow-moving", a.handleSlowMoving)
		r.Get("/analytics/restock-suggestions", a.handleRestockSuggestions)
		r.Get("/analytics/demand-prediction", a.handleDemandPrediction)
	})

	// Admin and super admin.
	r.Group(func(r chi.Router) {
		r.Use(a.requireAuth(domain.RoleAdmin, domain.RoleSuperAdmin))

		r.Put("/products/update/{id}", a.handleProductUpdate)
		r.Delete("/products/delete/{id}", a.handleProductDelete)
		r.Put("/categories/update/{id}", a.handleCategoryUpdate)
		r.Delete("/categories/delete/{id}", a.handleCategoryDelete)

		r.Post("/purchases/add", a.handlePurchaseCreate)
		r.Get("/purchases/list", a.handlePurchaseList)
		r.Get("/purchases/details/{id}", a.handlePurchaseDetails)
		r.Put("/purchases/update/{id}", a.handlePurchaseUpdate)
		r.Delete("/purchases/delete/{id}", a.handlePurchaseDelete)

		r.Post("/expenses/add", a.handleExpenseCreate)
		r.Get("/expenses/list", a.handleExpenseList)
		r.Get("/expenses/details/{id}", a.handleExpenseDetails)
		r.Put("/expenses/update/{id}", a.handleExpenseUpdate)
		r.Delete("/expenses/delete/{id}", a.handleExpenseDelete)

		r.Post("/staff/add", a.userCreateHandler(domain.RoleStaff))
		r.Get("/staff/list", a.userListHandler(domain.RoleStaff))
		r.Get("/staff/details/{id}", a.userDetailsHandler(domain.RoleStaff))
		r.Put("/staff/update/{id}", a.userUpdateHandler(domain.RoleStaff))
		r.Delete("/staff/delete/{id}", a.userDeleteHandler(domain.RoleStaff))

		r.Get("/purchase-analytics/supplier-wise", a.handleSupplierPurchases)
	})

	// Super admin only.
	r.Group(func(r chi.Router) {
		r.Use(a.requireAuth(domain.RoleSuperAdmin))

		r.Post("/admin/add", a.userCreateHandler(domain.RoleAdmin))
		r.Get("/admin/list", a.userListHandler(domain.RoleAdmin))
		r.Get("/admin/details/{id}", a.userDetailsHandler(domain.RoleAdmin))
		r.Put("/admin/update/{id}", a.userUpdateHandler(domain.RoleAdmin))
		r.Delete("/admin/delete/{id}", a.userDeleteHandler(domain.RoleAdmin))
	})

	return r
}

func (a *API) requireAuth(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorization := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
				a.writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
				return
			}

			token := strings.TrimSpace(authorization[len("Bearer "):])
			actor, err := a.auth.ParseToken(token)
			if err != nil {
				a.writeError(w, http.StatusUnauthorized, err)
				return
			}

			if len(roles) > 0 && !isRoleAllowed(actor.Role, roles) {
				a.writeError(w, http.StatusForbidden, errors.New("forbidden role"))
				return
			}

			next.ServeHTTP(w, r.WithContext(service.WithActor(r.Context(), actor)))
		})
	}
}

func isRoleAllowed(role string, allowed []string) bool {
	for _, allow := range allowed {
		if role == allow {
			return true
		}
	}
	return false
}

func (a *API) withHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if (r.Method == http.MethodPost || r.Method == http.MethodPut) && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedAt := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(startedAt)))
	})
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	l.entries[key] = kept
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

// writeServiceError translates the store error taxonomy into HTTP status
// codes. Anything unrecognized is a 500.
func (a *API) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		a.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, store.ErrInvalidInput), errors.Is(err, store.ErrInsufficientStock):
		a.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, store.ErrConflict):
		a.writeError(w, http.StatusConflict, err)
	case errors.Is(err, store.ErrUnavailable):
		a.writeError(w, http.StatusServiceUnavailable, err)
	default:
		a.writeError(w, http.StatusInternalServerError, err)
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, err error) {
	// For 5xx responses, return a generic message to avoid leaking internal
	// implementation details (SQL errors, file paths, etc.). 4xx responses
	// are user-facing so the original message is returned.
	msg := err.Error()
	if status >= 500 {
		a.logger.Error("internal error", zap.Int("status", status), zap.Error(err))
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

// decodeValid decodes a JSON body with unknown fields rejected, then runs
// struct tag validation on the result.
func (a *API) decodeValid(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}
	if err := a.validate.Struct(dest); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}
	return nil
}

func parsePositiveInt(raw string, fallback int, max int) int {
	value := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			value = parsed
		}
	}
	if max > 0 && value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func dailySalesToCSV(report domain.DailySalesReport) string {
	lines := []string{
		"section,key,value",
		fmt.Sprintf("summary,date,%s", report.Date),
		fmt.Sprintf("summary,transactions,%d", report.Transactions),
		fmt.Sprintf("summary,total_cents,%d", report.TotalCents),
	}
	for _, sale := range report.Sales {
		lines = append(lines, fmt.Sprintf("sale,%s,%d", sale.BillNo, sale.TotalAmountCents))
	}
	return strings.Join(lines, "\n") + "\n"
}
