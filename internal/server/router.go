package server

import (
	"log/slog"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/clubops/billing/internal/billing"
	"github.com/clubops/billing/internal/handlers"
	"github.com/clubops/billing/internal/httpx"
	"github.com/clubops/billing/internal/identity"
	"github.com/clubops/billing/internal/notify"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, notifier *notify.DedupingDispatcher) http.Handler {
	mux := http.NewServeMux()

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		// Readiness includes a DB round trip; no error details in the body.
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	invoiceSvc := billing.NewInvoiceService(db)
	captureSvc := billing.NewCaptureService(db, notifier, nil)
	settleSvc := billing.NewSettlementService(db, notifier, nil)
	duesSvc := billing.NewDuesService(db, notifier, nil)

	ih := handlers.NewInvoiceHandler(invoiceSvc)
	ph := handlers.NewPaymentHandler(captureSvc, settleSvc)
	dh := handlers.NewDuesHandler(duesSvc)

	// Invoice endpoints
	mux.Handle("/invoices", identity.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ih.List(w, r)
		case http.MethodPost:
			identity.RequireAdmin(http.HandlerFunc(ih.Create)).ServeHTTP(w, r)
		default:
			httpx.MethodNotAllowed(w, "GET,POST")
		}
	})))
	mux.Handle("/invoices/balance", identity.Middleware(mustGet(ih.Balance)))

	// Settlement endpoints
	mux.Handle("/invoices/pay", identity.Middleware(mustPost(ph.Pay)))
	mux.Handle("/invoices/mark-paid", identity.Middleware(identity.RequireAdmin(mustPost(ph.MarkPaid))))
	mux.Handle("/invoices/void", identity.Middleware(identity.RequireAdmin(mustPost(ph.Void))))

	// Batch billing jobs
	mux.Handle("/dues/run", identity.Middleware(identity.RequireAdmin(mustPost(dh.Run))))
	mux.Handle("/dues/remind", identity.Middleware(identity.RequireAdmin(mustPost(dh.Remind))))

	return withRecover(withLogging(mux))
}

func mustPost(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httpx.MethodNotAllowed(w, "POST")
			return
		}
		h(w, r)
	})
}

func mustGet(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httpx.MethodNotAllowed(w, "GET")
			return
		}
		h(w, r)
	})
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered", "method", r.Method, "path", r.URL.Path, "panic", rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
