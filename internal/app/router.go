package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/cassia-erp/cassia-erp/internal/auth"
	"github.com/cassia-erp/cassia-erp/internal/content"
	"github.com/cassia-erp/cassia-erp/internal/ledger"
	ledgerhttp "github.com/cassia-erp/cassia-erp/internal/ledger/http"
	"github.com/cassia-erp/cassia-erp/internal/masterdata/customers"
	"github.com/cassia-erp/cassia-erp/internal/masterdata/products"
	"github.com/cassia-erp/cassia-erp/internal/masterdata/suppliers"
	"github.com/cassia-erp/cassia-erp/internal/masterdata/workers"
	"github.com/cassia-erp/cassia-erp/internal/nota"
	"github.com/cassia-erp/cassia-erp/internal/platform/httpx"
	"github.com/cassia-erp/cassia-erp/internal/production"
	"github.com/cassia-erp/cassia-erp/internal/purchasing"
	"github.com/cassia-erp/cassia-erp/internal/sales"
	"github.com/cassia-erp/cassia-erp/internal/shared"
	"github.com/cassia-erp/cassia-erp/internal/users"
	"github.com/cassia-erp/cassia-erp/internal/view"
	"github.com/cassia-erp/cassia-erp/jobs"
	"github.com/cassia-erp/cassia-erp/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	LedgerService *ledger.Service

	PublicHandler       *content.PublicHandler
	ContentAdminHandler *content.AdminHandler
	AuthHandler         *auth.Handler
	LedgerHandler       *ledgerhttp.Handler
	PurchasingHandler   *purchasing.Handler
	SalesHandler        *sales.Handler
	ProductionHandler   *production.Handler
	ProductsHandler     *products.Handler
	CustomersHandler    *customers.Handler
	SuppliersHandler    *suppliers.Handler
	WorkersHandler      *workers.Handler
	UsersHandler        *users.Handler
	NotaHandler         *nota.Handler
	JobHandler          *jobs.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Marketing site and login live at the root.
	params.PublicHandler.MountRoutes(r)
	params.AuthHandler.MountRoutes(r)

	r.Get("/dashboard", dashboardHandler(params))

	r.Route("/ledger", params.LedgerHandler.MountRoutes)
	r.Route("/purchasing", params.PurchasingHandler.MountRoutes)
	r.Route("/sales", params.SalesHandler.MountRoutes)
	r.Route("/production", params.ProductionHandler.MountRoutes)
	r.Route("/masterdata", func(r chi.Router) {
		r.Route("/products", params.ProductsHandler.MountRoutes)
		r.Route("/customers", params.CustomersHandler.MountRoutes)
		r.Route("/suppliers", params.SuppliersHandler.MountRoutes)
		r.Route("/workers", params.WorkersHandler.MountRoutes)
	})
	r.Route("/content", params.ContentAdminHandler.MountRoutes)
	r.Route("/users", params.UsersHandler.MountRoutes)
	r.Route("/nota", params.NotaHandler.MountRoutes)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	staticFS, err := fs.Sub(web.FS, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}
	if params.Config != nil && params.Config.UploadDir != "" {
		uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(params.Config.UploadDir)))
		r.Handle("/uploads/*", staticCacheHandler(uploads))
	}

	return r
}

// dashboardHandler renders the back-office landing page with the overall
// ledger summary. Anonymous visitors are sent to the login form.
func dashboardHandler(params RouterParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		summary, err := params.LedgerService.UnfilteredSummary(r.Context())
		if err != nil {
			params.Logger.Error("dashboard summary", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
		data := view.TemplateData{
			Title:       "Dasbor",
			CSRFToken:   csrfToken,
			Flash:       sess.PopFlash(),
			CurrentPath: r.URL.Path,
			Data: map[string]any{
				"Summary": summary,
			},
		}
		if err := params.Templates.Render(w, "pages/dashboard/index.html", data); err != nil {
			params.Logger.Error("render dashboard", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

// staticCacheHandler wraps a file server with a one hour Cache-Control header.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
