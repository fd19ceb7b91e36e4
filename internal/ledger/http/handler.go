package ledgerhttp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cassia-erp/cassia-erp/internal/ledger"
	"github.com/cassia-erp/cassia-erp/internal/platform/httpx"
	"github.com/cassia-erp/cassia-erp/internal/rbac"
	"github.com/cassia-erp/cassia-erp/internal/shared"
	"github.com/cassia-erp/cassia-erp/internal/view"
)

// LedgerService defines the view assembly contract used by the handler.
type LedgerService interface {
	BuildView(ctx context.Context, req ledger.ViewRequest) (ledger.View, error)
	UnfilteredSummary(ctx context.Context) (ledger.Summary, error)
}

// Handler serves the back-office ledger screen.
type Handler struct {
	logger    *slog.Logger
	service   LedgerService
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
}

// NewHandler constructs the ledger HTTP handler.
func NewHandler(logger *slog.Logger, service LedgerService, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, rbac: rbac}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermLedgerView))
		r.Get("/", h.index)
		r.Get("/summary", h.summary)
	})
}

// summary serves the cached overall summary as JSON for dashboard refreshes.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.UnfilteredSummary(r.Context())
	if err != nil {
		h.logger.Error("ledger summary", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "gagal memuat ringkasan")
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	req := parseRequest(r.URL.Query())

	result, err := h.service.BuildView(r.Context(), req)
	if err != nil {
		h.logger.Error("build ledger view", slog.Any("error", err))
		http.Error(w, "Gagal memuat buku transaksi", http.StatusInternalServerError)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	csrfToken := ""
	var flash *shared.FlashMessage
	if sess != nil {
		csrfToken, _ = h.csrf.EnsureToken(r.Context(), sess)
		flash = sess.PopFlash()
	}

	data := view.TemplateData{
		Title:       "Buku Transaksi",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        buildViewModel(result, r.URL.Query()),
	}
	if err := h.templates.Render(w, "pages/ledger/index.html", data); err != nil {
		h.logger.Error("render ledger", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
