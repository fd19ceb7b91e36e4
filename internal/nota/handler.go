package nota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cassia-erp/cassia-erp/internal/purchasing"
	"github.com/cassia-erp/cassia-erp/internal/rbac"
	"github.com/cassia-erp/cassia-erp/internal/sales"
	"github.com/cassia-erp/cassia-erp/internal/shared"
)

// Handler streams receipt PDFs for posted transactions.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs the nota handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers nota routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermNotaPrint))
		r.Get("/purchase/{id}", h.purchase)
		r.Get("/sale/{id}", h.sale)
	})
}

func (h *Handler) purchase(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.service.PurchasePDF, purchasing.ErrNotFound)
}

func (h *Handler) sale(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.service.SalePDF, sales.ErrNotFound)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, build func(ctx context.Context, id int64) (Document, error), notFound error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "ID tidak valid", http.StatusBadRequest)
		return
	}
	doc, err := build(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, notFound):
			http.NotFound(w, r)
		case errors.Is(err, ErrNotPosted):
			http.Error(w, "Nota hanya tersedia untuk transaksi tercatat", http.StatusConflict)
		default:
			h.logger.Error("build nota", slog.Int64("id", id), slog.Any("error", err))
			http.Error(w, "Gagal membuat nota", http.StatusBadGateway)
		}
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Content)))
	_, _ = w.Write(doc.Content)
}
