package sales

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/cassia-erp/cassia-erp/internal/masterdata/customers"
	"github.com/cassia-erp/cassia-erp/internal/masterdata/products"
	"github.com/cassia-erp/cassia-erp/internal/rbac"
	"github.com/cassia-erp/cassia-erp/internal/shared"
	"github.com/cassia-erp/cassia-erp/internal/view"
)

// Handler serves the sales back-office screens.
type Handler struct {
	logger          *slog.Logger
	service         *Service
	customerService *customers.Service
	productService  *products.Service
	templates       *view.Engine
	csrf            *shared.CSRFManager
	rbac            rbac.Middleware
	validator       *validator.Validate
}

// NewHandler constructs the sales handler.
func NewHandler(logger *slog.Logger, service *Service, customerService *customers.Service, productService *products.Service, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:          logger,
		service:         service,
		customerService: customerService,
		productService:  productService,
		templates:       templates,
		csrf:            csrf,
		rbac:            rbac,
		validator:       validator.New(),
	}
}

// MountRoutes registers sales routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermSalesView, shared.PermSalesManage))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermSalesManage))
		r.Get("/new", h.showForm)
		r.Post("/", h.create)
		r.Post("/{id}/edit", h.update)
		r.Post("/{id}/post", h.post)
		r.Post("/{id}/cancel", h.cancel)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := ListQuery{
		DateStart:      parseDate(r.URL.Query().Get("start")),
		DateEnd:        parseDate(r.URL.Query().Get("end")),
		CustomerSubstr: r.URL.Query().Get("customer"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := Status(raw)
		q.Status = &status
	}

	salesList, items, err := h.service.List(r.Context(), q)
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		http.Error(w, "Gagal memuat penjualan", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/sales/list.html", "Penjualan", map[string]any{
		"Sales": salesList,
		"Items": items,
		"Filters": map[string]string{
			"Start":    r.URL.Query().Get("start"),
			"End":      r.URL.Query().Get("end"),
			"Status":   r.URL.Query().Get("status"),
			"Customer": r.URL.Query().Get("customer"),
		},
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "ID tidak valid", http.StatusBadRequest)
		return
	}
	sale, items, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("get sale", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/sales/detail.html", sale.Number, map[string]any{
		"Sale":  sale,
		"Items": items,
	})
}

func (h *Handler) showForm(w http.ResponseWriter, r *http.Request) {
	customerList, _, err := h.customerService.List(r.Context(), customers.ListFilters{ActiveOnly: true})
	if err != nil {
		h.logger.Error("list customers", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	productList, _, err := h.productService.List(r.Context(), products.ListFilters{ActiveOnly: true})
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/sales/form.html", "Penjualan Baru", map[string]any{
		"Customers": customerList,
		"Products":  productList,
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	input, err := h.parseForm(r)
	if err != nil {
		h.flashAndRedirect(w, r, "error", "Form penjualan tidak valid", "/sales/new")
		return
	}
	if _, err := h.service.Create(r.Context(), input, h.actorID(r)); err != nil {
		h.logger.Error("create sale", slog.Any("error", err))
		h.flashAndRedirect(w, r, "error", "Gagal menyimpan penjualan", "/sales/new")
		return
	}
	h.flashAndRedirect(w, r, "success", "Penjualan tersimpan sebagai draf", "/sales")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "ID tidak valid", http.StatusBadRequest)
		return
	}
	input, err := h.parseForm(r)
	if err != nil {
		h.flashAndRedirect(w, r, "error", "Form penjualan tidak valid", "/sales/"+chi.URLParam(r, "id"))
		return
	}
	if err := h.service.Update(r.Context(), id, UpdateInput(input), h.actorID(r)); err != nil {
		h.respondActionError(w, r, err, id)
		return
	}
	h.flashAndRedirect(w, r, "success", "Penjualan diperbarui", "/sales/"+chi.URLParam(r, "id"))
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	h.lifecycleAction(w, r, h.service.Post, "Penjualan tercatat")
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	h.lifecycleAction(w, r, h.service.Cancel, "Penjualan dibatalkan")
}

func (h *Handler) lifecycleAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id, actorID int64) error, successMsg string) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "ID tidak valid", http.StatusBadRequest)
		return
	}
	if err := action(r.Context(), id, h.actorID(r)); err != nil {
		h.respondActionError(w, r, err, id)
		return
	}
	h.flashAndRedirect(w, r, "success", successMsg, "/sales/"+chi.URLParam(r, "id"))
}

func (h *Handler) respondActionError(w http.ResponseWriter, r *http.Request, err error, id int64) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, ErrInvalidState):
		h.flashAndRedirect(w, r, "error", "Status penjualan tidak mengizinkan aksi ini", "/sales/"+strconv.FormatInt(id, 10))
	case errors.Is(err, ErrValidation):
		h.flashAndRedirect(w, r, "error", "Data penjualan tidak valid", "/sales/"+strconv.FormatInt(id, 10))
	default:
		h.logger.Error("sale action", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// parseForm maps the repeated item fields of the sale form.
func (h *Handler) parseForm(r *http.Request) (CreateInput, error) {
	if err := r.ParseForm(); err != nil {
		return CreateInput{}, err
	}
	input := CreateInput{
		Notes: r.PostFormValue("notes"),
	}
	if id, err := strconv.ParseInt(r.PostFormValue("customer_id"), 10, 64); err == nil {
		input.CustomerID = id
	}
	if d, err := time.Parse("2006-01-02", r.PostFormValue("date")); err == nil {
		input.Date = d
	}
	productIDs := r.PostForm["item_product_id"]
	qtys := r.PostForm["item_qty"]
	prices := r.PostForm["item_unit_price"]
	for i := range productIDs {
		if i >= len(qtys) || i >= len(prices) {
			break
		}
		productID, err := strconv.ParseInt(productIDs[i], 10, 64)
		if err != nil {
			continue
		}
		input.Items = append(input.Items, ItemInput{ProductID: productID, Qty: qtys[i], UnitPrice: prices[i]})
	}
	if err := h.validator.Struct(input); err != nil {
		return CreateInput{}, err
	}
	return input, nil
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page, title string, data map[string]any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken := ""
	var flash *shared.FlashMessage
	if sess != nil {
		csrfToken, _ = h.csrf.EnsureToken(r.Context(), sess)
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, page, viewData); err != nil {
		h.logger.Error("render sales page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) flashAndRedirect(w http.ResponseWriter, r *http.Request, kind, msg, target string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: msg})
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) actorID(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}
