package workers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/cassia-erp/cassia-erp/internal/rbac"
	"github.com/cassia-erp/cassia-erp/internal/shared"
	"github.com/cassia-erp/cassia-erp/internal/view"
)

// Handler serves the workforce registry screens.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler constructs the worker handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		csrf:      csrf,
		rbac:      rbac,
		validator: validator.New(),
	}
}

// MountRoutes registers worker routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermMasterdataView, shared.PermMasterdataManage))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermMasterdataManage))
		r.Post("/", h.create)
		r.Post("/{id}/edit", h.update)
		r.Post("/{id}/deactivate", h.deactivate)
		r.Post("/{id}/activate", h.activate)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	filters := ListFilters{
		Search:  r.URL.Query().Get("q"),
		Role:    r.URL.Query().Get("role"),
		Page:    page,
		PerPage: 20,
	}
	items, pagination, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list workers", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/masterdata/workers.html", "Pekerja", map[string]any{
		"Workers":    items,
		"Pagination": pagination,
		"Search":     filters.Search,
		"Role":       filters.Role,
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	input, err := h.parseForm(r)
	if err != nil {
		h.flashAndRedirect(w, r, "error", "Form pekerja tidak valid", "/masterdata/workers")
		return
	}
	if _, err := h.service.Create(r.Context(), input); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.flashAndRedirect(w, r, "success", "Pekerja tersimpan", "/masterdata/workers")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "ID tidak valid", http.StatusBadRequest)
		return
	}
	input, err := h.parseForm(r)
	if err != nil {
		h.flashAndRedirect(w, r, "error", "Form pekerja tidak valid", "/masterdata/workers")
		return
	}
	if err := h.service.Update(r.Context(), id, input); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.flashAndRedirect(w, r, "success", "Pekerja diperbarui", "/masterdata/workers")
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	h.toggleActive(w, r, h.service.Deactivate, "Pekerja dinonaktifkan")
}

func (h *Handler) activate(w http.ResponseWriter, r *http.Request) {
	h.toggleActive(w, r, h.service.Activate, "Pekerja diaktifkan")
}

func (h *Handler) toggleActive(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id int64) error, msg string) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "ID tidak valid", http.StatusBadRequest)
		return
	}
	if err := action(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.flashAndRedirect(w, r, "success", msg, "/masterdata/workers")
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, ErrValidation):
		h.flashAndRedirect(w, r, "error", "Data pekerja tidak valid", "/masterdata/workers")
	default:
		h.logger.Error("worker action", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) parseForm(r *http.Request) (Input, error) {
	if err := r.ParseForm(); err != nil {
		return Input{}, err
	}
	input := Input{
		Name:      r.PostFormValue("name"),
		Phone:     r.PostFormValue("phone"),
		Role:      r.PostFormValue("role"),
		DailyWage: r.PostFormValue("daily_wage"),
		Active:    r.PostFormValue("active") != "false",
	}
	if err := h.validator.Struct(input); err != nil {
		return Input{}, err
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
		h.logger.Error("render workers page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) flashAndRedirect(w http.ResponseWriter, r *http.Request, kind, msg, target string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: msg})
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
