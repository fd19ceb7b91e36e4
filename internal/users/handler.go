package users

import (
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

// Handler serves the account administration screens.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler constructs the users handler.
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

// MountRoutes registers account administration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermUsersManage))
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Post("/{id}/edit", h.update)
		r.Post("/{id}/password", h.resetPassword)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	roles, err := h.service.Roles(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, map[string]any{
		"Accounts": accounts,
		"Roles":    roles,
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	input := CreateInput{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
		FullName: r.PostFormValue("full_name"),
		RoleIDs:  parseRoleIDs(r.PostForm["role_ids"]),
	}
	if err := h.validator.Struct(input); err != nil {
		h.flashAndRedirect(w, r, "error", "Form pengguna tidak valid", "/users")
		return
	}
	if _, err := h.service.Create(r.Context(), input, h.actorID(r)); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.flashAndRedirect(w, r, "success", "Pengguna tersimpan", "/users")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "ID tidak valid", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	input := UpdateInput{
		FullName: r.PostFormValue("full_name"),
		Active:   r.PostFormValue("active") != "false",
		RoleIDs:  parseRoleIDs(r.PostForm["role_ids"]),
	}
	if err := h.validator.Struct(input); err != nil {
		h.flashAndRedirect(w, r, "error", "Form pengguna tidak valid", "/users")
		return
	}
	if err := h.service.Update(r.Context(), id, input, h.actorID(r)); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.flashAndRedirect(w, r, "success", "Pengguna diperbarui", "/users")
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "ID tidak valid", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.service.ResetPassword(r.Context(), id, r.PostFormValue("password"), h.actorID(r)); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.flashAndRedirect(w, r, "success", "Kata sandi diperbarui", "/users")
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, ErrDuplicateUsername):
		h.flashAndRedirect(w, r, "error", "Nama pengguna sudah digunakan", "/users")
	case errors.Is(err, ErrValidation):
		h.flashAndRedirect(w, r, "error", "Data pengguna tidak valid", "/users")
	default:
		h.logger.Error("user action", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func parseRoleIDs(raw []string) []int64 {
	var ids []int64
	for _, v := range raw {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data map[string]any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken := ""
	var flash *shared.FlashMessage
	if sess != nil {
		csrfToken, _ = h.csrf.EnsureToken(r.Context(), sess)
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Pengguna",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, "pages/users/index.html", viewData); err != nil {
		h.logger.Error("render users page", slog.Any("error", err))
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
