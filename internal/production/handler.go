package production

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/cassia-erp/cassia-erp/internal/masterdata/products"
	"github.com/cassia-erp/cassia-erp/internal/rbac"
	"github.com/cassia-erp/cassia-erp/internal/shared"
	"github.com/cassia-erp/cassia-erp/internal/view"
)

// Handler serves the production back-office screens.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	productService *products.Service
	templates      *view.Engine
	csrf           *shared.CSRFManager
	rbac           rbac.Middleware
	validator      *validator.Validate
}

// NewHandler constructs the production handler.
func NewHandler(logger *slog.Logger, service *Service, productService *products.Service, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		productService: productService,
		templates:      templates,
		csrf:           csrf,
		rbac:           rbac,
		validator:      validator.New(),
	}
}

// MountRoutes registers production routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermProductionView, shared.PermProductionManage))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermProductionManage))
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
		TypeNameSubstr: r.URL.Query().Get("type"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := Status(raw)
		q.Status = &status
	}

	runs, lines, err := h.service.List(r.Context(), q)
	if err != nil {
		h.logger.Error("list production runs", slog.Any("error", err))
		http.Error(w, "Gagal memuat produksi", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/production/list.html", "Produksi", map[string]any{
		"Runs":  runs,
		"Lines": lines,
		"Filters": map[string]string{
			"Start":  r.URL.Query().Get("start"),
			"End":    r.URL.Query().Get("end"),
			"Status": r.URL.Query().Get("status"),
			"Type":   r.URL.Query().Get("type"),
		},
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "ID tidak valid", http.StatusBadRequest)
		return
	}
	run, lines, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("get production run", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var inputs, outputs []Line
	for _, line := range lines {
		if line.Kind == KindOutput {
			outputs = append(outputs, line)
		} else {
			inputs = append(inputs, line)
		}
	}
	h.render(w, r, "pages/production/detail.html", run.Number, map[string]any{
		"Run":     run,
		"Inputs":  inputs,
		"Outputs": outputs,
	})
}

func (h *Handler) showForm(w http.ResponseWriter, r *http.Request) {
	productList, _, err := h.productService.List(r.Context(), products.ListFilters{ActiveOnly: true})
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/production/form.html", "Produksi Baru", map[string]any{
		"Products": productList,
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	input, err := h.parseForm(r)
	if err != nil {
		h.flashAndRedirect(w, r, "error", "Form produksi tidak valid", "/production/new")
		return
	}
	if _, err := h.service.Create(r.Context(), input, h.actorID(r)); err != nil {
		h.logger.Error("create production run", slog.Any("error", err))
		h.flashAndRedirect(w, r, "error", "Gagal menyimpan produksi", "/production/new")
		return
	}
	h.flashAndRedirect(w, r, "success", "Produksi tersimpan sebagai draf", "/production")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "ID tidak valid", http.StatusBadRequest)
		return
	}
	input, err := h.parseForm(r)
	if err != nil {
		h.flashAndRedirect(w, r, "error", "Form produksi tidak valid", "/production/"+chi.URLParam(r, "id"))
		return
	}
	if err := h.service.Update(r.Context(), id, UpdateInput(input), h.actorID(r)); err != nil {
		h.respondActionError(w, r, err, id)
		return
	}
	h.flashAndRedirect(w, r, "success", "Produksi diperbarui", "/production/"+chi.URLParam(r, "id"))
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	h.lifecycleAction(w, r, h.service.Post, "Produksi tercatat")
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	h.lifecycleAction(w, r, h.service.Cancel, "Produksi dibatalkan")
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
	h.flashAndRedirect(w, r, "success", successMsg, "/production/"+chi.URLParam(r, "id"))
}

func (h *Handler) respondActionError(w http.ResponseWriter, r *http.Request, err error, id int64) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, ErrInvalidState):
		h.flashAndRedirect(w, r, "error", "Status produksi tidak mengizinkan aksi ini", "/production/"+strconv.FormatInt(id, 10))
	case errors.Is(err, ErrValidation):
		h.flashAndRedirect(w, r, "error", "Data produksi tidak valid", "/production/"+strconv.FormatInt(id, 10))
	default:
		h.logger.Error("production action", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// parseForm maps the repeated input and output line fields.
func (h *Handler) parseForm(r *http.Request) (CreateInput, error) {
	if err := r.ParseForm(); err != nil {
		return CreateInput{}, err
	}
	input := CreateInput{
		TypeName: r.PostFormValue("type_name"),
		Notes:    r.PostFormValue("notes"),
	}
	if d, err := time.Parse("2006-01-02", r.PostFormValue("date")); err == nil {
		input.Date = d
	}
	input.Inputs = parseLines(r, "input")
	input.Outputs = parseLines(r, "output")
	if err := h.validator.Struct(input); err != nil {
		return CreateInput{}, err
	}
	return input, nil
}

func parseLines(r *http.Request, prefix string) []LineInput {
	productIDs := r.PostForm[prefix+"_product_id"]
	qtys := r.PostForm[prefix+"_qty"]
	costs := r.PostForm[prefix+"_unit_cost"]
	var out []LineInput
	for i := range productIDs {
		if i >= len(qtys) || i >= len(costs) {
			break
		}
		productID, err := strconv.ParseInt(productIDs[i], 10, 64)
		if err != nil {
			continue
		}
		out = append(out, LineInput{ProductID: productID, Qty: qtys[i], UnitCost: costs[i]})
	}
	return out
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
		h.logger.Error("render production page", slog.String("page", page), slog.Any("error", err))
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
