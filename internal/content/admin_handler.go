package content

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cassia-erp/cassia-erp/internal/rbac"
	"github.com/cassia-erp/cassia-erp/internal/shared"
	"github.com/cassia-erp/cassia-erp/internal/view"
)

const maxUploadBytes = 8 << 20

// AdminHandler serves the content management screens.
type AdminHandler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
	uploadDir string
}

// NewAdminHandler constructs the content admin handler. uploadDir is where
// gallery files land.
func NewAdminHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware, uploadDir string) *AdminHandler {
	return &AdminHandler{
		logger:    logger,
		service:   service,
		templates: templates,
		csrf:      csrf,
		rbac:      rbac,
		uploadDir: uploadDir,
	}
}

// MountRoutes registers content admin routes.
func (h *AdminHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermContentManage))
		r.Get("/", h.index)
		r.Post("/slides", h.saveSlide)
		r.Post("/slides/{id}/delete", h.deleteSlide)
		r.Post("/about", h.saveAbout)
		r.Post("/gallery", h.uploadImage)
		r.Post("/gallery/{id}/delete", h.deleteImage)
		r.Post("/posts", h.createPost)
		r.Post("/posts/{id}/edit", h.updatePost)
		r.Post("/posts/{id}/publish", h.publishPost)
	})
}

func (h *AdminHandler) index(w http.ResponseWriter, r *http.Request) {
	slides, err := h.service.AllSlides(r.Context())
	if err != nil {
		h.fail(w, "load slides", err)
		return
	}
	about, err := h.service.About(r.Context())
	if err != nil {
		h.fail(w, "load about", err)
		return
	}
	images, err := h.service.Gallery(r.Context())
	if err != nil {
		h.fail(w, "load gallery", err)
		return
	}
	posts, err := h.service.AllPosts(r.Context())
	if err != nil {
		h.fail(w, "load posts", err)
		return
	}
	h.render(w, r, map[string]any{
		"Slides": slides,
		"About":  about,
		"Images": images,
		"Posts":  posts,
	})
}

func (h *AdminHandler) saveSlide(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id, _ := strconv.ParseInt(r.PostFormValue("id"), 10, 64)
	position, _ := strconv.Atoi(r.PostFormValue("position"))
	slide := HeroSlide{
		ID:        id,
		Title:     r.PostFormValue("title"),
		Subtitle:  r.PostFormValue("subtitle"),
		ImagePath: r.PostFormValue("image_path"),
		Position:  position,
		Active:    r.PostFormValue("active") != "false",
	}
	if _, err := h.service.SaveSlide(r.Context(), slide); err != nil {
		h.respondError(w, r, err, "Slide tidak valid")
		return
	}
	h.flashAndRedirect(w, r, "success", "Slide tersimpan")
}

func (h *AdminHandler) deleteSlide(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "ID tidak valid", http.StatusBadRequest)
		return
	}
	if err := h.service.DeleteSlide(r.Context(), id); err != nil {
		h.respondError(w, r, err, "Slide tidak ditemukan")
		return
	}
	h.flashAndRedirect(w, r, "success", "Slide dihapus")
}

func (h *AdminHandler) saveAbout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.service.SaveAbout(r.Context(), r.PostFormValue("body"), h.actorID(r)); err != nil {
		h.respondError(w, r, err, "Profil tidak valid")
		return
	}
	h.flashAndRedirect(w, r, "success", "Profil perusahaan diperbarui")
}

func (h *AdminHandler) uploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.flashAndRedirect(w, r, "error", "Berkas terlalu besar")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		h.flashAndRedirect(w, r, "error", "Gambar wajib dipilih")
		return
	}
	defer file.Close()

	img, err := h.service.AddGalleryImage(r.Context(), r.FormValue("title"), header.Filename)
	if err != nil {
		h.respondError(w, r, err, "Format gambar tidak didukung")
		return
	}

	dst, err := os.Create(filepath.Join(h.uploadDir, img.Filename))
	if err != nil {
		h.fail(w, "create upload file", err)
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		h.fail(w, "write upload file", err)
		return
	}
	h.flashAndRedirect(w, r, "success", "Foto ditambahkan ke galeri")
}

func (h *AdminHandler) deleteImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "ID tidak valid", http.StatusBadRequest)
		return
	}
	filename, err := h.service.RemoveGalleryImage(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err, "Foto tidak ditemukan")
		return
	}
	if err := os.Remove(filepath.Join(h.uploadDir, filename)); err != nil && !os.IsNotExist(err) {
		h.logger.Warn("remove gallery file", slog.String("filename", filename), slog.Any("error", err))
	}
	h.flashAndRedirect(w, r, "success", "Foto dihapus")
}

func (h *AdminHandler) createPost(w http.ResponseWriter, r *http.Request) {
	input, err := parsePostForm(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if _, err := h.service.CreatePost(r.Context(), input); err != nil {
		h.respondError(w, r, err, "Artikel tidak valid")
		return
	}
	h.flashAndRedirect(w, r, "success", "Artikel tersimpan")
}

func (h *AdminHandler) updatePost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "ID tidak valid", http.StatusBadRequest)
		return
	}
	input, err := parsePostForm(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.service.UpdatePost(r.Context(), id, input); err != nil {
		h.respondError(w, r, err, "Artikel tidak valid")
		return
	}
	h.flashAndRedirect(w, r, "success", "Artikel diperbarui")
}

func (h *AdminHandler) publishPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "ID tidak valid", http.StatusBadRequest)
		return
	}
	if err := h.service.PublishPost(r.Context(), id); err != nil {
		h.respondError(w, r, err, "Artikel tidak ditemukan")
		return
	}
	h.flashAndRedirect(w, r, "success", "Artikel dipublikasikan")
}

func parsePostForm(r *http.Request) (PostInput, error) {
	if err := r.ParseForm(); err != nil {
		return PostInput{}, err
	}
	input := PostInput{
		Title:   r.PostFormValue("title"),
		Excerpt: r.PostFormValue("excerpt"),
		Body:    r.PostFormValue("body"),
	}
	if raw := r.PostFormValue("publish_at"); raw != "" {
		if t, err := time.Parse("2006-01-02T15:04", raw); err == nil {
			input.PublishAt = &t
		}
	}
	return input, nil
}

func (h *AdminHandler) respondError(w http.ResponseWriter, r *http.Request, err error, validationMsg string) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDuplicateSlug):
		h.flashAndRedirect(w, r, "error", validationMsg)
	default:
		h.logger.Error("content action", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *AdminHandler) fail(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *AdminHandler) render(w http.ResponseWriter, r *http.Request, data map[string]any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken := ""
	var flash *shared.FlashMessage
	if sess != nil {
		csrfToken, _ = h.csrf.EnsureToken(r.Context(), sess)
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Konten Situs",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, "pages/content/index.html", viewData); err != nil {
		h.logger.Error("render content page", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *AdminHandler) flashAndRedirect(w http.ResponseWriter, r *http.Request, kind, msg string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: msg})
	}
	http.Redirect(w, r, "/content", http.StatusSeeOther)
}

func (h *AdminHandler) actorID(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}
