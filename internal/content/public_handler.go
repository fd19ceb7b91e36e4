package content

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cassia-erp/cassia-erp/internal/view"
)

// PublicHandler serves the marketing site. No session or permission checks;
// everything here is world readable.
type PublicHandler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
}

// NewPublicHandler constructs the public site handler.
func NewPublicHandler(logger *slog.Logger, service *Service, templates *view.Engine) *PublicHandler {
	return &PublicHandler{logger: logger, service: service, templates: templates}
}

// MountRoutes registers the public routes.
func (h *PublicHandler) MountRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Get("/tentang", h.about)
	r.Get("/galeri", h.gallery)
	r.Get("/blog", h.blog)
	r.Get("/blog/{slug}", h.blogPost)
}

func (h *PublicHandler) home(w http.ResponseWriter, r *http.Request) {
	slides, err := h.service.ActiveSlides(r.Context())
	if err != nil {
		h.logger.Error("load hero slides", slog.Any("error", err))
		slides = nil
	}
	posts, err := h.service.PublishedPosts(r.Context())
	if err != nil {
		h.logger.Error("load recent posts", slog.Any("error", err))
		posts = nil
	}
	if len(posts) > 3 {
		posts = posts[:3]
	}
	h.render(w, r, "pages/public/home.html", "CV Cassia Kerinci", map[string]any{
		"Slides":      slides,
		"RecentPosts": posts,
	})
}

func (h *PublicHandler) about(w http.ResponseWriter, r *http.Request) {
	about, err := h.service.About(r.Context())
	if err != nil {
		h.logger.Error("load about page", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/public/about.html", "Tentang Kami", map[string]any{
		"About": about,
	})
}

func (h *PublicHandler) gallery(w http.ResponseWriter, r *http.Request) {
	images, err := h.service.Gallery(r.Context())
	if err != nil {
		h.logger.Error("load gallery", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/public/gallery.html", "Galeri", map[string]any{
		"Images": images,
	})
}

func (h *PublicHandler) blog(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.PublishedPosts(r.Context())
	if err != nil {
		h.logger.Error("load blog", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/public/blog.html", "Blog", map[string]any{
		"Posts": posts,
	})
}

func (h *PublicHandler) blogPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.PublishedPostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("load blog post", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/public/blog_post.html", post.Title, map[string]any{
		"Post": post,
	})
}

func (h *PublicHandler) render(w http.ResponseWriter, r *http.Request, page, title string, data map[string]any) {
	viewData := view.TemplateData{
		Title:       title,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, page, viewData); err != nil {
		h.logger.Error("render public page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
