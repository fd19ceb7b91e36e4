package content

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RepositoryPort describes the repository operations used by Service.
type RepositoryPort interface {
	Slides(ctx context.Context, activeOnly bool) ([]HeroSlide, error)
	UpsertSlide(ctx context.Context, s HeroSlide) (int64, error)
	DeleteSlide(ctx context.Context, id int64) error
	About(ctx context.Context) (AboutPage, error)
	SaveAbout(ctx context.Context, body string, updatedBy int64) error
	GalleryImages(ctx context.Context) ([]GalleryImage, error)
	InsertGalleryImage(ctx context.Context, g GalleryImage) (int64, error)
	DeleteGalleryImage(ctx context.Context, id int64) (string, error)
	Posts(ctx context.Context, publishedOnly bool) ([]BlogPost, error)
	PostBySlug(ctx context.Context, slug string) (BlogPost, error)
	PostByID(ctx context.Context, id int64) (BlogPost, error)
	ExistsSlug(ctx context.Context, slug string, excludeID int64) (bool, error)
	InsertPost(ctx context.Context, p BlogPost) (int64, error)
	UpdatePost(ctx context.Context, p BlogPost) error
	PublishDue(ctx context.Context, now time.Time) (int64, error)
}

// Service manages marketing site content.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService constructs the content service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ActiveSlides returns the slides shown on the landing page.
func (s *Service) ActiveSlides(ctx context.Context) ([]HeroSlide, error) {
	return s.repo.Slides(ctx, true)
}

// AllSlides returns every slide for the admin screen.
func (s *Service) AllSlides(ctx context.Context) ([]HeroSlide, error) {
	return s.repo.Slides(ctx, false)
}

// SaveSlide inserts or updates one slide.
func (s *Service) SaveSlide(ctx context.Context, slide HeroSlide) (int64, error) {
	if strings.TrimSpace(slide.Title) == "" || slide.ImagePath == "" {
		return 0, fmt.Errorf("%w: judul dan gambar wajib diisi", ErrValidation)
	}
	return s.repo.UpsertSlide(ctx, slide)
}

// DeleteSlide removes one slide.
func (s *Service) DeleteSlide(ctx context.Context, id int64) error {
	return s.repo.DeleteSlide(ctx, id)
}

// About returns the company profile document.
func (s *Service) About(ctx context.Context) (AboutPage, error) {
	return s.repo.About(ctx)
}

// SaveAbout rewrites the company profile document.
func (s *Service) SaveAbout(ctx context.Context, body string, updatedBy int64) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("%w: isi profil wajib diisi", ErrValidation)
	}
	return s.repo.SaveAbout(ctx, body, updatedBy)
}

// Gallery returns all gallery photos.
func (s *Service) Gallery(ctx context.Context) ([]GalleryImage, error) {
	return s.repo.GalleryImages(ctx)
}

// AddGalleryImage registers an uploaded photo. The stored filename is a
// fresh UUID so uploaded names never reach the filesystem.
func (s *Service) AddGalleryImage(ctx context.Context, title, uploadedName string) (GalleryImage, error) {
	ext := strings.ToLower(filepath.Ext(uploadedName))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return GalleryImage{}, fmt.Errorf("%w: format gambar %q tidak didukung", ErrValidation, ext)
	}
	img := GalleryImage{
		Title:    strings.TrimSpace(title),
		Filename: uuid.NewString() + ext,
	}
	id, err := s.repo.InsertGalleryImage(ctx, img)
	if err != nil {
		return GalleryImage{}, err
	}
	img.ID = id
	return img, nil
}

// RemoveGalleryImage deletes the reference and returns the filename so the
// caller can unlink the file.
func (s *Service) RemoveGalleryImage(ctx context.Context, id int64) (string, error) {
	return s.repo.DeleteGalleryImage(ctx, id)
}

// PostInput describes a blog post create or update request.
type PostInput struct {
	Title   string `validate:"required,max=200"`
	Excerpt string `validate:"max=500"`
	Body    string `validate:"required"`
	// PublishAt schedules the post; nil keeps it a draft until published
	// explicitly.
	PublishAt *time.Time
}

// PublishedPosts returns the public blog feed.
func (s *Service) PublishedPosts(ctx context.Context) ([]BlogPost, error) {
	return s.repo.Posts(ctx, true)
}

// AllPosts returns every post for the admin screen.
func (s *Service) AllPosts(ctx context.Context) ([]BlogPost, error) {
	return s.repo.Posts(ctx, false)
}

// PublishedPostBySlug returns one public post. Drafts and scheduled posts
// stay hidden even when the slug is known.
func (s *Service) PublishedPostBySlug(ctx context.Context, slug string) (BlogPost, error) {
	post, err := s.repo.PostBySlug(ctx, slug)
	if err != nil {
		return BlogPost{}, err
	}
	if post.Status != PostPublished {
		return BlogPost{}, ErrNotFound
	}
	return post, nil
}

// CreatePost stores a new post. A future PublishAt schedules it, a past or
// absent one leaves it a draft.
func (s *Service) CreatePost(ctx context.Context, input PostInput) (BlogPost, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || strings.TrimSpace(input.Body) == "" {
		return BlogPost{}, fmt.Errorf("%w: judul dan isi wajib diisi", ErrValidation)
	}
	slug := Slugify(title)
	taken, err := s.repo.ExistsSlug(ctx, slug, 0)
	if err != nil {
		return BlogPost{}, err
	}
	if taken {
		slug = slug + "-" + uuid.NewString()[:8]
	}
	post := BlogPost{
		Slug:    slug,
		Title:   title,
		Excerpt: strings.TrimSpace(input.Excerpt),
		Body:    input.Body,
		Status:  PostDraft,
	}
	if input.PublishAt != nil && input.PublishAt.After(s.now()) {
		post.Status = PostScheduled
		post.PublishAt = input.PublishAt
	}
	id, err := s.repo.InsertPost(ctx, post)
	if err != nil {
		return BlogPost{}, err
	}
	post.ID = id
	return post, nil
}

// UpdatePost rewrites a post, keeping its slug.
func (s *Service) UpdatePost(ctx context.Context, id int64, input PostInput) error {
	current, err := s.repo.PostByID(ctx, id)
	if err != nil {
		return err
	}
	current.Title = strings.TrimSpace(input.Title)
	current.Excerpt = strings.TrimSpace(input.Excerpt)
	current.Body = input.Body
	if current.Status != PostPublished {
		if input.PublishAt != nil && input.PublishAt.After(s.now()) {
			current.Status = PostScheduled
			current.PublishAt = input.PublishAt
		} else {
			current.Status = PostDraft
			current.PublishAt = nil
		}
	}
	return s.repo.UpdatePost(ctx, current)
}

// PublishPost makes a post public immediately.
func (s *Service) PublishPost(ctx context.Context, id int64) error {
	current, err := s.repo.PostByID(ctx, id)
	if err != nil {
		return err
	}
	now := s.now()
	current.Status = PostPublished
	current.PublishAt = nil
	current.PublishedAt = &now
	return s.repo.UpdatePost(ctx, current)
}

// PublishDue publishes scheduled posts whose time has come. Called by the
// background publisher job.
func (s *Service) PublishDue(ctx context.Context) (int64, error) {
	return s.repo.PublishDue(ctx, s.now())
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a URL slug.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStrip.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
