// Package content manages the public marketing site: hero slides, the
// company profile, the photo gallery and the blog.
package content

import (
	"errors"
	"time"
)

// HeroSlide is one rotating banner on the landing page.
type HeroSlide struct {
	ID        int64
	Title     string
	Subtitle  string
	ImagePath string
	Position  int
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AboutPage is the single company profile document.
type AboutPage struct {
	Body      string
	UpdatedAt time.Time
	UpdatedBy int64
}

// GalleryImage is one photo shown on the public gallery.
type GalleryImage struct {
	ID        int64
	Title     string
	// Filename is server generated, never the uploaded name.
	Filename  string
	CreatedAt time.Time
}

// PostStatus is the blog post lifecycle state.
type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostScheduled PostStatus = "scheduled"
	PostPublished PostStatus = "published"
)

// BlogPost is one article on the public blog.
type BlogPost struct {
	ID      int64
	Slug    string
	Title   string
	Excerpt string
	Body    string
	Status  PostStatus
	// PublishAt is set for scheduled posts and tells the publisher job
	// when to flip them to published.
	PublishAt   *time.Time
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var (
	ErrNotFound      = errors.New("content: not found")
	ErrValidation    = errors.New("content: invalid input")
	ErrDuplicateSlug = errors.New("content: duplicate slug")
)
