package content

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for site content.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Slides returns hero slides in display order. activeOnly hides disabled ones.
func (r *Repository) Slides(ctx context.Context, activeOnly bool) ([]HeroSlide, error) {
	sql := `SELECT id, title, COALESCE(subtitle, ''), image_path, position, active, created_at, updated_at
	        FROM hero_slides`
	if activeOnly {
		sql += ` WHERE active`
	}
	sql += ` ORDER BY position ASC, id ASC`

	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HeroSlide
	for rows.Next() {
		var s HeroSlide
		if err := rows.Scan(&s.ID, &s.Title, &s.Subtitle, &s.ImagePath, &s.Position, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpsertSlide inserts or rewrites one slide.
func (r *Repository) UpsertSlide(ctx context.Context, s HeroSlide) (int64, error) {
	if s.ID == 0 {
		var id int64
		err := r.pool.QueryRow(ctx,
			`INSERT INTO hero_slides (title, subtitle, image_path, position, active, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id`,
			s.Title, s.Subtitle, s.ImagePath, s.Position, s.Active).Scan(&id)
		return id, err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE hero_slides SET title = $2, subtitle = $3, image_path = $4, position = $5, active = $6, updated_at = NOW()
		 WHERE id = $1`,
		s.ID, s.Title, s.Subtitle, s.ImagePath, s.Position, s.Active)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrNotFound
	}
	return s.ID, nil
}

// DeleteSlide removes one slide.
func (r *Repository) DeleteSlide(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM hero_slides WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// About returns the single profile document.
func (r *Repository) About(ctx context.Context) (AboutPage, error) {
	var a AboutPage
	err := r.pool.QueryRow(ctx,
		`SELECT body, updated_at, updated_by FROM about_page LIMIT 1`).
		Scan(&a.Body, &a.UpdatedAt, &a.UpdatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return AboutPage{}, nil
	}
	return a, err
}

// SaveAbout rewrites the profile document.
func (r *Repository) SaveAbout(ctx context.Context, body string, updatedBy int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO about_page (id, body, updated_at, updated_by)
		 VALUES (1, $1, NOW(), $2)
		 ON CONFLICT (id) DO UPDATE SET body = $1, updated_at = NOW(), updated_by = $2`,
		body, updatedBy)
	return err
}

// GalleryImages returns gallery photos, newest first.
func (r *Repository) GalleryImages(ctx context.Context) ([]GalleryImage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, COALESCE(title, ''), filename, created_at FROM gallery_images ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GalleryImage
	for rows.Next() {
		var g GalleryImage
		if err := rows.Scan(&g.ID, &g.Title, &g.Filename, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// InsertGalleryImage stores a photo reference.
func (r *Repository) InsertGalleryImage(ctx context.Context, g GalleryImage) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO gallery_images (title, filename, created_at) VALUES ($1, $2, NOW()) RETURNING id`,
		g.Title, g.Filename).Scan(&id)
	return id, err
}

// DeleteGalleryImage removes a photo reference and returns its filename.
func (r *Repository) DeleteGalleryImage(ctx context.Context, id int64) (string, error) {
	var filename string
	err := r.pool.QueryRow(ctx,
		`DELETE FROM gallery_images WHERE id = $1 RETURNING filename`, id).Scan(&filename)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return filename, err
}

// Posts returns blog posts, newest first. publishedOnly hides drafts and
// scheduled posts.
func (r *Repository) Posts(ctx context.Context, publishedOnly bool) ([]BlogPost, error) {
	sql := `SELECT id, slug, title, COALESCE(excerpt, ''), body, status, publish_at, published_at, created_at, updated_at
	        FROM blog_posts`
	if publishedOnly {
		sql += ` WHERE status = 'published'`
	}
	sql += ` ORDER BY COALESCE(published_at, created_at) DESC`

	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BlogPost
	for rows.Next() {
		var p BlogPost
		if err := rows.Scan(&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Body, &p.Status, &p.PublishAt, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PostBySlug returns one post.
func (r *Repository) PostBySlug(ctx context.Context, slug string) (BlogPost, error) {
	var p BlogPost
	err := r.pool.QueryRow(ctx,
		`SELECT id, slug, title, COALESCE(excerpt, ''), body, status, publish_at, published_at, created_at, updated_at
		 FROM blog_posts WHERE slug = $1`, slug).
		Scan(&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Body, &p.Status, &p.PublishAt, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return BlogPost{}, ErrNotFound
	}
	return p, err
}

// PostByID returns one post.
func (r *Repository) PostByID(ctx context.Context, id int64) (BlogPost, error) {
	var p BlogPost
	err := r.pool.QueryRow(ctx,
		`SELECT id, slug, title, COALESCE(excerpt, ''), body, status, publish_at, published_at, created_at, updated_at
		 FROM blog_posts WHERE id = $1`, id).
		Scan(&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Body, &p.Status, &p.PublishAt, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return BlogPost{}, ErrNotFound
	}
	return p, err
}

// ExistsSlug reports whether another post already uses the slug.
func (r *Repository) ExistsSlug(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM blog_posts WHERE slug = $1 AND id <> $2)`, slug, excludeID).Scan(&exists)
	return exists, err
}

// InsertPost stores a new post and returns its id.
func (r *Repository) InsertPost(ctx context.Context, p BlogPost) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO blog_posts (slug, title, excerpt, body, status, publish_at, published_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW()) RETURNING id`,
		p.Slug, p.Title, p.Excerpt, p.Body, p.Status, p.PublishAt, p.PublishedAt).Scan(&id)
	return id, err
}

// UpdatePost rewrites a post row.
func (r *Repository) UpdatePost(ctx context.Context, p BlogPost) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE blog_posts SET slug = $2, title = $3, excerpt = $4, body = $5, status = $6, publish_at = $7, published_at = $8, updated_at = NOW()
		 WHERE id = $1`,
		p.ID, p.Slug, p.Title, p.Excerpt, p.Body, p.Status, p.PublishAt, p.PublishedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PublishDue flips scheduled posts whose publish time has passed and
// returns how many were published.
func (r *Repository) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE blog_posts SET status = 'published', published_at = publish_at, updated_at = NOW()
		 WHERE status = 'scheduled' AND publish_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
