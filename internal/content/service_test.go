package content

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	slides []HeroSlide
	posts  map[int64]*BlogPost
	nextID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{posts: make(map[int64]*BlogPost), nextID: 1}
}

func (m *mockRepo) Slides(ctx context.Context, activeOnly bool) ([]HeroSlide, error) {
	return m.slides, nil
}

func (m *mockRepo) UpsertSlide(ctx context.Context, s HeroSlide) (int64, error) {
	m.slides = append(m.slides, s)
	return int64(len(m.slides)), nil
}

func (m *mockRepo) DeleteSlide(ctx context.Context, id int64) error { return nil }

func (m *mockRepo) About(ctx context.Context) (AboutPage, error) { return AboutPage{}, nil }

func (m *mockRepo) SaveAbout(ctx context.Context, body string, updatedBy int64) error { return nil }

func (m *mockRepo) GalleryImages(ctx context.Context) ([]GalleryImage, error) { return nil, nil }

func (m *mockRepo) InsertGalleryImage(ctx context.Context, g GalleryImage) (int64, error) {
	return 1, nil
}

func (m *mockRepo) DeleteGalleryImage(ctx context.Context, id int64) (string, error) {
	return "", ErrNotFound
}

func (m *mockRepo) Posts(ctx context.Context, publishedOnly bool) ([]BlogPost, error) {
	var out []BlogPost
	for _, p := range m.posts {
		if publishedOnly && p.Status != PostPublished {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockRepo) PostBySlug(ctx context.Context, slug string) (BlogPost, error) {
	for _, p := range m.posts {
		if p.Slug == slug {
			return *p, nil
		}
	}
	return BlogPost{}, ErrNotFound
}

func (m *mockRepo) PostByID(ctx context.Context, id int64) (BlogPost, error) {
	p, ok := m.posts[id]
	if !ok {
		return BlogPost{}, ErrNotFound
	}
	return *p, nil
}

func (m *mockRepo) ExistsSlug(ctx context.Context, slug string, excludeID int64) (bool, error) {
	for id, p := range m.posts {
		if p.Slug == slug && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) InsertPost(ctx context.Context, p BlogPost) (int64, error) {
	id := m.nextID
	m.nextID++
	p.ID = id
	m.posts[id] = &p
	return id, nil
}

func (m *mockRepo) UpdatePost(ctx context.Context, p BlogPost) error {
	if _, ok := m.posts[p.ID]; !ok {
		return ErrNotFound
	}
	m.posts[p.ID] = &p
	return nil
}

func (m *mockRepo) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, p := range m.posts {
		if p.Status == PostScheduled && p.PublishAt != nil && !p.PublishAt.After(now) {
			p.Status = PostPublished
			p.PublishedAt = p.PublishAt
			n++
		}
	}
	return n, nil
}

func serviceAt(repo *mockRepo, now time.Time) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return now }
	return svc
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "panen-kulit-manis-2024", Slugify("  Panen Kulit Manis 2024! "))
	assert.Equal(t, "grade-a-ke-eropa", Slugify("Grade A, ke Eropa"))
}

func TestCreatePostDraftByDefault(t *testing.T) {
	repo := newMockRepo()
	svc := serviceAt(repo, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))

	post, err := svc.CreatePost(context.Background(), PostInput{Title: "Musim Panen", Body: "isi"})
	require.NoError(t, err)
	assert.Equal(t, PostDraft, post.Status)
	assert.Equal(t, "musim-panen", post.Slug)
}

func TestCreatePostWithFuturePublishAtIsScheduled(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	repo := newMockRepo()
	svc := serviceAt(repo, now)

	at := now.Add(24 * time.Hour)
	post, err := svc.CreatePost(context.Background(), PostInput{Title: "Ekspor Perdana", Body: "isi", PublishAt: &at})
	require.NoError(t, err)
	assert.Equal(t, PostScheduled, post.Status)
	require.NotNil(t, post.PublishAt)
}

func TestDuplicateTitleGetsUniqueSlug(t *testing.T) {
	repo := newMockRepo()
	svc := serviceAt(repo, time.Now())

	first, err := svc.CreatePost(context.Background(), PostInput{Title: "Kabar Kebun", Body: "a"})
	require.NoError(t, err)
	second, err := svc.CreatePost(context.Background(), PostInput{Title: "Kabar Kebun", Body: "b"})
	require.NoError(t, err)

	assert.NotEqual(t, first.Slug, second.Slug)
	assert.Contains(t, second.Slug, "kabar-kebun-")
}

func TestPublishDueFlipsScheduledPosts(t *testing.T) {
	now := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	repo := newMockRepo()
	svc := serviceAt(repo, now.Add(-48*time.Hour))

	at := now.Add(-time.Hour)
	_, err := svc.CreatePost(context.Background(), PostInput{Title: "Sudah Waktunya", Body: "isi", PublishAt: &at})
	require.NoError(t, err)
	future := now.Add(72 * time.Hour)
	_, err = svc.CreatePost(context.Background(), PostInput{Title: "Masih Nanti", Body: "isi", PublishAt: &future})
	require.NoError(t, err)

	svc.now = func() time.Time { return now }
	n, err := svc.PublishDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	published, err := svc.PublishedPostBySlug(context.Background(), "sudah-waktunya")
	require.NoError(t, err)
	assert.Equal(t, PostPublished, published.Status)

	_, err = svc.PublishedPostBySlug(context.Background(), "masih-nanti")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScheduledPostHiddenFromPublicFeed(t *testing.T) {
	now := time.Now()
	repo := newMockRepo()
	svc := serviceAt(repo, now)

	at := now.Add(time.Hour)
	_, err := svc.CreatePost(context.Background(), PostInput{Title: "Belum Tayang", Body: "isi", PublishAt: &at})
	require.NoError(t, err)

	posts, err := svc.PublishedPosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
}
