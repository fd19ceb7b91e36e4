package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSessionManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionManager(client, "cassia_session", time.Hour, false), mr
}

func TestSessionRoundTrip(t *testing.T) {
	sm, _ := testSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("42")
	sess.Set("theme", "dark")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, sess))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "cassia_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookies[0])
	restored, err := sm.Load(ctx, req2)
	require.NoError(t, err)
	assert.Equal(t, "42", restored.User())
	assert.Equal(t, "dark", restored.Get("theme"))
}

func TestSessionExpiresWithTTL(t *testing.T) {
	sm, mr := testSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("42")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, sess))

	mr.FastForward(2 * time.Hour)

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(rec.Result().Cookies()[0])
	restored, err := sm.Load(ctx, req2)
	require.NoError(t, err)
	assert.Empty(t, restored.User())
}

func TestDestroyClearsSessionAndCookie(t *testing.T) {
	sm, mr := testSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("42")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, sess))
	require.NotEmpty(t, mr.Keys())

	sm.Destroy(sess)
	rec2 := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec2, req, sess))

	assert.Empty(t, mr.Keys())
	cookies := rec2.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestFlashMessagesAreConsumedInOrder(t *testing.T) {
	sess := &Session{}
	sess.AddFlash(FlashMessage{Kind: "success", Message: "Transaksi tercatat"})
	sess.AddFlash(FlashMessage{Kind: "error", Message: "Gagal"})

	first := sess.PopFlash()
	require.NotNil(t, first)
	assert.Equal(t, "Transaksi tercatat", first.Message)

	second := sess.PopFlash()
	require.NotNil(t, second)
	assert.Equal(t, "error", second.Kind)

	assert.Nil(t, sess.PopFlash())
}
