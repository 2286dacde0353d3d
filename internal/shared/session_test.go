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

func newTestSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "quarrydesk_session", time.Hour, false)
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	assert.True(t, sess.isNew)

	sess.SetUser("12")
	sess.Set("quarry", "7")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "quarrydesk_session", cookie.Name)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookie)
	loaded, err := sm.Load(ctx, req2)
	require.NoError(t, err)
	assert.False(t, loaded.isNew)
	assert.Equal(t, "12", loaded.User())
	assert.Equal(t, "7", loaded.Get("quarry"))
}

func TestSessionUnknownCookieStartsFresh(t *testing.T) {
	sm := newTestSessionManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "quarrydesk_session", Value: "gone"})

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "", sess.User())
	assert.Equal(t, "gone", sess.ID)
}

func TestSessionDestroyExpiresCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUser("12")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	cookie := rec.Result().Cookies()[0]

	sm.Destroy(sess)
	rec2 := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec2, sess))
	expired := rec2.Result().Cookies()[0]
	assert.Equal(t, -1, expired.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	reloaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "", reloaded.User())
}

func TestSessionFlashesPopOnce(t *testing.T) {
	sm := newTestSessionManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.AddFlash(FlashMessage{Kind: "success", Message: "period closed"})

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	cookie := rec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)

	flashes := loaded.PopFlashes()
	require.Len(t, flashes, 1)
	assert.Equal(t, "period closed", flashes[0].Message)
	assert.Empty(t, loaded.PopFlashes())
}

func TestActorFromContext(t *testing.T) {
	sess := &Session{values: map[string]string{}}
	sess.SetUser("42")
	ctx := ContextWithSession(context.Background(), sess)
	assert.Equal(t, int64(42), ActorFromContext(ctx))

	assert.Equal(t, int64(0), ActorFromContext(context.Background()))
}
