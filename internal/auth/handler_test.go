package auth_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/quarrydesk/quarrydesk/internal/auth"
	"github.com/quarrydesk/quarrydesk/internal/shared"
	_ "github.com/quarrydesk/quarrydesk/testing"
)

type stubRepo struct {
	user     *auth.User
	sessions map[string]int64
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	if s.sessions == nil {
		s.sessions = make(map[string]int64)
	}
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

// commitWriter mirrors the production middleware's wrapped writer: the
// session must commit before the first header is written or the cookie is
// lost.
type commitWriter struct {
	http.ResponseWriter
	commit        func()
	headerWritten bool
}

func (w *commitWriter) WriteHeader(statusCode int) {
	if !w.headerWritten {
		w.headerWritten = true
		w.commit()
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *commitWriter) Write(data []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

func newAuthRouter(t *testing.T, repo auth.Repository) (chi.Router, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	sessionManager := shared.NewSessionManager(redisClient, "test_session", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := auth.NewHandler(logger, auth.NewService(repo), sessionManager, csrfManager)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessionManager.Load(req.Context(), req)
			require.NoError(t, err)
			ctx := shared.ContextWithSession(req.Context(), sess)
			cw := &commitWriter{ResponseWriter: w, commit: func() {
				require.NoError(t, sessionManager.Commit(ctx, w, sess))
			}}
			next.ServeHTTP(cw, req.WithContext(ctx))
			if !cw.headerWritten {
				require.NoError(t, sessionManager.Commit(ctx, w, sess))
			}
		})
	})
	handler.MountRoutes(r)
	return r, sessionManager
}

func activeUser(t *testing.T, password string) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &auth.User{ID: 1, Email: "clerk@quarrydesk.local", PasswordHash: string(hashed), IsActive: true}
}

func TestLoginIssuesSessionAndToken(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "clerkpass123")}
	router, _ := newAuthRouter(t, repo)

	body := `{"email":"clerk@quarrydesk.local","password":"clerkpass123"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"csrf_token"`)
	assert.Contains(t, res.Body.String(), `"email":"clerk@quarrydesk.local"`)

	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "test_session", cookies[0].Name)
	require.Len(t, repo.sessions, 1)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "clerkpass123")}
	router, _ := newAuthRouter(t, repo)

	body := `{"email":"clerk@quarrydesk.local","password":"wrongpass1"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Empty(t, repo.sessions)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	user := activeUser(t, "clerkpass123")
	user.IsActive = false
	router, _ := newAuthRouter(t, &stubRepo{user: user})

	body := `{"email":"clerk@quarrydesk.local","password":"clerkpass123"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginValidatesPayload(t *testing.T) {
	router, _ := newAuthRouter(t, &stubRepo{})

	body := `{"email":"not-an-email","password":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestLogoutDestroysSession(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "clerkpass123")}
	router, _ := newAuthRouter(t, repo)

	body := `{"email":"clerk@quarrydesk.local","password":"clerkpass123"}`
	loginReq := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	loginReq.Header.Set("Content-Type", "application/json")
	loginRes := httptest.NewRecorder()
	router.ServeHTTP(loginRes, loginReq)
	require.Equal(t, http.StatusOK, loginRes.Code)
	cookie := loginRes.Result().Cookies()[0]

	logoutReq := httptest.NewRequest(http.MethodPost, "/logout", nil)
	logoutReq.AddCookie(cookie)
	logoutRes := httptest.NewRecorder()
	router.ServeHTTP(logoutRes, logoutReq)
	require.Equal(t, http.StatusNoContent, logoutRes.Code)
	assert.Empty(t, repo.sessions)

	meReq := httptest.NewRequest(http.MethodGet, "/me", nil)
	meReq.AddCookie(cookie)
	meRes := httptest.NewRecorder()
	router.ServeHTTP(meRes, meReq)
	assert.Equal(t, http.StatusUnauthorized, meRes.Code)
}

func TestMeReturnsActor(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "clerkpass123")}
	router, _ := newAuthRouter(t, repo)

	body := `{"email":"clerk@quarrydesk.local","password":"clerkpass123"}`
	loginReq := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	loginReq.Header.Set("Content-Type", "application/json")
	loginRes := httptest.NewRecorder()
	router.ServeHTTP(loginRes, loginReq)
	cookie := loginRes.Result().Cookies()[0]

	meReq := httptest.NewRequest(http.MethodGet, "/me", nil)
	meReq.AddCookie(cookie)
	meRes := httptest.NewRecorder()
	router.ServeHTTP(meRes, meReq)
	require.Equal(t, http.StatusOK, meRes.Code)
	assert.Contains(t, meRes.Body.String(), `"user_id":1`)
}
