package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pintlog-backend/internal/data/repos/testutil"
	"github.com/yungbote/pintlog-backend/internal/platform/apierr"
	"github.com/yungbote/pintlog-backend/internal/platform/ctxutil"
)

type fakeAuth struct {
	userID uuid.UUID
	seen   []string
}

func (f *fakeAuth) SessionFromToken(ctx context.Context, token string) (context.Context, error) {
	f.seen = append(f.seen, token)
	if token != "good" {
		return ctx, apierr.Unauthorized(errors.New("invalid token"))
	}
	return ctxutil.WithSession(ctx, &ctxutil.Session{UserID: f.userID, Token: token}), nil
}

func authEngine(t *testing.T, auth *fakeAuth) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewAuthMiddleware(testutil.Logger(t), auth).RequireAuth())
	r.GET("/api/me", func(c *gin.Context) {
		s := ctxutil.GetSession(c.Request.Context())
		if !s.Valid() {
			c.Status(http.StatusTeapot)
			return
		}
		c.String(http.StatusOK, s.UserID.String())
	})
	return r
}

func TestRequireAuthAttachesSession(t *testing.T) {
	auth := &fakeAuth{userID: uuid.New()}
	r := authEngine(t, auth)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "bearer good")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d", http.StatusOK, rec.Code)
	}
	if rec.Body.String() != auth.userID.String() {
		t.Fatalf("session user: want=%s got=%s", auth.userID, rec.Body.String())
	}
}

func TestRequireAuthQueryTokenFallback(t *testing.T) {
	auth := &fakeAuth{userID: uuid.New()}
	r := authEngine(t, auth)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me?token=good", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d", http.StatusOK, rec.Code)
	}
}

func TestRequireAuthRejects(t *testing.T) {
	auth := &fakeAuth{userID: uuid.New()}
	r := authEngine(t, auth)

	cases := []struct {
		name   string
		header string
		want   string
	}{
		{name: "missing", header: "", want: ""},
		{name: "wrong scheme", header: "Basic good", want: ""},
		{name: "bad token", header: "Bearer bad", want: "bad"},
	}
	for _, c := range cases {
		auth.seen = nil
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		if c.header != "" {
			req.Header.Set("Authorization", c.header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status want=%d got=%d", c.name, http.StatusUnauthorized, rec.Code)
		}
		if len(auth.seen) != 1 || auth.seen[0] != c.want {
			t.Fatalf("%s: token passed: want=%q got=%v", c.name, c.want, auth.seen)
		}
	}
}
