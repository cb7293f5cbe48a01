package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"property_portal/internal/model"
	"property_portal/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubAuthenticator struct {
	sessions map[string]*model.Session
	err      error
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*model.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	if session, ok := s.sessions[token]; ok {
		return session, nil
	}
	return nil, service.ErrInvalidSession
}

func newProtectedRouter(auth SessionAuthenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireSession(auth), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetInt(AuthUserKey), "session": c.GetString(AuthSessionKey)})
	})
	return r
}

func TestRequireSession(t *testing.T) {
	auth := &stubAuthenticator{sessions: map[string]*model.Session{
		"good-token": {ID: "sess-1", UserID: 7},
	}}
	router := newProtectedRouter(auth)

	tests := []struct {
		name       string
		cookie     string
		wantStatus int
		wantBody   string
	}{
		{"no cookie", "", http.StatusUnauthorized, `{"error":"Unauthorized. Please log in."}`},
		{"unknown token", "bad-token", http.StatusUnauthorized, `{"error":"Unauthorized. Please log in."}`},
		{"valid session", "good-token", http.StatusOK, `{"user":7,"session":"sess-1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestRequireSession_StoreFailure(t *testing.T) {
	router := newProtectedRouter(&stubAuthenticator{err: errors.New("database is locked")})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "any"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
