package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/0suu/SwitchBotController/internal/infrastructure/config"
)

func authServer(t *testing.T) *Server {
	t.Helper()
	srv, _, _ := newTestServer(t, config.SecurityConfig{
		JWT:    config.JWTConfig{Secret: testJWTSecret, AccessTokenTTL: 15},
		APIKey: "letmein",
	})
	return srv
}

func issueToken(t *testing.T, h http.Handler) string {
	t.Helper()
	w := do(t, h, http.MethodPost, "/api/v1/auth/token", `{"api_key":"letmein"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("token status = %d; body: %s", w.Code, w.Body.String())
	}
	var resp tokenResponse
	decode(t, w, &resp)
	if resp.AccessToken == "" {
		t.Fatal("expected access_token to be non-empty")
	}
	if resp.TokenType != "Bearer" {
		t.Errorf("token_type = %q, want Bearer", resp.TokenType)
	}
	if resp.ExpiresIn != 15*60 {
		t.Errorf("expires_in = %d, want %d", resp.ExpiresIn, 15*60)
	}
	return resp.AccessToken
}

func authorized(t *testing.T, h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestToken_Disabled(t *testing.T) {
	srv, _, _ := testServer(t)
	w := do(t, srv.buildRouter(), http.MethodPost, "/api/v1/auth/token", `{"api_key":"x"}`)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestToken_InvalidKey(t *testing.T) {
	router := authServer(t).buildRouter()

	for _, body := range []string{`{"api_key":"wrong"}`, `{}`} {
		w := do(t, router, http.MethodPost, "/api/v1/auth/token", body)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s status = %d, want %d", body, w.Code, http.StatusUnauthorized)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	router := authServer(t).buildRouter()
	token := issueToken(t, router)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   tokenSubject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatal(err)
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   tokenSubject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("some-other-secret"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"valid", token, http.StatusOK},
		{"expired", expired, http.StatusUnauthorized},
		{"wrong secret", forged, http.StatusUnauthorized},
		{"garbage", "not-a-jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := authorized(t, router, http.MethodGet, "/api/v1/devices", tt.token)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}

	t.Run("missing header", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/api/v1/devices", "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("health stays public", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/api/v1/health", "")
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
		}
	})
}

func TestWSTicket_SingleUse(t *testing.T) {
	router := authServer(t).buildRouter()
	token := issueToken(t, router)

	w := authorized(t, router, http.MethodPost, "/api/v1/auth/ws-ticket", token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp map[string]any
	decode(t, w, &resp)
	ticket, ok := resp["ticket"].(string)
	if !ok || ticket == "" {
		t.Fatal("expected ticket to be a non-empty string")
	}

	ts := httptest.NewServer(router)
	defer ts.Close()
	base := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"

	dialWS(t, base+"?ticket="+ticket)

	for _, url := range []string{base + "?ticket=" + ticket, base} {
		resp, err := http.Get(strings.Replace(url, "ws", "http", 1)) //nolint:noctx // test request
		if err != nil {
			t.Fatalf("GET %s: %v", url, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s status = %d, want %d", url, resp.StatusCode, http.StatusUnauthorized)
		}
	}
}
