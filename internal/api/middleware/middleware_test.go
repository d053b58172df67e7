package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yoockh/yoointerview/internal/models"
)

const testSecret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestJWTAuth(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	valid := jwt.MapClaims{"sub": "user-1", "email": "Ada@Example.com", "exp": exp}
	admin := jwt.MapClaims{"sub": "user-2", "exp": exp, "app_metadata": map[string]any{"role": "admin"}}

	tests := []struct {
		name       string
		cfg        JWTConfig
		header     string
		wantStatus int
		wantUser   string
		wantEmail  string
		wantRole   string
	}{
		{name: "missing header", cfg: JWTConfig{Secret: testSecret}, wantStatus: http.StatusUnauthorized},
		{name: "not bearer", cfg: JWTConfig{Secret: testSecret}, header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "wrong secret", cfg: JWTConfig{Secret: testSecret}, header: "Bearer " + sign(t, "other", valid), wantStatus: http.StatusUnauthorized},
		{name: "no secret configured", header: "Bearer " + sign(t, testSecret, valid), wantStatus: http.StatusInternalServerError},
		{
			name:       "expired",
			cfg:        JWTConfig{Secret: testSecret},
			header:     "Bearer " + sign(t, testSecret, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Hour).Unix()}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "issuer mismatch",
			cfg:        JWTConfig{Secret: testSecret, Issuer: "https://auth.example"},
			header:     "Bearer " + sign(t, testSecret, valid),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid user",
			cfg:        JWTConfig{Secret: testSecret},
			header:     "Bearer " + sign(t, testSecret, valid),
			wantStatus: http.StatusOK,
			wantUser:   "user-1",
			wantEmail:  "ada@example.com",
			wantRole:   "user",
		},
		{
			name:       "admin app role",
			cfg:        JWTConfig{Secret: testSecret},
			header:     "Bearer " + sign(t, testSecret, admin),
			wantStatus: http.StatusOK,
			wantUser:   "user-2",
			wantRole:   "admin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser, gotEmail, gotRole string
			r := gin.New()
			r.GET("/x", JWTAuth(tt.cfg), func(c *gin.Context) {
				gotUser = c.GetString(CtxUserID)
				gotEmail = c.GetString(CtxEmail)
				gotRole = c.GetString(CtxRole)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if gotUser != tt.wantUser || gotEmail != tt.wantEmail || gotRole != tt.wantRole {
				t.Fatalf("context = (%q, %q, %q)", gotUser, gotEmail, gotRole)
			}
		})
	}
}

type resolverFunc func(ctx context.Context, user models.User) (models.Capabilities, error)

func (f resolverFunc) Resolve(ctx context.Context, user models.User) (models.Capabilities, error) {
	return f(ctx, user)
}

func TestCapabilitiesAndRequireAdmin(t *testing.T) {
	resolver := resolverFunc(func(_ context.Context, u models.User) (models.Capabilities, error) {
		switch u.ID {
		case "broken":
			return models.Capabilities{}, errors.New("db down")
		case "boss":
			return models.Capabilities{UserID: u.ID, Role: models.RoleAdmin}, nil
		}
		return models.Capabilities{UserID: u.ID, Role: models.RoleUser, AttemptsLeft: 3}, nil
	})

	tests := []struct {
		name       string
		userID     string
		wantStatus int
	}{
		{name: "no identity", wantStatus: http.StatusUnauthorized},
		{name: "resolver failure", userID: "broken", wantStatus: http.StatusInternalServerError},
		{name: "plain user", userID: "u1", wantStatus: http.StatusForbidden},
		{name: "resolved admin", userID: "boss", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/admin",
				func(c *gin.Context) {
					if tt.userID != "" {
						c.Set(CtxUserID, tt.userID)
						c.Set(CtxRole, "user")
					}
				},
				Capabilities(resolver),
				RequireAdmin(),
				func(c *gin.Context) { c.Status(http.StatusOK) },
			)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
