package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/demand-forecast-api/internal/domain"
	"github.com/vfg2006/demand-forecast-api/pkg/log"
)

type stubValidator struct {
	claims *domain.Claims
	err    error
}

func (s stubValidator) ValidateToken(string) (*domain.Claims, error) {
	return s.claims, s.err
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestMain(m *testing.M) {
	log.SetupTestLogger()
	os.Exit(m.Run())
}

func TestAuthMiddleware(t *testing.T) {
	claims := &domain.Claims{UserID: 7, UserRoleID: RoleSupervisor}

	tests := []struct {
		name       string
		path       string
		header     string
		validator  stubValidator
		wantStatus int
	}{
		{"rota pública sem token", "/healthcheck", "", stubValidator{}, http.StatusNoContent},
		{"métricas sem token", "/metrics", "", stubValidator{}, http.StatusNoContent},
		{"sem cabeçalho", "/v1/overrides", "", stubValidator{}, http.StatusUnauthorized},
		{"sem prefixo Bearer", "/v1/overrides", "abc", stubValidator{}, http.StatusUnauthorized},
		{"token inválido", "/v1/overrides", "Bearer abc", stubValidator{err: errors.New("inválido")}, http.StatusUnauthorized},
		{"token válido", "/v1/overrides", "Bearer abc", stubValidator{claims: claims}, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			AuthMiddleware(tt.validator)(okHandler).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		claims     *domain.Claims
		wantStatus int
	}{
		{"sem claims", nil, http.StatusUnauthorized},
		{"visualizador bloqueado", &domain.Claims{UserRoleID: RoleViewer}, http.StatusForbidden},
		{"supervisor permitido", &domain.Claims{UserRoleID: RoleSupervisor}, http.StatusNoContent},
		{"admin permitido", &domain.Claims{UserRoleID: RoleAdmin}, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/overrides", nil)
			if tt.claims != nil {
				req = req.WithContext(context.WithValue(req.Context(), ContextKeyUser, tt.claims))
			}
			rec := httptest.NewRecorder()

			AdminOrSupervisor()(okHandler).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestCors(t *testing.T) {
	handler := Cors([]string{"http://localhost:3000"})(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/v1/overrides", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/v1/overrides", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLogPanicMiddleware(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	rec := httptest.NewRecorder()

	LogPanicMiddleware()(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
