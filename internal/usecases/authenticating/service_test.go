package authenticating

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/demand-forecast-api/infrastructure/repository/mocks"
	"github.com/vfg2006/demand-forecast-api/internal/config"
	"github.com/vfg2006/demand-forecast-api/internal/domain"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*Service, *mocks.MockUserRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockUserRepository(ctrl)
	cfg := &config.Config{Auth: config.Auth{Secret: "segredo-de-teste"}}

	return NewService(userRepo, cfg).(*Service), userRepo
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestLoginUser(t *testing.T) {
	svc, userRepo := newTestService(t)

	user := &domain.User{ID: 3, Name: "Ana", Email: "ana@loja.com", PasswordHash: hashed(t, "senha123"), Active: true, RoleID: 2}
	userRepo.EXPECT().GetUserByEmail(gomock.Any(), "ana@loja.com").Return(user, nil)

	token, err := svc.LoginUser(context.Background(), " Ana@Loja.com ", "senha123")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 3, claims.UserID)
	assert.Equal(t, 2, claims.UserRoleID)
	assert.Equal(t, "ana@loja.com", claims.UserEmail)
}

func TestLoginUserErros(t *testing.T) {
	active := &domain.User{ID: 1, Email: "a@b.com", PasswordHash: "", Active: true}
	inactive := &domain.User{ID: 2, Email: "a@b.com", Active: false}

	tests := []struct {
		name     string
		password string
		user     *domain.User
		repoErr  error
		callRepo bool
		wantErr  error
		wantCode string
	}{
		{name: "sem senha", password: "", wantErr: ErrMissingRequiredData, wantCode: "VAL_002"},
		{name: "usuário inexistente", password: "x", callRepo: true, wantErr: ErrUserNotFound, wantCode: "AUTH_003"},
		{name: "usuário desativado", password: "x", user: inactive, callRepo: true, wantErr: ErrUserDisabled, wantCode: "AUTH_002"},
		{name: "senha incorreta", password: "x", user: active, callRepo: true, wantErr: ErrInvalidCredentials, wantCode: "AUTH_001"},
		{name: "erro no banco", password: "x", repoErr: errors.New("timeout"), callRepo: true, wantCode: "SRV_002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, userRepo := newTestService(t)
			if tt.callRepo {
				userRepo.EXPECT().GetUserByEmail(gomock.Any(), "a@b.com").Return(tt.user, tt.repoErr)
			}

			token, err := svc.LoginUser(context.Background(), "a@b.com", tt.password)

			assert.Empty(t, token)
			var authErr *AuthError
			require.True(t, errors.As(err, &authErr))
			assert.Equal(t, tt.wantCode, authErr.Code)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTokenExpirado(t *testing.T) {
	svc, _ := newTestService(t)
	svc.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }

	token, err := svc.generateJWT(&domain.User{ID: 1})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenAssinaturaInvalida(t *testing.T) {
	svc, _ := newTestService(t)
	token, err := svc.generateJWT(&domain.User{ID: 1})
	require.NoError(t, err)

	other := &Service{secret: "outro-segredo", now: time.Now}
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
