package handler

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/demand-forecast-api/internal/domain"
	"github.com/vfg2006/demand-forecast-api/internal/usecases/authenticating"
	"github.com/vfg2006/demand-forecast-api/pkg/apiErrors"
)

func Login(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		token, err := service.LoginUser(r.Context(), req.Email, req.Password)
		if err != nil {
			handleLoginError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"token": token,
		})
	}
}

// handleLoginError não diferencia usuário inexistente de senha incorreta na resposta
func handleLoginError(w http.ResponseWriter, err error) {
	var authErr *authenticating.AuthError
	if !errors.As(err, &authErr) {
		logrus.WithError(err).Error("Erro inesperado no login")
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro interno ao realizar login", nil)
		return
	}

	switch {
	case errors.Is(err, authenticating.ErrUserNotFound), errors.Is(err, authenticating.ErrInvalidCredentials):
		apiErrors.WriteError(w, apiErrors.ErrInvalidCredentials, "Credenciais inválidas", nil)
	case errors.Is(err, authenticating.ErrUserDisabled):
		apiErrors.WriteError(w, apiErrors.ErrUserDisabled, "Usuário desativado", nil)
	default:
		if authErr.Code == apiErrors.ErrDatabaseOperation {
			logrus.WithError(err).Error("Erro ao consultar usuário no login")
		}
		apiErrors.WriteError(w, authErr.Code, authErr.Error(), nil)
	}
}
