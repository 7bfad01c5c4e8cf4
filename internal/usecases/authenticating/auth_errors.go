package authenticating

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials  = errors.New("credenciais inválidas")
	ErrUserDisabled        = errors.New("usuário desativado")
	ErrUserNotFound        = errors.New("usuário não encontrado")
	ErrInvalidToken        = errors.New("token inválido")
	ErrExpiredToken        = errors.New("token expirado")
	ErrMissingRequiredData = errors.New("dados obrigatórios ausentes")
)

// AuthError é um erro com contexto adicional para autenticação
type AuthError struct {
	Err     error  // Erro base
	Code    string // Código de erro para API
	UserID  int    // ID do usuário envolvido (quando aplicável)
	Details string // Detalhes adicionais
}

func (e *AuthError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func (e *AuthError) APICode() string {
	return e.Code
}

// IsCredentialsError verifica se o erro está relacionado a credenciais inválidas
func IsCredentialsError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrUserDisabled) ||
		errors.Is(err, ErrUserNotFound)
}

func NewAuthError(baseErr error, code string, details string) *AuthError {
	return &AuthError{
		Err:     baseErr,
		Code:    code,
		Details: details,
	}
}

func NewUserAuthError(baseErr error, code string, userID int, details string) *AuthError {
	return &AuthError{
		Err:     baseErr,
		Code:    code,
		UserID:  userID,
		Details: details,
	}
}
