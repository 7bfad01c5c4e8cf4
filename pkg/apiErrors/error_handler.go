package apiErrors

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Códigos de erro retornados pela API
const (
	// Erros de autenticação
	ErrInvalidCredentials    = "AUTH_001" // Credenciais inválidas
	ErrUserDisabled          = "AUTH_002" // Usuário desativado
	ErrUserNotFound          = "AUTH_003" // Usuário não encontrado
	ErrInvalidToken          = "AUTH_006" // Token inválido
	ErrExpiredToken          = "AUTH_007" // Token expirado
	ErrInsufficientPrivilege = "AUTH_008" // Privilégios insuficientes

	// Erros de validação
	ErrInvalidRequest      = "VAL_001" // Requisição inválida
	ErrMissingRequiredData = "VAL_002" // Dados obrigatórios ausentes
	ErrInvalidFormat       = "VAL_003" // Formato de dados inválido
	ErrInvalidOverride     = "VAL_004" // Ajuste manual com multiplicador ou validade inválidos

	// Erros de dados
	ErrDataInsufficient = "DATA_001" // Histórico sem base para a taxa de conversão
	ErrRunInProgress    = "DATA_002" // Reconciliação já em andamento
	ErrNotFound         = "DATA_003" // Recurso não encontrado

	// Erros do servidor
	ErrInternalServer    = "SRV_001" // Erro interno do servidor
	ErrDatabaseOperation = "SRV_002" // Erro de operação de banco de dados
)

// Mapeamento de códigos de erro para status HTTP
var httpStatusMap = map[string]int{
	ErrInvalidCredentials:    http.StatusUnauthorized,
	ErrUserDisabled:          http.StatusForbidden,
	ErrUserNotFound:          http.StatusNotFound,
	ErrInvalidToken:          http.StatusUnauthorized,
	ErrExpiredToken:          http.StatusUnauthorized,
	ErrInsufficientPrivilege: http.StatusForbidden,
	ErrInvalidRequest:        http.StatusBadRequest,
	ErrMissingRequiredData:   http.StatusBadRequest,
	ErrInvalidFormat:         http.StatusBadRequest,
	ErrInvalidOverride:       http.StatusBadRequest,
	ErrDataInsufficient:      http.StatusUnprocessableEntity,
	ErrRunInProgress:         http.StatusConflict,
	ErrNotFound:              http.StatusNotFound,
	ErrInternalServer:        http.StatusInternalServerError,
	ErrDatabaseOperation:     http.StatusInternalServerError,
}

// APIError representa um erro de API padronizado
type APIError struct {
	Code    string `json:"code"`              // Código de erro para o cliente
	Message string `json:"message,omitempty"` // Mensagem descritiva (opcional)
	Details any    `json:"details,omitempty"` // Detalhes adicionais (opcional)
}

// Coder é implementado pelos erros de domínio que já sabem seu código de API
type Coder interface {
	error
	APICode() string
}

// StatusFor retorna o status HTTP associado a um código de erro
func StatusFor(code string) int {
	status, exists := httpStatusMap[code]
	if !exists {
		return http.StatusInternalServerError
	}
	return status
}

// WriteError escreve o erro padronizado para a resposta HTTP
func WriteError(w http.ResponseWriter, code string, message string, details any) {
	apiErr := APIError{
		Code:    code,
		Message: message,
		Details: details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusFor(code))
	json.NewEncoder(w).Encode(apiErr)
}

// WriteFromError escreve a resposta a partir de um erro Go, usando o código do erro
// de domínio quando existir e fallbackCode caso contrário
func WriteFromError(w http.ResponseWriter, err error, fallbackCode string) {
	apiErr := FromError(err, fallbackCode)
	WriteError(w, apiErr.Code, apiErr.Message, apiErr.Details)
}

// FromError cria um erro de API a partir de um erro Go
func FromError(err error, code string) APIError {
	if err == nil {
		return APIError{
			Code:    ErrInternalServer,
			Message: "Erro desconhecido",
		}
	}

	var coder Coder
	if errors.As(err, &coder) && coder.APICode() != "" {
		code = coder.APICode()
	}

	return APIError{
		Code:    code,
		Message: err.Error(),
	}
}
