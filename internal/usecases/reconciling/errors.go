package reconciling

import (
	"errors"
	"fmt"

	"github.com/vfg2006/demand-forecast-api/pkg/apiErrors"
)

var (
	// ErrDataInsufficient indica que não há base sem ruptura (ou tráfego) para calcular a taxa de conversão
	ErrDataInsufficient = errors.New("dados insuficientes para calcular a taxa de conversão")
	ErrRunInProgress    = errors.New("reconciliação já em andamento")
)

// ReconcileError é um erro com contexto adicional para a reconciliação
type ReconcileError struct {
	Err     error  // Erro base
	Code    string // Código de erro para API
	Details string // Detalhes adicionais
}

func (e *ReconcileError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *ReconcileError) Unwrap() error {
	return e.Err
}

// APICode permite que a camada HTTP traduza o erro sem conhecer este pacote
func (e *ReconcileError) APICode() string {
	return e.Code
}

func newDataInsufficientError(details string) *ReconcileError {
	return &ReconcileError{
		Err:     ErrDataInsufficient,
		Code:    apiErrors.ErrDataInsufficient,
		Details: details,
	}
}
