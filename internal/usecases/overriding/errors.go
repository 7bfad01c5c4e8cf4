package overriding

import (
	"errors"
	"fmt"

	"github.com/vfg2006/demand-forecast-api/pkg/apiErrors"
)

var (
	// ErrInvalidOverride indica multiplicador ou validade fora do permitido. O ledger não é alterado.
	ErrInvalidOverride = errors.New("ajuste manual inválido")
)

// OverrideError é um erro com contexto adicional para ajustes manuais
type OverrideError struct {
	Err        error  // Erro base
	Code       string // Código de erro para API
	ProductID  string
	LocationID string
	Details    string
}

func (e *OverrideError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *OverrideError) Unwrap() error {
	return e.Err
}

func (e *OverrideError) APICode() string {
	return e.Code
}

func newInvalidOverrideError(productID, locationID, details string) *OverrideError {
	return &OverrideError{
		Err:        ErrInvalidOverride,
		Code:       apiErrors.ErrInvalidOverride,
		ProductID:  productID,
		LocationID: locationID,
		Details:    details,
	}
}
