package domain

import "time"

// DefaultOverrideReason é a origem registrada quando o gerente não informa um motivo
const DefaultOverrideReason = "User Input"

// OverrideKey identifica um ajuste manual: um produto em uma loja
type OverrideKey struct {
	ProductID  string `json:"product_id"`
	LocationID string `json:"location_id"`
}

// OverrideEntry é um ajuste multiplicativo sobre a previsão do modelo com validade limitada
type OverrideEntry struct {
	ProductID  string    `json:"product_id"`
	LocationID string    `json:"location_id"`
	Multiplier float64   `json:"multiplier"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Key retorna a chave do ajuste
func (o OverrideEntry) Key() OverrideKey {
	return OverrideKey{ProductID: o.ProductID, LocationID: o.LocationID}
}

// IsExpired indica se o ajuste já venceu no instante informado
func (o OverrideEntry) IsExpired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

type OverrideAction string

const (
	OverrideActionSet     OverrideAction = "set"
	OverrideActionExpired OverrideAction = "expired"
	OverrideActionSwept   OverrideAction = "swept"
)

// OverrideEvent é o registro de auditoria de um ajuste, usado para re-treino
type OverrideEvent struct {
	ID         string         `json:"id"`
	ProductID  string         `json:"product_id"`
	LocationID string         `json:"location_id"`
	Action     OverrideAction `json:"action"`
	Multiplier float64        `json:"multiplier"`
	Reason     string         `json:"reason"`
	Actor      string         `json:"actor"`
	ExpiresAt  time.Time      `json:"expires_at"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// SetOverrideRequest é o payload enviado pelo gerente para criar ou substituir um ajuste
type SetOverrideRequest struct {
	ProductID  string   `json:"product_id" validate:"required"`
	LocationID string   `json:"location_id" validate:"required"`
	Multiplier float64  `json:"multiplier" validate:"required,gt=0"`
	ValidDays  *float64 `json:"valid_days,omitempty" validate:"omitempty,gt=0"`
	Reason     string   `json:"reason" validate:"omitempty,max=255"`
}

// EffectivePredictionResponse é a previsão final após aplicar (ou não) o ajuste manual
type EffectivePredictionResponse struct {
	ProductID      string  `json:"product_id"`
	LocationID     string  `json:"location_id"`
	BasePrediction float64 `json:"base_prediction"`
	Prediction     float64 `json:"prediction"`
	OverrideStatus string  `json:"override_status"`
}
