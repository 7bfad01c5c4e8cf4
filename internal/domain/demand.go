package domain

import "time"

// ReconciledDemand é a estimativa de demanda sem restrição de estoque para um registro de vendas.
// Quando Imputed é verdadeiro, Demand foi estimada a partir do tráfego e da taxa de conversão.
type ReconciledDemand struct {
	Date         time.Time `json:"date"`
	ProductID    string    `json:"product_id"`
	LocationID   string    `json:"location_id"`
	QuantitySold float64   `json:"quantity_sold"`
	IsStockout   bool      `json:"is_stockout"`
	Demand       float64   `json:"demand"`
	Imputed      bool      `json:"imputed"`
}

// TrainingFeatures são as features derivadas de data e loja usadas no treino do modelo
type TrainingFeatures struct {
	Month             int     `json:"month"`
	DayOfWeek         int     `json:"day_of_week"`
	MonthSin          float64 `json:"month_sin"`
	MonthCos          float64 `json:"month_cos"`
	DowSin            float64 `json:"dow_sin"`
	DowCos            float64 `json:"dow_cos"`
	StoreHaloActivity float64 `json:"store_halo_activity"`
}

// TrainingExample é uma linha do dataset de treino: demanda reconciliada + features
type TrainingExample struct {
	RunID    string           `json:"run_id"`
	Demand   ReconciledDemand `json:"demand"`
	Traffic  float64          `json:"traffic"`
	Features TrainingFeatures `json:"features"`
}

// ReconciliationRun resume uma execução do reconciliador
type ReconciliationRun struct {
	ID             string    `json:"id"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
	RecordCount    int       `json:"record_count"`
	StockoutCount  int       `json:"stockout_count"`
	ImputedCount   int       `json:"imputed_count"`
	ConversionRate float64   `json:"conversion_rate"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}
