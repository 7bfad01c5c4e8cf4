package domain

import "time"

// SalesRecord representa as vendas de um produto em uma loja em um dia
type SalesRecord struct {
	ID           int64     `json:"id"`
	Date         time.Time `json:"date"`
	ProductID    string    `json:"product_id"`
	LocationID   string    `json:"location_id"`
	QuantitySold float64   `json:"quantity_sold"`
	IsStockout   bool      `json:"is_stockout"`
	Traffic      float64   `json:"traffic"`
}

// SalesFilters delimita o período e o escopo de uma consulta de vendas
type SalesFilters struct {
	StartDate  *time.Time
	EndDate    *time.Time
	ProductID  string
	LocationID string
}
