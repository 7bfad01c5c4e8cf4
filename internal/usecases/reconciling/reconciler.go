// Package reconciling reconstrói a demanda sem restrição de estoque a partir do histórico de vendas.
//
// Nos dias com ruptura o vendido é apenas um limite inferior da demanda. A demanda desses dias é
// estimada como tráfego x taxa de conversão, onde a taxa é calculada uma única vez sobre todos os
// registros sem ruptura. A taxa é global e não estratificada por produto.
package reconciling

import (
	"fmt"
	"math"

	"github.com/vfg2006/demand-forecast-api/internal/domain"
)

// ConversionRate calcula sum(vendido)/sum(tráfego) sobre os registros sem ruptura.
// Retorna ErrDataInsufficient se não houver registros sem ruptura ou se o tráfego total for zero.
func ConversionRate(records []domain.SalesRecord) (float64, error) {
	var sold, traffic float64
	baseline := 0

	for _, record := range records {
		if record.IsStockout {
			continue
		}
		baseline++
		sold += record.QuantitySold
		traffic += record.Traffic
	}

	if baseline == 0 {
		return 0, newDataInsufficientError("nenhum registro sem ruptura")
	}

	if traffic <= 0 {
		return 0, newDataInsufficientError(fmt.Sprintf("tráfego total sem ruptura igual a %v", traffic))
	}

	rate := sold / traffic
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, newDataInsufficientError(fmt.Sprintf("taxa de conversão indefinida (%v/%v)", sold, traffic))
	}

	return rate, nil
}

// Reconcile devolve uma demanda reconciliada por registro, na mesma ordem da entrada
func Reconcile(records []domain.SalesRecord) ([]domain.ReconciledDemand, error) {
	rate, err := ConversionRate(records)
	if err != nil {
		return nil, err
	}

	return ReconcileWithRate(records, rate), nil
}

// ReconcileWithRate aplica uma taxa já calculada. Usado para reconciliar partições em paralelo
// com a taxa global.
func ReconcileWithRate(records []domain.SalesRecord, rate float64) []domain.ReconciledDemand {
	out := make([]domain.ReconciledDemand, len(records))
	for i, record := range records {
		out[i] = reconcileRecord(record, rate)
	}
	return out
}

func reconcileRecord(record domain.SalesRecord, rate float64) domain.ReconciledDemand {
	demand := domain.ReconciledDemand{
		Date:         record.Date,
		ProductID:    record.ProductID,
		LocationID:   record.LocationID,
		QuantitySold: record.QuantitySold,
		IsStockout:   record.IsStockout,
		Demand:       record.QuantitySold,
	}

	if !record.IsStockout {
		return demand
	}

	// nunca abaixo do vendido
	if potential := record.Traffic * rate; potential > record.QuantitySold {
		demand.Demand = potential
		demand.Imputed = true
	}

	return demand
}

// partitionByProduct agrupa os índices dos registros por produto, na ordem da primeira aparição
func partitionByProduct(records []domain.SalesRecord) [][]int {
	positions := make(map[string]int)
	partitions := make([][]int, 0)

	for i, record := range records {
		p, ok := positions[record.ProductID]
		if !ok {
			p = len(partitions)
			positions[record.ProductID] = p
			partitions = append(partitions, nil)
		}
		partitions[p] = append(partitions[p], i)
	}

	return partitions
}
