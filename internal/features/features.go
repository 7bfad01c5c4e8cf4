// Package features deriva as features de treino a partir da data e do movimento da loja.
package features

import (
	"fmt"
	"math"
	"time"

	"github.com/vfg2006/demand-forecast-api/internal/domain"
)

// HaloKey agrupa o movimento de uma loja em um dia
type HaloKey struct {
	Date       string
	LocationID string
}

func haloKeyOf(date time.Time, locationID string) HaloKey {
	return HaloKey{Date: date.Format(time.DateOnly), LocationID: locationID}
}

// EncodeCyclicalDate converte mês e dia da semana em pares seno/cosseno, de modo que
// dezembro fique próximo de janeiro e domingo próximo de segunda. DayOfWeek começa em 0 na segunda.
func EncodeCyclicalDate(date time.Time) domain.TrainingFeatures {
	month := int(date.Month())
	dow := (int(date.Weekday()) + 6) % 7

	monthAngle := 2 * math.Pi * float64(month) / 12
	dowAngle := 2 * math.Pi * float64(dow) / 7

	return domain.TrainingFeatures{
		Month:     month,
		DayOfWeek: dow,
		MonthSin:  math.Sin(monthAngle),
		MonthCos:  math.Cos(monthAngle),
		DowSin:    math.Sin(dowAngle),
		DowCos:    math.Cos(dowAngle),
	}
}

// StoreHaloActivity soma as unidades vendidas por loja e dia, um indicador de quão movimentada a loja estava
func StoreHaloActivity(records []domain.SalesRecord) map[HaloKey]float64 {
	activity := make(map[HaloKey]float64)
	for _, record := range records {
		activity[haloKeyOf(record.Date, record.LocationID)] += record.QuantitySold
	}
	return activity
}

// BuildTrainingExamples junta a demanda reconciliada de cada registro com suas features.
// demands[i] deve corresponder a records[i].
func BuildTrainingExamples(runID string, demands []domain.ReconciledDemand, records []domain.SalesRecord) ([]domain.TrainingExample, error) {
	if len(demands) != len(records) {
		return nil, fmt.Errorf("features: %d demandas para %d registros", len(demands), len(records))
	}

	halo := StoreHaloActivity(records)

	examples := make([]domain.TrainingExample, len(demands))
	for i, demand := range demands {
		feats := EncodeCyclicalDate(demand.Date)
		feats.StoreHaloActivity = halo[haloKeyOf(demand.Date, demand.LocationID)]

		examples[i] = domain.TrainingExample{
			RunID:    runID,
			Demand:   demand,
			Traffic:  records[i].Traffic,
			Features: feats,
		}
	}

	return examples, nil
}
