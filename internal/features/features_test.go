package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/demand-forecast-api/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEncodeCyclicalDateDezembroPertoDeJaneiro(t *testing.T) {
	dec := EncodeCyclicalDate(day(2023, time.December, 1))
	jan := EncodeCyclicalDate(day(2024, time.January, 1))

	assert.Equal(t, 12, dec.Month)
	assert.Equal(t, 1, jan.Month)
	assert.InDelta(t, dec.MonthCos, jan.MonthCos, 0.2)
}

func TestEncodeCyclicalDateDiaDaSemana(t *testing.T) {
	monday := EncodeCyclicalDate(day(2024, time.January, 1))
	sunday := EncodeCyclicalDate(day(2024, time.January, 7))

	assert.Equal(t, 0, monday.DayOfWeek)
	assert.Equal(t, 6, sunday.DayOfWeek)
	assert.InDelta(t, 0, monday.DowSin, 1e-9)
	assert.InDelta(t, 1, monday.DowCos, 1e-9)
}

func TestEncodeCyclicalDateIntervalo(t *testing.T) {
	start := day(2024, time.January, 1)
	for i := 0; i < 366; i++ {
		f := EncodeCyclicalDate(start.AddDate(0, 0, i))
		for _, v := range []float64{f.MonthSin, f.MonthCos, f.DowSin, f.DowCos} {
			assert.GreaterOrEqual(t, v, -1.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestStoreHaloActivity(t *testing.T) {
	d1 := day(2024, time.March, 1)
	d2 := day(2024, time.March, 2)
	records := []domain.SalesRecord{
		{Date: d1, ProductID: "P1", LocationID: "L1", QuantitySold: 10},
		{Date: d1, ProductID: "P2", LocationID: "L1", QuantitySold: 5},
		{Date: d1, ProductID: "P1", LocationID: "L2", QuantitySold: 7},
		{Date: d2, ProductID: "P1", LocationID: "L1", QuantitySold: 3},
	}

	halo := StoreHaloActivity(records)

	assert.Equal(t, 15.0, halo[HaloKey{Date: "2024-03-01", LocationID: "L1"}])
	assert.Equal(t, 7.0, halo[HaloKey{Date: "2024-03-01", LocationID: "L2"}])
	assert.Equal(t, 3.0, halo[HaloKey{Date: "2024-03-02", LocationID: "L1"}])
}

func TestBuildTrainingExamples(t *testing.T) {
	d := day(2024, time.March, 1)
	records := []domain.SalesRecord{
		{Date: d, ProductID: "P1", LocationID: "L1", QuantitySold: 10, Traffic: 900},
		{Date: d, ProductID: "P2", LocationID: "L1", QuantitySold: 2, IsStockout: true, Traffic: 900},
	}
	demands := []domain.ReconciledDemand{
		{Date: d, ProductID: "P1", LocationID: "L1", QuantitySold: 10, Demand: 10},
		{Date: d, ProductID: "P2", LocationID: "L1", QuantitySold: 2, IsStockout: true, Demand: 9, Imputed: true},
	}

	examples, err := BuildTrainingExamples("run1", demands, records)
	require.NoError(t, err)
	require.Len(t, examples, 2)

	assert.Equal(t, "run1", examples[1].RunID)
	assert.Equal(t, 900.0, examples[1].Traffic)
	assert.Equal(t, 12.0, examples[1].Features.StoreHaloActivity)
	assert.Equal(t, 3, examples[1].Features.Month)

	_, err = BuildTrainingExamples("run1", demands[:1], records)
	assert.Error(t, err)
}
