// Package synthetic gera histórico de vendas com demanda censurada para testes e carga inicial.
package synthetic

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/vfg2006/demand-forecast-api/internal/domain"
)

const DefaultSeed = 42

type Options struct {
	Start     time.Time
	Days      int
	Products  int
	Locations int
	Seed      int64
}

// DefaultOptions retorna um ano de histórico para 50 produtos em uma loja
func DefaultOptions() Options {
	return Options{
		Start:     time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		Days:      365,
		Products:  50,
		Locations: 1,
		Seed:      DefaultSeed,
	}
}

// Dataset contém os registros observados e a demanda real que o reconciliador não enxerga.
// TrueDemand[i] corresponde a Records[i].
type Dataset struct {
	Records    []domain.SalesRecord
	TrueDemand []float64
}

// Generate é determinístico para a mesma Options. A demanda real tem base 20..49 por produto,
// +10 nos fins de semana e ruído normal (dp 5). O estoque da manhã segue N(demanda-2, 5), então
// há ruptura em boa parte dos dias.
func Generate(opts Options) Dataset {
	rng := rand.New(rand.NewSource(opts.Seed))

	total := opts.Days * opts.Products * opts.Locations
	ds := Dataset{
		Records:    make([]domain.SalesRecord, 0, total),
		TrueDemand: make([]float64, 0, total),
	}

	for l := 1; l <= opts.Locations; l++ {
		locationID := fmt.Sprintf("L%02d", l)

		for p := 1; p <= opts.Products; p++ {
			productID := fmt.Sprintf("P%03d", p)
			base := 20 + rng.Intn(30)

			for d := 0; d < opts.Days; d++ {
				date := opts.Start.AddDate(0, 0, d)

				weekend := 0
				if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
					weekend = 10
				}

				trueDemand := math.Max(0, math.Trunc(float64(base+weekend)+rng.NormFloat64()*5))
				inventory := math.Max(0, math.Trunc(trueDemand-2+rng.NormFloat64()*5))

				ds.Records = append(ds.Records, domain.SalesRecord{
					Date:         date,
					ProductID:    productID,
					LocationID:   locationID,
					QuantitySold: math.Min(trueDemand, inventory),
					IsStockout:   trueDemand > inventory,
					Traffic:      float64(500 + rng.Intn(500)),
				})
				ds.TrueDemand = append(ds.TrueDemand, trueDemand)
			}
		}
	}

	return ds
}
