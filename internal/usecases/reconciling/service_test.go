package reconciling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/demand-forecast-api/infrastructure/repository/mocks"
	"github.com/vfg2006/demand-forecast-api/internal/config"
	"github.com/vfg2006/demand-forecast-api/internal/domain"
	"github.com/vfg2006/demand-forecast-api/internal/synthetic"
	"github.com/vfg2006/demand-forecast-api/pkg/metrics"
	"go.uber.org/mock/gomock"
)

func newTestService(t *testing.T) (*Service, *mocks.MockSalesRecordRepository, *mocks.MockTrainingDatasetRepository, *metrics.Registry) {
	t.Helper()

	ctrl := gomock.NewController(t)
	salesRepo := mocks.NewMockSalesRecordRepository(ctrl)
	trainingRepo := mocks.NewMockTrainingDatasetRepository(ctrl)
	registry := metrics.NewRegistry()

	cfg := &config.Config{Reconciliation: config.Reconciliation{MaxConcurrentJobs: 3}}
	svc := NewService(salesRepo, trainingRepo, cfg, registry).(*Service)

	clock := time.Date(2024, time.April, 1, 2, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	return svc, salesRepo, trainingRepo, registry
}

func TestServiceRun(t *testing.T) {
	svc, salesRepo, trainingRepo, registry := newTestService(t)

	ds := synthetic.Generate(synthetic.Options{
		Start:     time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Days:      60,
		Products:  8,
		Locations: 2,
		Seed:      synthetic.DefaultSeed,
	})
	expected, err := Reconcile(ds.Records)
	require.NoError(t, err)

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	filters := &domain.SalesFilters{StartDate: &start, EndDate: &end}

	salesRepo.EXPECT().ListByPeriod(gomock.Any(), filters).Return(ds.Records, nil)

	var savedExamples []domain.TrainingExample
	trainingRepo.EXPECT().
		SaveRun(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, run *domain.ReconciliationRun, examples []domain.TrainingExample) error {
			savedExamples = examples
			return nil
		})

	run, err := svc.Run(context.Background(), filters)
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, len(ds.Records), run.RecordCount)
	assert.Equal(t, start, run.PeriodStart)
	assert.Equal(t, end, run.PeriodEnd)
	assert.Positive(t, run.StockoutCount)
	assert.LessOrEqual(t, run.ImputedCount, run.StockoutCount)

	require.Len(t, savedExamples, len(expected))
	for i := range expected {
		assert.Equal(t, expected[i], savedExamples[i].Demand, "ordem de entrada preservada no índice %d", i)
		assert.Equal(t, run.ID, savedExamples[i].RunID)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(registry.ReconciliationRuns.WithLabelValues(metrics.RunStatusSuccess)))
	assert.Equal(t, float64(run.RecordCount), testutil.ToFloat64(registry.ReconciledRecords))
	assert.False(t, svc.IsRunning())
}

func TestServiceRunIgnoraFiltroDeProdutoELoja(t *testing.T) {
	svc, salesRepo, trainingRepo, _ := newTestService(t)

	records := []domain.SalesRecord{
		{ProductID: "P1", LocationID: "L1", QuantitySold: 100, Traffic: 1000},
		{ProductID: "P1", LocationID: "L1", QuantitySold: 10, IsStockout: true, Traffic: 1000},
		{ProductID: "P2", LocationID: "L1", QuantitySold: 50, Traffic: 1000},
		{ProductID: "P2", LocationID: "L1", QuantitySold: 5, IsStockout: true, Traffic: 1000},
	}

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)

	salesRepo.EXPECT().
		ListByPeriod(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filters *domain.SalesFilters) ([]domain.SalesRecord, error) {
			assert.Empty(t, filters.ProductID)
			assert.Empty(t, filters.LocationID)
			assert.Equal(t, &start, filters.StartDate)
			assert.Equal(t, &end, filters.EndDate)
			return records, nil
		})

	var saved []domain.TrainingExample
	trainingRepo.EXPECT().
		SaveRun(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *domain.ReconciliationRun, examples []domain.TrainingExample) error {
			saved = examples
			return nil
		})

	run, err := svc.Run(context.Background(), &domain.SalesFilters{
		StartDate:  &start,
		EndDate:    &end,
		ProductID:  "P1",
		LocationID: "L1",
	})
	require.NoError(t, err)

	// taxa global: 150/2000
	assert.InDelta(t, 0.075, run.ConversionRate, 1e-12)
	require.Len(t, saved, len(records), "o dataset do período inclui todos os produtos")
	assert.InDelta(t, 75.0, saved[1].Demand.Demand, 1e-9)
	assert.InDelta(t, 75.0, saved[3].Demand.Demand, 1e-9)
}

func TestServiceRunDadosInsuficientesNaoGrava(t *testing.T) {
	svc, salesRepo, _, registry := newTestService(t)

	salesRepo.EXPECT().ListByPeriod(gomock.Any(), gomock.Any()).Return([]domain.SalesRecord{
		{ProductID: "P1", QuantitySold: 3, IsStockout: true, Traffic: 500},
	}, nil)
	// SaveRun não deve ser chamado: o controller falha em chamadas inesperadas

	run, err := svc.Run(context.Background(), nil)

	assert.Nil(t, run)
	assert.True(t, errors.Is(err, ErrDataInsufficient))
	assert.Equal(t, 1.0, testutil.ToFloat64(registry.ReconciliationRuns.WithLabelValues(metrics.RunStatusDataInsufficient)))
}

func TestServiceRunErroNoRepositorio(t *testing.T) {
	svc, salesRepo, trainingRepo, _ := newTestService(t)

	salesRepo.EXPECT().ListByPeriod(gomock.Any(), gomock.Any()).Return([]domain.SalesRecord{
		{ProductID: "P1", QuantitySold: 100, Traffic: 1000},
		{ProductID: "P1", QuantitySold: 10, IsStockout: true, Traffic: 1000},
	}, nil)
	trainingRepo.EXPECT().SaveRun(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("conexão perdida"))

	run, err := svc.Run(context.Background(), nil)

	assert.Nil(t, run)
	var reconcileErr *ReconcileError
	require.True(t, errors.As(err, &reconcileErr))
	assert.Equal(t, "SRV_002", reconcileErr.Code)
}

func TestServiceRunEmAndamento(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	require.True(t, svc.tryStart())

	_, err := svc.Run(context.Background(), nil)

	assert.True(t, errors.Is(err, ErrRunInProgress))
	assert.True(t, svc.IsRunning())
}

func TestServiceRunContextoCancelado(t *testing.T) {
	svc, salesRepo, _, _ := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	salesRepo.EXPECT().ListByPeriod(gomock.Any(), gomock.Any()).Return([]domain.SalesRecord{
		{ProductID: "P1", QuantitySold: 100, Traffic: 1000},
	}, nil)

	_, err := svc.Run(ctx, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestServiceLatestRun(t *testing.T) {
	svc, _, trainingRepo, _ := newTestService(t)

	want := &domain.ReconciliationRun{ID: "abc", RecordCount: 10}
	trainingRepo.EXPECT().GetLatestRun(gomock.Any()).Return(want, nil)

	got, err := svc.LatestRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
