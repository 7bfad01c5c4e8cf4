package reconciling

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/demand-forecast-api/infrastructure/repository"
	"github.com/vfg2006/demand-forecast-api/internal/config"
	"github.com/vfg2006/demand-forecast-api/internal/domain"
	"github.com/vfg2006/demand-forecast-api/internal/features"
	"github.com/vfg2006/demand-forecast-api/pkg/apiErrors"
	"github.com/vfg2006/demand-forecast-api/pkg/metrics"
	"github.com/vfg2006/demand-forecast-api/pkg/utils"
)

type Reconciler interface {
	Run(ctx context.Context, filters *domain.SalesFilters) (*domain.ReconciliationRun, error)
	LatestRun(ctx context.Context) (*domain.ReconciliationRun, error)
	IsRunning() bool
}

type Service struct {
	salesRepo         repository.SalesRecordRepository
	trainingRepo      repository.TrainingDatasetRepository
	metrics           *metrics.Registry
	maxConcurrentJobs int
	now               func() time.Time

	runMutex sync.Mutex
	running  bool
}

func NewService(
	salesRepo repository.SalesRecordRepository,
	trainingRepo repository.TrainingDatasetRepository,
	cfg *config.Config,
	registry *metrics.Registry,
) Reconciler {
	return &Service{
		salesRepo:         salesRepo,
		trainingRepo:      trainingRepo,
		metrics:           registry,
		maxConcurrentJobs: max(cfg.Reconciliation.MaxConcurrentJobs, 1),
		now:               time.Now,
	}
}

// Run carrega o histórico do período, reconcilia a demanda e grava o dataset de treino.
// Se a taxa de conversão não puder ser calculada nada é gravado.
func (s *Service) Run(ctx context.Context, filters *domain.SalesFilters) (*domain.ReconciliationRun, error) {
	if !s.tryStart() {
		return nil, &ReconcileError{Err: ErrRunInProgress, Code: apiErrors.ErrRunInProgress}
	}
	defer s.finish()

	startedAt := s.now()
	run, err := s.run(ctx, periodOnly(filters), startedAt)

	s.metrics.ReconciliationDuration.Observe(s.now().Sub(startedAt).Seconds())
	switch {
	case err == nil:
		s.metrics.ReconciliationRuns.WithLabelValues(metrics.RunStatusSuccess).Inc()
	case errors.Is(err, ErrDataInsufficient):
		s.metrics.ReconciliationRuns.WithLabelValues(metrics.RunStatusDataInsufficient).Inc()
	default:
		s.metrics.ReconciliationRuns.WithLabelValues(metrics.RunStatusError).Inc()
	}

	return run, err
}

// periodOnly descarta produto e loja dos filtros. A taxa de conversão é calculada sobre todo o
// período e SaveRun substitui o dataset do período inteiro.
func periodOnly(filters *domain.SalesFilters) *domain.SalesFilters {
	period := &domain.SalesFilters{}
	if filters == nil {
		return period
	}

	if filters.ProductID != "" || filters.LocationID != "" {
		logrus.WithFields(logrus.Fields{
			"product_id":  filters.ProductID,
			"location_id": filters.LocationID,
		}).Warn("Reconciliação ignora filtro de produto/loja, executando sobre o período completo")
	}

	period.StartDate = filters.StartDate
	period.EndDate = filters.EndDate
	return period
}

func (s *Service) run(ctx context.Context, filters *domain.SalesFilters, startedAt time.Time) (*domain.ReconciliationRun, error) {
	records, err := s.salesRepo.ListByPeriod(ctx, filters)
	if err != nil {
		logrus.WithError(err).Error("Erro ao carregar histórico de vendas para reconciliação")
		return nil, &ReconcileError{Err: err, Code: apiErrors.ErrDatabaseOperation, Details: "histórico de vendas"}
	}

	rate, err := ConversionRate(records)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"records": len(records),
			"error":   err.Error(),
		}).Warn("Reconciliação abortada: taxa de conversão indefinida")
		return nil, err
	}

	demands, err := s.reconcilePartitions(ctx, records, rate)
	if err != nil {
		return nil, err
	}

	runID, err := utils.GenerateID()
	if err != nil {
		return nil, &ReconcileError{Err: err, Code: apiErrors.ErrInternalServer, Details: "id da execução"}
	}

	examples, err := features.BuildTrainingExamples(runID, demands, records)
	if err != nil {
		return nil, &ReconcileError{Err: err, Code: apiErrors.ErrInternalServer}
	}

	run := summarize(runID, filters, demands, rate)
	run.StartedAt = startedAt
	run.FinishedAt = s.now()

	if err := s.trainingRepo.SaveRun(ctx, run, examples); err != nil {
		logrus.WithError(err).WithField("run_id", runID).Error("Erro ao gravar dataset de treino")
		return nil, &ReconcileError{Err: err, Code: apiErrors.ErrDatabaseOperation, Details: "dataset de treino"}
	}

	s.metrics.ReconciledRecords.Add(float64(run.RecordCount))
	s.metrics.ImputedRecords.Add(float64(run.ImputedCount))
	s.metrics.ConversionRate.Set(rate)

	logrus.WithFields(logrus.Fields{
		"run_id":          runID,
		"records":         run.RecordCount,
		"stockouts":       run.StockoutCount,
		"imputed":         run.ImputedCount,
		"conversion_rate": rate,
		"conversion_pct":  utils.RoundWithTwoDecimalPlace(rate * 100),
		"duration":        run.FinishedAt.Sub(startedAt).String(),
	}).Info("Reconciliação de demanda concluída")

	return run, nil
}

// reconcilePartitions reconcilia cada produto em uma goroutine, limitado a maxConcurrentJobs.
// Cada goroutine escreve apenas nos índices da sua partição, preservando a ordem de entrada.
func (s *Service) reconcilePartitions(ctx context.Context, records []domain.SalesRecord, rate float64) ([]domain.ReconciledDemand, error) {
	out := make([]domain.ReconciledDemand, len(records))

	semaphore := make(chan struct{}, s.maxConcurrentJobs)
	var wg sync.WaitGroup

	for _, partition := range partitionByProduct(records) {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(indices []int) {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			for _, i := range indices {
				out[i] = reconcileRecord(records[i], rate)
			}
		}(partition)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		logrus.WithError(err).Warn("Reconciliação cancelada")
		return nil, err
	}

	return out, nil
}

func summarize(runID string, filters *domain.SalesFilters, demands []domain.ReconciledDemand, rate float64) *domain.ReconciliationRun {
	run := &domain.ReconciliationRun{
		ID:             runID,
		RecordCount:    len(demands),
		ConversionRate: rate,
	}

	for i, d := range demands {
		if d.IsStockout {
			run.StockoutCount++
		}
		if d.Imputed {
			run.ImputedCount++
		}
		if i == 0 || d.Date.Before(run.PeriodStart) {
			run.PeriodStart = d.Date
		}
		if d.Date.After(run.PeriodEnd) {
			run.PeriodEnd = d.Date
		}
	}

	if filters != nil {
		if filters.StartDate != nil {
			run.PeriodStart = *filters.StartDate
		}
		if filters.EndDate != nil {
			run.PeriodEnd = *filters.EndDate
		}
	}

	return run
}

func (s *Service) LatestRun(ctx context.Context) (*domain.ReconciliationRun, error) {
	run, err := s.trainingRepo.GetLatestRun(ctx)
	if err != nil {
		return nil, &ReconcileError{Err: err, Code: apiErrors.ErrDatabaseOperation}
	}
	return run, nil
}

func (s *Service) IsRunning() bool {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()
	return s.running
}

func (s *Service) tryStart() bool {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Service) finish() {
	s.runMutex.Lock()
	s.running = false
	s.runMutex.Unlock()
}
