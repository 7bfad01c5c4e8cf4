package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/demand-forecast-api/internal/config"
	"github.com/vfg2006/demand-forecast-api/internal/domain"
	"github.com/vfg2006/demand-forecast-api/internal/usecases/reconciling"
)

type stubReconciler struct {
	mu      sync.Mutex
	filters []*domain.SalesFilters
	run     *domain.ReconciliationRun
	err     error
}

func (s *stubReconciler) Run(_ context.Context, filters *domain.SalesFilters) (*domain.ReconciliationRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = append(s.filters, filters)
	return s.run, s.err
}

func (s *stubReconciler) LatestRun(context.Context) (*domain.ReconciliationRun, error) {
	return s.run, nil
}

func (s *stubReconciler) IsRunning() bool { return false }

type stubSweeper struct {
	removed []domain.OverrideEntry
}

func (s *stubSweeper) Sweep(context.Context) []domain.OverrideEntry {
	return s.removed
}

func testConfig() *config.Config {
	return &config.Config{
		Reconciliation: config.Reconciliation{CronSchedule: "0 2 * * *", LookbackDays: 30, MaxConcurrentJobs: 2},
		OverrideSweep:  config.OverrideSweep{CronSchedule: "*/30 * * * *", Enabled: true},
	}
}

func TestReconciliationSyncService_runReconciliation(t *testing.T) {
	tests := []struct {
		name          string
		reconciler    *stubReconciler
		wantLastError bool
	}{
		{
			name:       "Execução com sucesso - guarda o resumo da última execução",
			reconciler: &stubReconciler{run: &domain.ReconciliationRun{ID: "run1", RecordCount: 10}},
		},
		{
			name:          "Dados insuficientes - registra o erro sem resumo",
			reconciler:    &stubReconciler{err: reconciling.ErrDataInsufficient},
			wantLastError: true,
		},
		{
			name:          "Erro inesperado - registra o erro",
			reconciler:    &stubReconciler{err: errors.New("falha no banco")},
			wantLastError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewReconciliationSyncService(tt.reconciler, testConfig())
			service.now = func() time.Time { return time.Date(2024, 1, 16, 2, 0, 0, 0, time.UTC) }

			service.runReconciliation()

			require.Len(t, tt.reconciler.filters, 1)
			filters := tt.reconciler.filters[0]
			assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *filters.EndDate)
			assert.Equal(t, time.Date(2023, 12, 17, 0, 0, 0, 0, time.UTC), *filters.StartDate)

			status := service.GetStatus()
			assert.Equal(t, false, status["sync_running"])
			if tt.wantLastError {
				assert.NotEmpty(t, status["last_error"])
				assert.Nil(t, status["last_run"])
			} else {
				assert.Empty(t, status["last_error"])
				assert.Equal(t, tt.reconciler.run, status["last_run"])
			}
		})
	}
}

func TestReconciliationSyncService_StartDesabilitado(t *testing.T) {
	service := NewReconciliationSyncService(&stubReconciler{}, testConfig())

	assert.NoError(t, service.Start(context.Background()))
	assert.Equal(t, false, service.GetStatus()["sync_enabled"])
}

func TestReconciliationSyncService_StartCronInvalido(t *testing.T) {
	cfg := testConfig()
	cfg.Reconciliation.Enabled = true
	cfg.Reconciliation.CronSchedule = "não é cron"
	service := NewReconciliationSyncService(&stubReconciler{}, cfg)

	assert.Error(t, service.Start(context.Background()))
}

func TestOverrideSweepService_sweep(t *testing.T) {
	sweeper := &stubSweeper{removed: []domain.OverrideEntry{{ProductID: "P1"}, {ProductID: "P2"}}}
	service := NewOverrideSweepService(sweeper, testConfig())
	service.now = func() time.Time { return time.Date(2024, 1, 16, 10, 30, 0, 0, time.UTC) }

	service.sweep()
	service.sweep()

	status := service.GetStatus()
	assert.Equal(t, 2, status["last_sweep_removed"])
	assert.Equal(t, 4, status["total_removed"])
	assert.Equal(t, time.Date(2024, 1, 16, 10, 30, 0, 0, time.UTC), status["last_sweep_at"])
}

func TestOverrideSweepService_StartParaComContexto(t *testing.T) {
	service := NewOverrideSweepService(&stubSweeper{}, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, service.Start(ctx))
	assert.True(t, service.scheduler.IsRunning())

	cancel()
	assert.Eventually(t, func() bool { return !service.scheduler.IsRunning() }, time.Second, 10*time.Millisecond)
}
