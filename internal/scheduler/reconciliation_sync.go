package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/demand-forecast-api/internal/config"
	"github.com/vfg2006/demand-forecast-api/internal/domain"
	"github.com/vfg2006/demand-forecast-api/internal/usecases/reconciling"
	"github.com/vfg2006/demand-forecast-api/pkg/utils"
)

// ReconciliationSyncConfig representa a configuração do agendador de reconciliação
type ReconciliationSyncConfig struct {
	CronSchedule string
	LookbackDays int
	SyncEnabled  bool
}

// ReconciliationSyncService agenda a reconstrução noturna do dataset de treino
type ReconciliationSyncService struct {
	scheduler  *gocron.Scheduler
	config     ReconciliationSyncConfig
	reconciler reconciling.Reconciler
	now        func() time.Time
	ctx        context.Context

	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastRun             *domain.ReconciliationRun
	lastError           string
}

func NewReconciliationSyncService(reconciler reconciling.Reconciler, appConfig *config.Config) *ReconciliationSyncService {
	syncConfig := ReconciliationSyncConfig{
		CronSchedule: appConfig.Reconciliation.CronSchedule,
		LookbackDays: appConfig.Reconciliation.LookbackDays,
		SyncEnabled:  appConfig.Reconciliation.Enabled,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule":       syncConfig.CronSchedule,
		"lookback_days":       syncConfig.LookbackDays,
		"max_concurrent_jobs": appConfig.Reconciliation.MaxConcurrentJobs,
		"sync_enabled":        syncConfig.SyncEnabled,
	}).Info("Configuração do agendador de reconciliação carregada")

	return &ReconciliationSyncService{
		scheduler:  gocron.NewScheduler(time.Local),
		config:     syncConfig,
		reconciler: reconciler,
		now:        time.Now,
		ctx:        context.Background(),
	}
}

// Start inicia o agendador. O agendador para quando ctx é cancelado.
func (s *ReconciliationSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Reconciliação agendada desabilitada por configuração")
		return nil
	}

	s.ctx = ctx
	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de reconciliação de demanda")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.runReconciliation()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar reconciliação de demanda: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de reconciliação de demanda")
		s.scheduler.Stop()
	}()

	return nil
}

// runReconciliation executa uma reconciliação sobre a janela configurada, terminando ontem
func (s *ReconciliationSyncService) runReconciliation() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Reconciliação já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.lastSyncStartedAt = s.now()
	s.syncMutex.Unlock()

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	filters := s.lookbackFilters()
	logrus.WithFields(logrus.Fields{
		"start_date": filters.StartDate.Format(time.DateOnly),
		"end_date":   filters.EndDate.Format(time.DateOnly),
	}).Info("Iniciando reconciliação de demanda agendada")

	run, err := s.reconciler.Run(s.ctx, filters)

	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	if err != nil {
		s.lastError = err.Error()
		entry := logrus.WithError(err)
		if errors.Is(err, reconciling.ErrDataInsufficient) {
			entry.Warn("Reconciliação agendada abortada por falta de dados")
		} else {
			entry.Error("Erro na reconciliação agendada")
		}
		return
	}

	s.lastError = ""
	s.lastRun = run
	s.lastSyncCompletedAt = s.now()
}

func (s *ReconciliationSyncService) lookbackFilters() *domain.SalesFilters {
	end := utils.TruncateToDay(s.now()).AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -(s.config.LookbackDays - 1))
	return &domain.SalesFilters{StartDate: &start, EndDate: &end}
}

// TriggerManualSync inicia manualmente uma reconciliação em background
func (s *ReconciliationSyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Reconciliação já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando reconciliação manual")
	go s.runReconciliation()
}

// GetStatus retorna o status atual do agendador
func (s *ReconciliationSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_lookback_days":     s.config.LookbackDays,
		"sync_running":           s.syncRunning,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_run":               s.lastRun,
		"last_error":             s.lastError,
	}
}
