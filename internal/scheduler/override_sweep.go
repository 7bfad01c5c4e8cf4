package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/demand-forecast-api/internal/config"
	"github.com/vfg2006/demand-forecast-api/internal/domain"
)

// Sweeper remove ajustes manuais vencidos
type Sweeper interface {
	Sweep(ctx context.Context) []domain.OverrideEntry
}

// OverrideSweepService varre periodicamente o ledger de ajustes, removendo os vencidos
// que não foram mais consultados
type OverrideSweepService struct {
	scheduler    *gocron.Scheduler
	cronSchedule string
	enabled      bool
	sweeper      Sweeper
	now          func() time.Time
	ctx          context.Context

	syncRunning      bool
	syncMutex        sync.Mutex
	lastSweepAt      time.Time
	lastSweepRemoved int
	totalRemoved     int
}

func NewOverrideSweepService(sweeper Sweeper, appConfig *config.Config) *OverrideSweepService {
	logrus.WithFields(logrus.Fields{
		"cron_schedule": appConfig.OverrideSweep.CronSchedule,
		"sync_enabled":  appConfig.OverrideSweep.Enabled,
	}).Info("Configuração da varredura de ajustes manuais carregada")

	return &OverrideSweepService{
		scheduler:    gocron.NewScheduler(time.Local),
		cronSchedule: appConfig.OverrideSweep.CronSchedule,
		enabled:      appConfig.OverrideSweep.Enabled,
		sweeper:      sweeper,
		now:          time.Now,
		ctx:          context.Background(),
	}
}

func (s *OverrideSweepService) Start(ctx context.Context) error {
	if !s.enabled {
		logrus.Info("Varredura de ajustes manuais desabilitada por configuração")
		return nil
	}

	s.ctx = ctx
	logrus.WithField("cron", s.cronSchedule).Info("Iniciando agendador de varredura de ajustes manuais")

	_, err := s.scheduler.Cron(s.cronSchedule).Do(func() {
		s.sweep()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar varredura de ajustes manuais: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de varredura de ajustes manuais")
		s.scheduler.Stop()
	}()

	return nil
}

func (s *OverrideSweepService) sweep() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		return
	}
	s.syncRunning = true
	s.syncMutex.Unlock()

	removed := s.sweeper.Sweep(s.ctx)

	s.syncMutex.Lock()
	s.syncRunning = false
	s.lastSweepAt = s.now()
	s.lastSweepRemoved = len(removed)
	s.totalRemoved += len(removed)
	s.syncMutex.Unlock()

	logrus.WithField("removed", len(removed)).Debug("Varredura de ajustes manuais concluída")
}

// TriggerManualSync executa uma varredura imediatamente em background
func (s *OverrideSweepService) TriggerManualSync() {
	logrus.Info("Iniciando varredura manual de ajustes")
	go s.sweep()
}

func (s *OverrideSweepService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":       s.enabled,
		"sync_cron":          s.cronSchedule,
		"sync_running":       s.syncRunning,
		"last_sweep_at":      s.lastSweepAt,
		"last_sweep_removed": s.lastSweepRemoved,
		"total_removed":      s.totalRemoved,
	}
}
