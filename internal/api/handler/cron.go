package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/demand-forecast-api/pkg/apiErrors"
)

// CronJobType define o tipo de cron job que será executada
const (
	CronJobTypeReconciliation = "reconciliation"
	CronJobTypeOverrideSweep  = "override-sweep"
	CronJobTypeAll            = "all"
)

// CronJob é implementado pelos serviços agendados que aceitam execução manual
type CronJob interface {
	TriggerManualSync()
	GetStatus() map[string]any
}

// CronJobServices contém os serviços de cron necessários para executar manualmente
type CronJobServices struct {
	ReconciliationSyncService CronJob
	OverrideSweepService      CronJob
}

// RunCronJob executa manualmente uma cron job específica
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunCronJob")

		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de cron job não especificado", nil)
			return
		}

		switch cronType {
		case CronJobTypeReconciliation:
			if services.ReconciliationSyncService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de reconciliação não disponível", nil)
				return
			}
			services.ReconciliationSyncService.TriggerManualSync()

		case CronJobTypeOverrideSweep:
			if services.OverrideSweepService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de varredura de ajustes não disponível", nil)
				return
			}
			services.OverrideSweepService.TriggerManualSync()

		case CronJobTypeAll:
			if services.ReconciliationSyncService != nil {
				services.ReconciliationSyncService.TriggerManualSync()
			}
			if services.OverrideSweepService != nil {
				services.OverrideSweepService.TriggerManualSync()
			}

		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job inválido. Valores aceitos: reconciliation, override-sweep, all", nil)
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]any{
			"message": "Cron job iniciada com sucesso",
			"type":    cronType,
		})
	}
}

// GetCronStatus retorna o status das cron jobs
func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{}

		if services.ReconciliationSyncService != nil {
			status[CronJobTypeReconciliation] = services.ReconciliationSyncService.GetStatus()
		}
		if services.OverrideSweepService != nil {
			status[CronJobTypeOverrideSweep] = services.OverrideSweepService.GetStatus()
		}

		writeJSON(w, http.StatusOK, status)
	}
}
