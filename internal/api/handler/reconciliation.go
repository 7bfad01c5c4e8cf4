package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/demand-forecast-api/internal/domain"
	"github.com/vfg2006/demand-forecast-api/internal/usecases/reconciling"
	"github.com/vfg2006/demand-forecast-api/pkg/apiErrors"
	"github.com/vfg2006/demand-forecast-api/pkg/utils"
)

// RunReconciliation executa a reconciliação de forma síncrona para o período informado.
// Sem start_date/end_date todo o histórico é considerado. A execução sempre cobre todos os
// produtos e lojas do período, pois a taxa de conversão é global.
func RunReconciliation(service reconciling.Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunReconciliation")

		query := r.URL.Query()
		filters := &domain.SalesFilters{}

		if raw := query.Get("start_date"); raw != "" {
			start, err := utils.ParseDate(raw)
			if err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "start_date inválida, use o formato YYYY-MM-DD", nil)
				return
			}
			filters.StartDate = start
		}

		if raw := query.Get("end_date"); raw != "" {
			end, err := utils.ParseDate(raw)
			if err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "end_date inválida, use o formato YYYY-MM-DD", nil)
				return
			}
			filters.EndDate = end
		}

		if filters.StartDate != nil && filters.EndDate != nil && filters.EndDate.Before(*filters.StartDate) {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "end_date anterior a start_date", nil)
			return
		}

		run, err := service.Run(r.Context(), filters)
		if err != nil {
			logrus.WithError(err).Warn("Reconciliação não concluída")
			apiErrors.WriteFromError(w, err, apiErrors.ErrInternalServer)
			return
		}

		writeJSON(w, http.StatusOK, run)
	}
}

func GetLatestReconciliationRun(service reconciling.Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := service.LatestRun(r.Context())
		if err != nil {
			logrus.WithError(err).Error("Erro ao buscar última reconciliação")
			apiErrors.WriteFromError(w, err, apiErrors.ErrDatabaseOperation)
			return
		}

		if run == nil {
			apiErrors.WriteError(w, apiErrors.ErrNotFound, "Nenhuma reconciliação encontrada", nil)
			return
		}

		writeJSON(w, http.StatusOK, run)
	}
}
