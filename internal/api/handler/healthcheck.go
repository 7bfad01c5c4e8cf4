package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/demand-forecast-api/pkg/apiErrors"
)

// Pinger verifica a disponibilidade de uma dependência (ex.: banco de dados)
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthcheckHandler(db Pinger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := db.Ping(ctx); err != nil {
				logrus.WithError(err).Warn("Healthcheck: banco de dados indisponível")
				apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Banco de dados indisponível", nil)
				return
			}
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
}
