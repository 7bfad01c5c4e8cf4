package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/demand-forecast-api/internal/domain"
	"github.com/vfg2006/demand-forecast-api/internal/usecases/overriding"
	"github.com/vfg2006/demand-forecast-api/pkg/apiErrors"
	"github.com/vfg2006/demand-forecast-api/pkg/middleware"
)

const defaultEventsLimit = 100

func SetOverride(service overriding.Overrider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.SetOverrideRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		actor := overriding.SystemActor
		if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
			actor = claims.UserEmail
		}

		entry, err := service.SetOverride(r.Context(), &req, actor)
		if err != nil {
			apiErrors.WriteFromError(w, err, apiErrors.ErrInvalidOverride)
			return
		}

		writeJSON(w, http.StatusCreated, entry)
	}
}

func ListOverrides(service overriding.Overrider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, service.ListActive())
	}
}

func ListOverrideEvents(service overriding.Overrider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		key := domain.OverrideKey{
			ProductID:  query.Get("product_id"),
			LocationID: query.Get("location_id"),
		}
		if key.ProductID == "" || key.LocationID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "product_id e location_id são obrigatórios", nil)
			return
		}

		limit := defaultEventsLimit
		if raw := query.Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "limit deve ser um inteiro positivo", nil)
				return
			}
			limit = parsed
		}

		events, err := service.ListEvents(r.Context(), key, limit)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"product_id":  key.ProductID,
				"location_id": key.LocationID,
			}).Error("Erro ao listar eventos de ajuste")
			apiErrors.WriteFromError(w, err, apiErrors.ErrDatabaseOperation)
			return
		}

		writeJSON(w, http.StatusOK, events)
	}
}

// GetEffectivePrediction aplica o ajuste ativo à previsão base informada em ?base=
func GetEffectivePrediction(service overriding.Overrider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := httprouter.ParamsFromContext(r.Context())
		productID := params.ByName("product_id")
		locationID := params.ByName("location_id")

		raw := r.URL.Query().Get("base")
		if raw == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Parâmetro base é obrigatório", nil)
			return
		}

		base, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(base) || math.IsInf(base, 0) {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Parâmetro base deve ser um número finito", nil)
			return
		}

		writeJSON(w, http.StatusOK, service.Resolve(r.Context(), productID, locationID, base))
	}
}
