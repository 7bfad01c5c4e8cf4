package handler

import (
	"net/http"

	"github.com/vfg2006/demand-forecast-api/internal/api/handler/router"
	"github.com/vfg2006/demand-forecast-api/internal/usecases/authenticating"
	"github.com/vfg2006/demand-forecast-api/internal/usecases/overriding"
	"github.com/vfg2006/demand-forecast-api/internal/usecases/reconciling"
	"github.com/vfg2006/demand-forecast-api/pkg/metrics"
	"github.com/vfg2006/demand-forecast-api/pkg/middleware"
)

func Healthcheck(db Pinger, registry *metrics.Registry) []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(db),
		},
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: registry.Handler(),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
	}
}

func Overrides(service overriding.Overrider) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/overrides",
			Method:      http.MethodPost,
			Handler:     SetOverride(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
		{
			Path:        "/v1/overrides",
			Method:      http.MethodGet,
			Handler:     ListOverrides(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/overrides/events",
			Method:      http.MethodGet,
			Handler:     ListOverrideEvents(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
		{
			Path:        "/v1/predictions/:product_id/:location_id/effective",
			Method:      http.MethodGet,
			Handler:     GetEffectivePrediction(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Reconciliation(service reconciling.Reconciler) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/reconciliation/run",
			Method:      http.MethodPost,
			Handler:     RunReconciliation(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/reconciliation/runs/latest",
			Method:      http.MethodGet,
			Handler:     GetLatestReconciliationRun(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cron/:type/run",
			Method:      http.MethodPost,
			Handler:     RunCronJob(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
	}
}
