package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justinas/alice"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/demand-forecast-api/internal/api/handler"
	"github.com/vfg2006/demand-forecast-api/internal/api/handler/router"
	"github.com/vfg2006/demand-forecast-api/internal/config"
	"github.com/vfg2006/demand-forecast-api/internal/usecases/authenticating"
	"github.com/vfg2006/demand-forecast-api/internal/usecases/overriding"
	"github.com/vfg2006/demand-forecast-api/internal/usecases/reconciling"
	"github.com/vfg2006/demand-forecast-api/pkg/metrics"
	"github.com/vfg2006/demand-forecast-api/pkg/middleware"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	httpServer *http.Server
}

func New(
	config *config.Config,
	db handler.Pinger,
	authenticator authenticating.Authenticator,
	overrider overriding.Overrider,
	reconciler reconciling.Reconciler,
	cronServices handler.CronJobServices,
	registry *metrics.Registry,
) (*Server, error) {
	srv := &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
			Handler:           NewHandler(config, db, authenticator, overrider, reconciler, cronServices, registry),
			ReadHeaderTimeout: 2 * time.Second,
		},
	}

	return srv, nil
}

// NewHandler monta as rotas e a cadeia de middlewares globais
func NewHandler(
	config *config.Config,
	db handler.Pinger,
	authenticator authenticating.Authenticator,
	overrider overriding.Overrider,
	reconciler reconciling.Reconciler,
	cronServices handler.CronJobServices,
	registry *metrics.Registry,
) http.Handler {
	rt := router.New(
		router.WithRoutes(handler.Healthcheck(db, registry)...),
		router.WithRoutes(handler.Authentication(authenticator)...),
		router.WithRoutes(handler.Overrides(overrider)...),
		router.WithRoutes(handler.Reconciliation(reconciler)...),
		router.WithRoutes(handler.CronJobs(cronServices)...),
	)

	middlewares := []alice.Constructor{
		middleware.LogPanicMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.Cors(config.Server.CorsAllowedOrigins),
		middleware.AuthMiddleware(authenticator),
	}

	return alice.New(middlewares...).Then(rt)
}

func (s Server) Run(ctx context.Context) error {
	go func() {
		logrus.WithFields(logrus.Fields{
			"address": s.httpServer.Addr,
		}).Info("Servidor iniciando")

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("Erro durante a execução do servidor")
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		logrus.Info("Sinal de interrupção recebido")
	case <-ctx.Done():
		logrus.Info("Contexto de aplicação cancelado")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logrus.WithFields(logrus.Fields{
		"timeout": shutdownTimeout.String(),
	}).Info("Iniciando desligamento gracioso do servidor")

	if err := s.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Erro durante o desligamento do servidor")
		return err
	}

	logrus.Info("Servidor desligado com sucesso")
	return nil
}

func (s Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}

	logrus.Info("Servidor HTTP desligado com sucesso")
	return nil
}
