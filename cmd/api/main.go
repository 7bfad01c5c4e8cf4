package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/demand-forecast-api/infrastructure/database/postgres"
	"github.com/vfg2006/demand-forecast-api/infrastructure/repository"
	"github.com/vfg2006/demand-forecast-api/internal/api"
	"github.com/vfg2006/demand-forecast-api/internal/api/handler"
	"github.com/vfg2006/demand-forecast-api/internal/config"
	"github.com/vfg2006/demand-forecast-api/internal/scheduler"
	"github.com/vfg2006/demand-forecast-api/internal/usecases/authenticating"
	"github.com/vfg2006/demand-forecast-api/internal/usecases/overriding"
	"github.com/vfg2006/demand-forecast-api/internal/usecases/reconciling"
	"github.com/vfg2006/demand-forecast-api/pkg/metrics"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	userRepo := repository.NewUserRepository(pgConn)
	salesRepo := repository.NewSalesRecordRepository(pgConn)
	trainingRepo := repository.NewTrainingDatasetRepository(pgConn)
	overrideEventRepo := repository.NewOverrideEventRepository(pgConn)

	registry := metrics.NewRegistry()

	authenticator := authenticating.NewService(userRepo, cfg)
	reconciler := reconciling.NewService(salesRepo, trainingRepo, cfg, registry)
	overrider := overriding.NewService(overrideEventRepo, validator.New(), cfg, registry)
	defer overrider.Wait()

	reconciliationSyncService := scheduler.NewReconciliationSyncService(reconciler, cfg)
	overrideSweepService := scheduler.NewOverrideSweepService(overrider, cfg)

	// Inicia os agendadores em background
	if err := reconciliationSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de reconciliação de demanda")
	} else {
		logrus.Info("Agendador de reconciliação de demanda iniciado com sucesso")
	}

	if err := overrideSweepService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de varredura de ajustes")
	} else {
		logrus.Info("Agendador de varredura de ajustes iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		pgConn,
		authenticator,
		overrider,
		reconciler,
		handler.CronJobServices{
			ReconciliationSyncService: reconciliationSyncService,
			OverrideSweepService:      overrideSweepService,
		},
		registry,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
