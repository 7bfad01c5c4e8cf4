package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/vfg2006/demand-forecast-api/infrastructure/database/postgres"
	"github.com/vfg2006/demand-forecast-api/infrastructure/repository"
	"github.com/vfg2006/demand-forecast-api/internal/config"
	"github.com/vfg2006/demand-forecast-api/internal/domain"
	"github.com/vfg2006/demand-forecast-api/internal/synthetic"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultAdminEmail    = "admin@forecast.local"
	defaultAdminPassword = "admin123"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		lastname VARCHAR(100) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		role_id INTEGER NOT NULL DEFAULT 3,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sales_records (
		id BIGSERIAL PRIMARY KEY,
		date DATE NOT NULL,
		product_id VARCHAR(64) NOT NULL,
		location_id VARCHAR(64) NOT NULL,
		quantity_sold DOUBLE PRECISION NOT NULL,
		is_stockout BOOLEAN NOT NULL DEFAULT FALSE,
		traffic DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (date, product_id, location_id)
	)`,
	`CREATE TABLE IF NOT EXISTS reconciliation_runs (
		id VARCHAR(32) PRIMARY KEY,
		period_start DATE NOT NULL,
		period_end DATE NOT NULL,
		record_count INTEGER NOT NULL,
		stockout_count INTEGER NOT NULL,
		imputed_count INTEGER NOT NULL,
		conversion_rate DOUBLE PRECISION NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS training_examples (
		id BIGSERIAL PRIMARY KEY,
		run_id VARCHAR(32) NOT NULL REFERENCES reconciliation_runs(id),
		date DATE NOT NULL,
		product_id VARCHAR(64) NOT NULL,
		location_id VARCHAR(64) NOT NULL,
		quantity_sold DOUBLE PRECISION NOT NULL,
		is_stockout BOOLEAN NOT NULL,
		traffic DOUBLE PRECISION NOT NULL,
		demand DOUBLE PRECISION NOT NULL,
		imputed BOOLEAN NOT NULL,
		features JSONB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_training_examples_date ON training_examples (date)`,
	`CREATE TABLE IF NOT EXISTS override_events (
		id VARCHAR(32) PRIMARY KEY,
		product_id VARCHAR(64) NOT NULL,
		location_id VARCHAR(64) NOT NULL,
		action VARCHAR(16) NOT NULL,
		multiplier DOUBLE PRECISION NOT NULL,
		reason VARCHAR(255) NOT NULL,
		actor VARCHAR(255) NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_override_events_key ON override_events (product_id, location_id, occurred_at DESC)`,
}

func setupLogger() {
	// Configura o logger para incluir data, hora e arquivo
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Iniciando script de migração...")
}

func createSchema(ctx context.Context, conn *postgres.Connection) {
	log.Printf("Criando %d objetos do schema...", len(schema))

	for i, stmt := range schema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			log.Fatalf("ERRO ao executar statement [%d/%d]: %v", i+1, len(schema), err)
		}
	}

	log.Println("Schema criado com sucesso")
}

// seedSales grava o histórico sintético com rupturas. Seed e tamanho podem ser
// alterados por SEED_RANDOM, SEED_DAYS, SEED_PRODUCTS e SEED_LOCATIONS.
func seedSales(ctx context.Context, conn *postgres.Connection) {
	opts := synthetic.DefaultOptions()
	opts.Seed = envInt64("SEED_RANDOM", opts.Seed)
	opts.Days = int(envInt64("SEED_DAYS", int64(opts.Days)))
	opts.Products = int(envInt64("SEED_PRODUCTS", int64(opts.Products)))
	opts.Locations = int(envInt64("SEED_LOCATIONS", int64(opts.Locations)))

	dataset := synthetic.Generate(opts)

	stockouts := 0
	for _, record := range dataset.Records {
		if record.IsStockout {
			stockouts++
		}
	}
	log.Printf("Gerados %d registros de vendas (%d rupturas) a partir de %s",
		len(dataset.Records), stockouts, opts.Start.Format(time.DateOnly))

	startTime := time.Now()
	if err := repository.NewSalesRecordRepository(conn).SaveBatch(ctx, dataset.Records); err != nil {
		log.Fatalf("ERRO ao inserir registros de vendas: %v", err)
	}
	log.Printf("Inserção de vendas concluída em %v", time.Since(startTime))
}

func seedAdmin(ctx context.Context, conn *postgres.Connection) {
	email := envString("SEED_ADMIN_EMAIL", defaultAdminEmail)
	password := envString("SEED_ADMIN_PASSWORD", defaultAdminPassword)

	userRepo := repository.NewUserRepository(conn)

	existing, err := userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		log.Fatalf("ERRO ao verificar usuário administrador: %v", err)
	}
	if existing != nil {
		log.Printf("Usuário administrador %s já existe", email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("ERRO ao gerar hash da senha: %v", err)
	}

	user, err := userRepo.CreateUser(ctx, &domain.User{
		Name:         "Admin",
		Email:        email,
		PasswordHash: string(hash),
		Active:       true,
		RoleID:       1,
	})
	if err != nil {
		log.Fatalf("ERRO ao criar usuário administrador: %v", err)
	}

	log.Printf("Usuário administrador criado: ID=%d, email=%s", user.ID, user.Email)
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("AVISO: valor inválido para %s (%q), usando %d", key, raw, fallback)
		return fallback
	}
	return v
}

func main() {
	setupLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("ERRO ao carregar configuração: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("ERRO ao conectar ao banco de dados: %v", err)
	}
	defer conn.Close()
	log.Println("Conexão com o banco de dados estabelecida com sucesso")

	startTime := time.Now()

	createSchema(ctx, conn)
	seedAdmin(ctx, conn)
	seedSales(ctx, conn)

	log.Printf("Carga inicial concluída em %v!", time.Since(startTime))
}
