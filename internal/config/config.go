package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App            App            `mapstructure:",squash"`
	Server         Server         `mapstructure:",squash"`
	Database       Database       `mapstructure:",squash"`
	Auth           Auth           `mapstructure:",squash"`
	Reconciliation Reconciliation `mapstructure:",squash"`
	Override       Override       `mapstructure:",squash"`
	OverrideSweep  OverrideSweep  `mapstructure:",squash"`
}

type Server struct {
	Host               string   `mapstructure:"host"`
	Port               string   `mapstructure:"port"`
	CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`

	MaxOpenConns int `mapstructure:"database_max_open_conns"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

type Reconciliation struct {
	CronSchedule      string `mapstructure:"reconciliation_cron"`
	LookbackDays      int    `mapstructure:"reconciliation_lookback_days"`
	MaxConcurrentJobs int    `mapstructure:"reconciliation_max_concurrent_jobs"`
	Enabled           bool   `mapstructure:"reconciliation_enabled"`
}

type Override struct {
	DefaultValidDays float64 `mapstructure:"override_default_valid_days"`
	MaxValidDays     float64 `mapstructure:"override_max_valid_days"`
	DefaultReason    string  `mapstructure:"override_default_reason"`
}

type OverrideSweep struct {
	CronSchedule string `mapstructure:"override_sweep_cron"`
	Enabled      bool   `mapstructure:"override_sweep_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/forecast?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)

	viper.SetDefault("AUTH_SECRET", "your_secret_key")

	// Defaults para a reconciliação de demanda
	viper.SetDefault("RECONCILIATION_CRON", "0 2 * * *")      // Todos os dias às 2h da manhã
	viper.SetDefault("RECONCILIATION_LOOKBACK_DAYS", 365)     // 1 ano de histórico
	viper.SetDefault("RECONCILIATION_MAX_CONCURRENT_JOBS", 4) // 4 partições em paralelo
	viper.SetDefault("RECONCILIATION_ENABLED", false)         // Habilitar reconciliação agendada

	// Defaults para ajustes manuais
	viper.SetDefault("OVERRIDE_DEFAULT_VALID_DAYS", 7)
	viper.SetDefault("OVERRIDE_MAX_VALID_DAYS", 14)
	viper.SetDefault("OVERRIDE_DEFAULT_REASON", "User Input")

	viper.SetDefault("OVERRIDE_SWEEP_CRON", "*/30 * * * *") // A cada 30 minutos
	viper.SetDefault("OVERRIDE_SWEEP_ENABLED", true)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Validate verifica combinações de configuração que impediriam o serviço de funcionar
func (c *Config) Validate() error {
	if c.Reconciliation.MaxConcurrentJobs <= 0 {
		return fmt.Errorf("config: reconciliation_max_concurrent_jobs deve ser positivo, recebido %d", c.Reconciliation.MaxConcurrentJobs)
	}

	if c.Reconciliation.LookbackDays <= 0 {
		return fmt.Errorf("config: reconciliation_lookback_days deve ser positivo, recebido %d", c.Reconciliation.LookbackDays)
	}

	if c.Override.DefaultValidDays <= 0 {
		return fmt.Errorf("config: override_default_valid_days deve ser positivo, recebido %v", c.Override.DefaultValidDays)
	}

	if c.Override.MaxValidDays < c.Override.DefaultValidDays {
		return fmt.Errorf("config: override_max_valid_days (%v) menor que override_default_valid_days (%v)",
			c.Override.MaxValidDays, c.Override.DefaultValidDays)
	}

	return nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		logrus.Debug("Tentando carregar .env de:", location)
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
