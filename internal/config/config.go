package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	APIToken    string
	DemoMode    bool

	DatasetPath    string
	OutputDir      string
	ExportEncoding string

	Observability ObservabilityConfig

	CredentialStore  string
	CredentialSecret string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Redis RedisConfig

	Providers ProvidersConfig

	MetricsPush MetricsPushConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ProvidersConfig holds the base URLs of the external accounting services.
type ProvidersConfig struct {
	PennylaneURL string
	IndyURL      string
	QontoURL     string
	TimeoutSec   int
}

// ObservabilityConfig holds the logging and OpenTelemetry settings.
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string
	LogOutput string

	OtelEnabled       bool
	OtelEndpoint      string
	OtelProtocol      string
	OtelSamplingRatio float64
}

// MetricsPushConfig lets batch runs push their report metrics, since no
// scraper ever sees a short-lived CLI process.
type MetricsPushConfig struct {
	Exporter  string
	Endpoint  string
	AuthToken string
}

const (
	CredentialStoreMemory = "memory"
	CredentialStoreRedis  = "redis"
	CredentialStoreSQL    = "sql"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "chantierpro-finance"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		APIToken:          strings.TrimSpace(getenv("API_TOKEN", "")),
		DemoMode:          getenvBool("DEMO_MODE", false),
		DatasetPath:       getenv("DATASET_PATH", "dataset.json"),
		OutputDir:         getenv("EXPORT_OUTPUT_DIR", "exports"),
		ExportEncoding:    strings.ToLower(getenv("EXPORT_ENCODING", "utf-8")),
		CredentialStore:   normalizeCredentialStore(getenv("CREDENTIAL_STORE", CredentialStoreMemory)),
		CredentialSecret:  strings.TrimSpace(getenv("CREDENTIAL_SECRET", "")),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "chantierpro"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", "localhost:6379"),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Providers: ProvidersConfig{
			PennylaneURL: getenv("PENNYLANE_API_URL", "https://app.pennylane.com/api/external/v1"),
			IndyURL:      getenv("INDY_API_URL", "https://api.indy.fr/v1"),
			QontoURL:     getenv("QONTO_API_URL", "https://thirdparty.qonto.com/v2"),
			TimeoutSec:   getenvInt("PROVIDER_TIMEOUT_SEC", 15),
		},
		Observability: ObservabilityConfig{
			LogLevel:          strings.ToLower(getenv("LOG_LEVEL", "info")),
			LogFormat:         strings.ToLower(getenv("LOG_FORMAT", "json")),
			LogOutput:         strings.ToLower(getenv("LOG_OUTPUT", "stdout")),
			OtelEndpoint:      getenv("OTEL_EXPORTER_OTLP_ENDPOINT", getenv("OTLP_ENDPOINT", "localhost:4317")),
			OtelProtocol:      strings.ToLower(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
			OtelSamplingRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		},
		MetricsPush: MetricsPushConfig{
			Exporter:  strings.ToLower(getenv("METRICS_PUSH_EXPORTER", "")),
			Endpoint:  getenv("METRICS_PUSH_ENDPOINT", ""),
			AuthToken: getenv("METRICS_PUSH_TOKEN", ""),
		},
	}

	cfg.Environment = getenv("DEPLOYMENT_ENV", cfg.Environment)
	cfg.AppVersion = getenv("SERVICE_VERSION", cfg.AppVersion)
	// Exports run on artisans' machines without a collector by default.
	cfg.Observability.OtelEnabled = getenvBool("OTEL_ENABLED", cfg.IsProduction())

	return cfg
}

// IsProduction reports whether the app runs with production defaults.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func normalizeCredentialStore(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case CredentialStoreRedis:
		return CredentialStoreRedis
	case CredentialStoreSQL, "gorm", "postgres", "mysql", "sqlite":
		return CredentialStoreSQL
	default:
		return CredentialStoreMemory
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
