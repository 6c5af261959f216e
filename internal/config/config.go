package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures runtime configuration for the order console.
type Config struct {
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Telemetry TelemetryConfig
	Service   ServiceConfig
	Console   ConsoleConfig
}

type HTTPConfig struct {
	Port          int
	ShutdownGrace int
}

type DatabaseConfig struct {
	URL            string
	AutoMigrate    bool
	MigrationsPath string
}

// RedisConfig points at the change feed. An empty Addr selects the
// in-process feed.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers []string
}

type TelemetryConfig struct {
	LogLevel      string
	OTelEndpoint  string
	Insecure      bool
	EnableTracing bool
	EnableMetrics bool
	SampleRate    float64
}

type ServiceConfig struct {
	Name        string
	Version     string
	Environment string
}

// ConsoleConfig selects the tenant being watched and the backends serving it.
type ConsoleConfig struct {
	TenantID           string
	DemoTenantID       string
	DemoFallback       bool
	Store              string
	Notifier           string
	ResubscribeDelay   time.Duration
	HeadlessPermission string
}

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	NotifierDesktop  = "desktop"
	NotifierHeadless = "headless"
)

const (
	defaultHTTPPort           = 8080
	defaultShutdownGrace      = 15
	defaultMigrationsPath     = "migrations"
	defaultAutoMigrate        = true
	defaultServiceName        = "orderwatch-console"
	defaultServiceVersion     = "0.1.0"
	defaultEnvironment        = "development"
	defaultLogLevel           = "info"
	defaultOTelSampleRate     = 1.0
	defaultTenantID           = "demo"
	defaultDemoTenantID       = "demo"
	defaultStore              = StoreMemory
	defaultNotifier           = NotifierHeadless
	defaultResubscribeDelay   = 3 * time.Second
	defaultHeadlessPermission = "default"
)

// Load reads configuration from environment variables, applying defaults when needed.
func Load() (*Config, error) {
	httpCfg, err := loadHTTPConfig()
	if err != nil {
		return nil, fmt.Errorf("loading HTTP config: %w", err)
	}

	dbCfg := loadDatabaseConfig()

	redisCfg, err := loadRedisConfig()
	if err != nil {
		return nil, fmt.Errorf("loading redis config: %w", err)
	}

	kafkaCfg := loadKafkaConfig()

	telCfg, err := loadTelemetryConfig()
	if err != nil {
		return nil, fmt.Errorf("loading telemetry config: %w", err)
	}

	serviceCfg := loadServiceConfig()

	consoleCfg, err := loadConsoleConfig()
	if err != nil {
		return nil, fmt.Errorf("loading console config: %w", err)
	}

	return &Config{
		HTTP:      httpCfg,
		Database:  dbCfg,
		Redis:     redisCfg,
		Kafka:     kafkaCfg,
		Telemetry: telCfg,
		Service:   serviceCfg,
		Console:   consoleCfg,
	}, nil
}

func loadHTTPConfig() (HTTPConfig, error) {
	port, err := getIntEnv("CONSOLE_HTTP_PORT", defaultHTTPPort)
	if err != nil {
		return HTTPConfig{}, err
	}

	shutdownGrace, err := getIntEnv("CONSOLE_SHUTDOWN_GRACE_SECONDS", defaultShutdownGrace)
	if err != nil {
		return HTTPConfig{}, err
	}

	return HTTPConfig{
		Port:          port,
		ShutdownGrace: shutdownGrace,
	}, nil
}

func loadDatabaseConfig() DatabaseConfig {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = buildDatabaseURL()
	}

	return DatabaseConfig{
		URL:            databaseURL,
		AutoMigrate:    getBoolEnv("AUTO_MIGRATE", defaultAutoMigrate),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", defaultMigrationsPath),
	}
}

func loadRedisConfig() (RedisConfig, error) {
	db, err := getIntEnv("REDIS_DB", 0)
	if err != nil {
		return RedisConfig{}, err
	}

	return RedisConfig{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	}, nil
}

func loadKafkaConfig() KafkaConfig {
	var brokers []string
	if value, ok := os.LookupEnv("KAFKA_BROKERS"); ok && value != "" {
		for _, broker := range strings.Split(value, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				brokers = append(brokers, broker)
			}
		}
	}

	return KafkaConfig{
		Brokers: brokers,
	}
}

func loadTelemetryConfig() (TelemetryConfig, error) {
	sampleRate := defaultOTelSampleRate
	if value, ok := os.LookupEnv("OTEL_SAMPLE_RATE"); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return TelemetryConfig{}, fmt.Errorf("invalid OTEL_SAMPLE_RATE: %w", err)
		}
		sampleRate = parsed
	}

	return TelemetryConfig{
		LogLevel:      getEnvOrDefault("LOG_LEVEL", defaultLogLevel),
		OTelEndpoint:  getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Insecure:      getBoolEnv("OTEL_EXPORTER_OTLP_INSECURE", true),
		EnableTracing: getBoolEnv("OTEL_ENABLE_TRACING", true),
		EnableMetrics: getBoolEnv("OTEL_ENABLE_METRICS", true),
		SampleRate:    sampleRate,
	}, nil
}

func loadServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:        getEnvOrDefault("SERVICE_NAME", defaultServiceName),
		Version:     getEnvOrDefault("SERVICE_VERSION", defaultServiceVersion),
		Environment: getEnvOrDefault("ENVIRONMENT", defaultEnvironment),
	}
}

func loadConsoleConfig() (ConsoleConfig, error) {
	store := getEnvOrDefault("CONSOLE_STORE", defaultStore)
	switch store {
	case StoreMemory, StorePostgres:
	default:
		return ConsoleConfig{}, fmt.Errorf("invalid CONSOLE_STORE %q: want %s or %s", store, StoreMemory, StorePostgres)
	}

	notifier := getEnvOrDefault("CONSOLE_NOTIFIER", defaultNotifier)
	switch notifier {
	case NotifierDesktop, NotifierHeadless:
	default:
		return ConsoleConfig{}, fmt.Errorf("invalid CONSOLE_NOTIFIER %q: want %s or %s", notifier, NotifierDesktop, NotifierHeadless)
	}

	delay := defaultResubscribeDelay
	if value, ok := os.LookupEnv("CONSOLE_RESUBSCRIBE_DELAY"); ok {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return ConsoleConfig{}, fmt.Errorf("invalid CONSOLE_RESUBSCRIBE_DELAY: %w", err)
		}
		if parsed <= 0 {
			return ConsoleConfig{}, fmt.Errorf("invalid CONSOLE_RESUBSCRIBE_DELAY: must be positive, got %s", parsed)
		}
		delay = parsed
	}

	tenantID := strings.TrimSpace(getEnvOrDefault("CONSOLE_TENANT_ID", defaultTenantID))
	if tenantID == "" {
		return ConsoleConfig{}, errors.New("CONSOLE_TENANT_ID must not be blank")
	}

	return ConsoleConfig{
		TenantID:           tenantID,
		DemoTenantID:       getEnvOrDefault("CONSOLE_DEMO_TENANT_ID", defaultDemoTenantID),
		DemoFallback:       getBoolEnv("CONSOLE_DEMO_FALLBACK", false),
		Store:              store,
		Notifier:           notifier,
		ResubscribeDelay:   delay,
		HeadlessPermission: getEnvOrDefault("CONSOLE_HEADLESS_PERMISSION", defaultHeadlessPermission),
	}, nil
}

func buildDatabaseURL() string {
	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := getEnvOrDefault("DB_PASSWORD", "postgres")
	dbName := getEnvOrDefault("DB_NAME", "orderwatch")
	sslMode := getEnvOrDefault("DB_SSLMODE", "disable")

	maxConns := getEnvOrDefault("DB_MAX_CONNS", "10")
	minConns := getEnvOrDefault("DB_MIN_CONNS", "2")
	maxLifetime := getEnvOrDefault("DB_MAX_CONN_LIFETIME", "5m")

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&pool_max_conns=%s&pool_min_conns=%s&pool_max_conn_lifetime=%s",
		user, password, host, port, dbName, sslMode, maxConns, minConns, maxLifetime,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		return value == "true"
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
