// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads .env, configs/config.yaml, configs/config.<APP_ENVIRONMENT>.yaml and the environment,
// in increasing order of precedence.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return build(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return build(v)
}

func build(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// newViper registers every known key so AutomaticEnv can resolve it during Unmarshal
// (smtp.host <- SMTP_HOST, database.redis.address <- DATABASE_REDIS_ADDRESS, ...).
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for _, key := range []string{
		"app.name", "app.version", "app.environment",
		"server.address", "server.read_timeout", "server.write_timeout", "server.shutdown_timeout",
		"camunda.broker_address", "camunda.max_jobs_active", "camunda.timeout", "camunda.request_timeout",
		"database.postgres.host", "database.postgres.port", "database.postgres.database",
		"database.postgres.user", "database.postgres.password", "database.postgres.sslmode",
		"database.redis.address", "database.redis.password", "database.redis.db",
		"smtp.host", "smtp.port", "smtp.user", "smtp.pass",
		"mail.provider", "mail.from_name", "mail.admin_email", "mail.ses.region", "mail.ses.from_email",
		"onboarding.navigation_lock", "onboarding.state_ttl", "onboarding.key_prefix",
		"logging.level", "logging.format", "logging.output",
	} {
		_ = v.BindEnv(key)
	}

	return v
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in yaml values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills values still empty after unmarshal from the flat variable names
// the deployment environment uses.
func overrideEmptyConfig(cfg *Config) {
	setString := func(dst *string, envKey string) {
		if *dst == "" {
			if val := os.Getenv(envKey); val != "" {
				*dst = val
			}
		}
	}

	// SMTP
	setString(&cfg.SMTP.Host, "SMTP_HOST")
	setString(&cfg.SMTP.User, "SMTP_USER")
	setString(&cfg.SMTP.Pass, "SMTP_PASS")
	if cfg.SMTP.Port == 0 {
		if port, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil {
			cfg.SMTP.Port = port
		}
	}

	// Mail identity
	setString(&cfg.Mail.Provider, "MAIL_PROVIDER")
	setString(&cfg.Mail.FromName, "FROM_NAME")
	setString(&cfg.Mail.AdminEmail, "ADMIN_EMAIL")
	setString(&cfg.Mail.SES.Region, "AWS_REGION")
	setString(&cfg.Mail.SES.FromEmail, "SES_FROM_EMAIL")

	// Stores
	setString(&cfg.Database.Redis.Address, "REDIS_ADDRESS")
	setString(&cfg.Database.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Database.Postgres.Host, "DB_HOST")
	setString(&cfg.Database.Postgres.Database, "DB_NAME")
	setString(&cfg.Database.Postgres.User, "DB_USER")
	setString(&cfg.Database.Postgres.Password, "DB_PASSWORD")

	// Processes
	setString(&cfg.Server.Address, "SERVER_ADDRESS")
	setString(&cfg.Camunda.BrokerAddress, "ZEEBE_ADDRESS")
	setString(&cfg.App.Environment, "APP_ENVIRONMENT")
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "harvin-platform"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}

	// Camunda defaults
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	// Database defaults
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	// Mail defaults
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.Mail.Provider == "" {
		cfg.Mail.Provider = "smtp"
	}
	if cfg.Mail.FromName == "" {
		cfg.Mail.FromName = "HarvinAI"
	}
	if cfg.Mail.AdminEmail == "" {
		cfg.Mail.AdminEmail = cfg.SMTP.User
	}

	// Onboarding defaults
	if cfg.Onboarding.NavigationLock == 0 {
		cfg.Onboarding.NavigationLock = 180
	}
	if cfg.Onboarding.StateTTL == 0 {
		cfg.Onboarding.StateTTL = 720
	}
	if cfg.Onboarding.KeyPrefix == "" {
		cfg.Onboarding.KeyPrefix = "harvin"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields. SMTP may be left unconfigured.
func validateConfig(cfg *Config) error {
	if cfg.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}

	switch cfg.Mail.Provider {
	case "smtp", "ses":
	default:
		return fmt.Errorf("mail.provider must be one of [smtp ses], got %q", cfg.Mail.Provider)
	}

	if cfg.SMTP.Port <= 0 || cfg.SMTP.Port > 65535 {
		return fmt.Errorf("smtp.port out of range: %d", cfg.SMTP.Port)
	}

	if cfg.Database.Postgres.Enabled() {
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	}

	if cfg.Onboarding.NavigationLock < 0 {
		return fmt.Errorf("onboarding.navigation_lock must not be negative")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    0,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
