// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig               `mapstructure:"app"`
	Server     ServerConfig            `mapstructure:"server"`
	Camunda    CamundaConfig           `mapstructure:"camunda"`
	Database   DatabaseConfig          `mapstructure:"database"`
	SMTP       SMTPConfig              `mapstructure:"smtp"`
	Mail       MailConfig              `mapstructure:"mail"`
	Onboarding OnboardingConfig        `mapstructure:"onboarding"`
	Workers    map[string]WorkerConfig `mapstructure:"workers"`
	Logging    LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// IsDevelopment reports whether cookies may be issued without the Secure flag.
func (a AppConfig) IsDevelopment() bool {
	return a.Environment == "" || a.Environment == "development" || a.Environment == "test"
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// Enabled reports whether lead auditing has a database to write to.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether client state lives in Redis rather than process memory.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// SMTPConfig mirrors the SMTP_HOST, SMTP_PORT, SMTP_USER and SMTP_PASS variables.
type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
}

// Configured is false when host or user is missing; the dispatcher then skips sending.
func (s SMTPConfig) Configured() bool {
	return s.Host != "" && s.User != ""
}

// MailConfig holds sender identity and transport selection.
type MailConfig struct {
	Provider   string    `mapstructure:"provider"` // smtp | ses
	FromName   string    `mapstructure:"from_name"`
	AdminEmail string    `mapstructure:"admin_email"`
	SES        SESConfig `mapstructure:"ses"`
}

type SESConfig struct {
	Region    string `mapstructure:"region"`
	FromEmail string `mapstructure:"from_email"`
}

// Configured is false when region or sender is missing.
func (s SESConfig) Configured() bool {
	return s.Region != "" && s.FromEmail != ""
}

// OnboardingConfig holds settings for the wizard controller and its client state store.
type OnboardingConfig struct {
	NavigationLock int    `mapstructure:"navigation_lock"` // milliseconds
	StateTTL       int    `mapstructure:"state_ttl"`       // hours
	KeyPrefix      string `mapstructure:"key_prefix"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
