// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Analyzer  AnalyzerConfig  `mapstructure:"analyzer"`
	Screening ScreeningConfig `mapstructure:"screening"`
	Importer  ImporterConfig  `mapstructure:"importer"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
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

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses     []string `mapstructure:"addresses"`
	Username      string   `mapstructure:"username"`
	Password      string   `mapstructure:"password"`
	FindingsIndex string   `mapstructure:"findings_index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AnalyzerConfig holds settings for the pattern-detection engine.
type AnalyzerConfig struct {
	MinTextLength int `mapstructure:"min_text_length"` // texts shorter than this yield no findings
	ContextChars  int `mapstructure:"context_chars"`   // context window on each side of a match
}

// ScreeningConfig holds settings for watchlist/PEP screening.
type ScreeningConfig struct {
	DefaultThreshold float64 `mapstructure:"default_threshold"`
	CacheTTL         int     `mapstructure:"cache_ttl"` // seconds
}

// ImporterConfig holds settings for sanctions-list CSV import.
type ImporterConfig struct {
	BatchSize    int    `mapstructure:"batch_size"`
	SourcesPath  string `mapstructure:"sources_path"`  // list-source registry file
	FetchTimeout int    `mapstructure:"fetch_timeout"` // milliseconds
}

// AlertsConfig holds settings for high-risk screening alerts.
type AlertsConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
		ToEmail   string `mapstructure:"to_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled     bool   `mapstructure:"enabled"`
		PhoneNumber string `mapstructure:"phone_number"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	// Minimum risk level that triggers an alert (HIGH or CRITICAL).
	MinRiskLevel string `mapstructure:"min_risk_level"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
