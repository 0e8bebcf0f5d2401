package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	DB       DBConfig       `mapstructure:"db"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Session  SessionConfig  `mapstructure:"session"`
	OIDC     OIDCConfig     `mapstructure:"oidc"`
	Log      LogConfig      `mapstructure:"log"`
	Newsblog NewsblogConfig `mapstructure:"newsblog"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Port string    `mapstructure:"port"`
	TLS  TLSConfig `mapstructure:"tls"`
}

// TLSConfig holds TLS-specific configuration.
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

// DBConfig holds database-specific configuration.
type DBConfig struct {
	DSN string `mapstructure:"dsn"`
}

// CacheConfig holds configuration for the SQLite-backed cache.
type CacheConfig struct {
	FilePath string `mapstructure:"filePath"`
	// TTL is the default time-to-live for cached widget results, in seconds.
	TTL int `mapstructure:"ttl"`
}

// SessionConfig holds session management configuration.
type SessionConfig struct {
	SecretKey string `mapstructure:"secretKey"`
	// Lifetime is the session lifetime in hours.
	Lifetime int `mapstructure:"lifetime"`
}

// OIDCConfig holds OIDC client configuration.
type OIDCConfig struct {
	IssuerURL    string `mapstructure:"issuer_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // e.g., "debug", "info", "warn", "error"
	Format string `mapstructure:"format"` // e.g., "json", "console"
}

// NewsblogConfig holds blog-specific configuration.
type NewsblogConfig struct {
	// Languages is the set of languages articles may be translated into.
	// The application refuses to start if this is empty.
	Languages       []string `mapstructure:"languages"`
	DefaultLanguage string   `mapstructure:"default_language"`
	// UpdateSearchOnSave recomputes an article's search_data field whenever
	// the article or one of its content blocks is saved.
	UpdateSearchOnSave bool `mapstructure:"update_search_on_save"`
	// BaseURL is used when composing absolute permalinks (sitemap, robots).
	BaseURL string `mapstructure:"base_url"`
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("db.dsn", "newsblog:newsblog@tcp(localhost:3306)/newsblog?parseTime=true")
	viper.SetDefault("cache.filePath", "newsblog_cache.db")
	viper.SetDefault("cache.ttl", 300)
	viper.SetDefault("session.lifetime", 24)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("newsblog.default_language", "en")
	viper.SetDefault("newsblog.update_search_on_save", false)
	viper.SetDefault("newsblog.base_url", "http://localhost:8080")

	// Set up viper to read from config file
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/go-newsblog-app/")
	viper.AddConfigPath("$HOME/.go-newsblog-app")

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return nil, err
		}
		// Config file not found; proceed with defaults and env vars
	}

	// Set up viper to read from environment variables
	viper.SetEnvPrefix("NEWSBLOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Unmarshal the config into the Config struct
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
