package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Режимы хранения.
const (
	ModeDatabase = "database"
	ModeFile     = "file"
	ModeMemory   = "memory"
)

// Config хранит конфигурацию сервера
type Config struct {
	ServerAddress     string        `json:"server_address"`
	BaseURL           string        `json:"base_url"`
	GRPCAddress       string        `json:"grpc_address"`
	FileStoragePath   string        `json:"file_storage_path"`
	DatabaseDSN       string        `json:"database_dsn"`
	MigrateOnStart    bool          `json:"migrate_on_start"`
	RedisAddr         string        `json:"redis_addr"`
	RedisPassword     string        `json:"-"`
	RedisDB           int           `json:"redis_db"`
	SessionSecret     string        `json:"-"`
	SessionTTL        time.Duration `json:"session_ttl"`
	CookieSecure      bool          `json:"cookie_secure"`
	OAuthClientID     string        `json:"oauth_client_id"`
	OAuthClientSecret string        `json:"-"`
	OAuthRedirectURL  string        `json:"oauth_redirect_url"`
	OAuthAuthURL      string        `json:"oauth_auth_url"`
	OAuthTokenURL     string        `json:"oauth_token_url"`
	OAuthUserInfoURL  string        `json:"oauth_userinfo_url"`
	AllowedOrigins    []string      `json:"allowed_origins"`
	LogLevel          string        `json:"log_level"`
	EnableHTTPS       bool          `json:"enable_https"`
	TLSCertPath       string        `json:"tls_cert_path"`
	TLSKeyPath        string        `json:"tls_key_path"`
	Mode              string        `json:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_ADDRESS", "localhost:8080")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("GRPC_ADDRESS", "")
	v.SetDefault("FILE_STORAGE_PATH", "")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("MIGRATE_ON_START", true)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("OAUTH_CLIENT_ID", "")
	v.SetDefault("OAUTH_CLIENT_SECRET", "")
	v.SetDefault("OAUTH_REDIRECT_URL", "")
	v.SetDefault("OAUTH_AUTH_URL", "")
	v.SetDefault("OAUTH_TOKEN_URL", "")
	v.SetDefault("OAUTH_USERINFO_URL", "")
	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ENABLE_HTTPS", false)
	v.SetDefault("TLS_CERT_PATH", "cert.pem")
	v.SetDefault("TLS_KEY_PATH", "key.pem")
}

// NewConfig собирает конфигурацию. Приоритет по возрастанию: значения по умолчанию,
// файл JSON/YAML (-c или CONFIG), .env, переменные окружения, флаги args.
func NewConfig(args []string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	fs := flag.NewFlagSet("bookmarks", flag.ContinueOnError)
	// флаги без значений по умолчанию: пустая строка значит «не задан»
	serverAddress := fs.String("a", "", "server address")
	baseURL := fs.String("b", "", "base URL")
	grpcAddress := fs.String("g", "", "gRPC health address")
	fileStoragePath := fs.String("f", "", "file storage path (JSON lines)")
	databaseDSN := fs.String("d", "", "PostgreSQL DSN")
	redisAddr := fs.String("r", "", "Redis address")
	logLevel := fs.String("l", "", "log level")
	enableHTTPS := fs.Bool("s", false, "enable HTTPS")
	tlsCertPath := fs.String("cert", "", "path to TLS certificate")
	tlsKeyPath := fs.String("key", "", "path to TLS key")
	configPath := fs.String("c", "", "path to JSON or YAML config file")
	fs.StringVar(configPath, "config", "", "path to JSON or YAML config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *configPath == "" {
		*configPath = os.Getenv("CONFIG")
	}
	if *configPath != "" {
		if err := loadFile(v, *configPath); err != nil {
			return nil, err
		}
	}

	v.AutomaticEnv()

	// .env не переопределяет переменные окружения
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	ttl, err := time.ParseDuration(v.GetString("SESSION_TTL"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}

	cfg := &Config{
		ServerAddress:     v.GetString("SERVER_ADDRESS"),
		BaseURL:           strings.TrimSuffix(v.GetString("BASE_URL"), "/"),
		GRPCAddress:       v.GetString("GRPC_ADDRESS"),
		FileStoragePath:   v.GetString("FILE_STORAGE_PATH"),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		MigrateOnStart:    v.GetBool("MIGRATE_ON_START"),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisDB:           v.GetInt("REDIS_DB"),
		SessionSecret:     v.GetString("SESSION_SECRET"),
		SessionTTL:        ttl,
		CookieSecure:      v.GetBool("COOKIE_SECURE"),
		OAuthClientID:     v.GetString("OAUTH_CLIENT_ID"),
		OAuthClientSecret: v.GetString("OAUTH_CLIENT_SECRET"),
		OAuthRedirectURL:  v.GetString("OAUTH_REDIRECT_URL"),
		OAuthAuthURL:      v.GetString("OAUTH_AUTH_URL"),
		OAuthTokenURL:     v.GetString("OAUTH_TOKEN_URL"),
		OAuthUserInfoURL:  v.GetString("OAUTH_USERINFO_URL"),
		AllowedOrigins:    splitList(v.GetString("ALLOWED_ORIGINS")),
		LogLevel:          v.GetString("LOG_LEVEL"),
		EnableHTTPS:       v.GetBool("ENABLE_HTTPS"),
		TLSCertPath:       v.GetString("TLS_CERT_PATH"),
		TLSKeyPath:        v.GetString("TLS_KEY_PATH"),
	}

	// Флаг, если передан, важнее окружения
	override := func(flagVal string, target *string) {
		if flagVal != "" {
			*target = flagVal
		}
	}
	override(*serverAddress, &cfg.ServerAddress)
	override(strings.TrimSuffix(*baseURL, "/"), &cfg.BaseURL)
	override(*grpcAddress, &cfg.GRPCAddress)
	override(*fileStoragePath, &cfg.FileStoragePath)
	override(*databaseDSN, &cfg.DatabaseDSN)
	override(*redisAddr, &cfg.RedisAddr)
	override(*logLevel, &cfg.LogLevel)
	override(*tlsCertPath, &cfg.TLSCertPath)
	override(*tlsKeyPath, &cfg.TLSKeyPath)
	if *enableHTTPS {
		cfg.EnableHTTPS = true
	}

	if cfg.OAuthRedirectURL == "" {
		cfg.OAuthRedirectURL = cfg.BaseURL + "/auth/callback"
	}

	// Определяем режим работы
	switch {
	case cfg.DatabaseDSN != "":
		cfg.Mode = ModeDatabase
	case cfg.FileStoragePath != "":
		cfg.Mode = ModeFile
	default:
		cfg.Mode = ModeMemory
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет корректность конфигурации
func (cfg *Config) Validate() error {
	if cfg.ServerAddress == "" {
		return errors.New("server address must not be empty")
	}
	if cfg.BaseURL == "" {
		return errors.New("base URL must not be empty")
	}
	if cfg.SessionTTL <= 0 {
		return errors.New("session TTL must be positive")
	}
	if cfg.RedisDB < 0 {
		return errors.New("redis db must not be negative")
	}
	if cfg.EnableHTTPS && (cfg.TLSCertPath == "" || cfg.TLSKeyPath == "") {
		return errors.New("HTTPS requires certificate and key paths")
	}
	return nil
}

// loadFile кладёт значения из JSON- или YAML-файла слоем под окружением.
func loadFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %q: %w", path, err)
	}
	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}
	for key, val := range raw {
		if list, ok := val.([]any); ok {
			parts := make([]string, 0, len(list))
			for _, item := range list {
				parts = append(parts, fmt.Sprint(item))
			}
			val = strings.Join(parts, ",")
		}
		v.SetDefault(strings.ToUpper(key), val)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
