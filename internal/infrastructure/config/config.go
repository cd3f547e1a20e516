package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env        string
	HTTPServer HTTPServer
	Database   Database
	JWT        JWT
	Auth       Auth
	Upload     Upload
	CORS       CORS
	Prometheus Prometheus
}

type HTTPServer struct {
	Address         string
	Port            int
	BaseURL         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Database struct {
	Username string
	Password string
	Host     string
	Port     string
	DbName   string
	SSLMode  string
	MaxConns int32
}

type JWT struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

type Auth struct {
	BcryptCost int
}

type Upload struct {
	Dir            string
	MaxSize        int64
	CleanupTimeout time.Duration
}

type CORS struct {
	AllowedOrigins []string
}

type Prometheus struct {
	Address string
	Port    int
}

// DSN is the pgx connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(d.Username),
		url.QueryEscape(d.Password),
		d.Host,
		d.Port,
		d.DbName,
		d.SSLMode)
}

// MigrationURL is the same database addressed through the golang-migrate pgx/v5 driver.
func (d Database) MigrationURL() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(d.Username),
		url.QueryEscape(d.Password),
		d.Host,
		d.Port,
		d.DbName,
		d.SSLMode)
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Printf("Error loading config: %s", err)
		os.Exit(1)
	}
	return cfg
}

// Load reads ./config/config.yaml when present, then applies environment
// overrides (DATABASE_HOST overrides database.host). A .env file in the working
// directory is loaded into the environment first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("env", "dev")

	v.SetDefault("http_server.address", "0.0.0.0")
	v.SetDefault("http_server.port", 5000)
	v.SetDefault("http_server.base_url", "http://localhost:5000")
	v.SetDefault("http_server.read_timeout", 15*time.Second)
	v.SetDefault("http_server.write_timeout", 30*time.Second)
	v.SetDefault("http_server.shutdown_timeout", 30*time.Second)

	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "admin")
	v.SetDefault("database.host", "post-db")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.db_name", "feedstack")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", time.Hour)
	v.SetDefault("jwt.issuer", "feedstack")

	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_size", 25<<20)
	v.SetDefault("upload.cleanup_timeout", 10*time.Second)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("prometheus.address", "0.0.0.0")
	v.SetDefault("prometheus.port", 9104)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	config := &Config{
		Env: v.GetString("env"),
		HTTPServer: HTTPServer{
			Address:         v.GetString("http_server.address"),
			Port:            v.GetInt("http_server.port"),
			BaseURL:         strings.TrimRight(v.GetString("http_server.base_url"), "/"),
			ReadTimeout:     v.GetDuration("http_server.read_timeout"),
			WriteTimeout:    v.GetDuration("http_server.write_timeout"),
			ShutdownTimeout: v.GetDuration("http_server.shutdown_timeout"),
		},
		Database: Database{
			Username: v.GetString("database.username"),
			Password: v.GetString("database.password"),
			Host:     v.GetString("database.host"),
			Port:     v.GetString("database.port"),
			DbName:   v.GetString("database.db_name"),
			SSLMode:  v.GetString("database.ssl_mode"),
			MaxConns: v.GetInt32("database.max_conns"),
		},
		JWT: JWT{
			Secret: v.GetString("jwt.secret"),
			TTL:    v.GetDuration("jwt.ttl"),
			Issuer: v.GetString("jwt.issuer"),
		},
		Auth: Auth{
			BcryptCost: v.GetInt("auth.bcrypt_cost"),
		},
		Upload: Upload{
			Dir:            v.GetString("upload.dir"),
			MaxSize:        v.GetInt64("upload.max_size"),
			CleanupTimeout: v.GetDuration("upload.cleanup_timeout"),
		},
		CORS: CORS{
			AllowedOrigins: v.GetStringSlice("cors.allowed_origins"),
		},
		Prometheus: Prometheus{
			Address: v.GetString("prometheus.address"),
			Port:    v.GetInt("prometheus.port"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("jwt.secret (JWT_SECRET) must be set")
	}
	if config.Upload.MaxSize <= 0 {
		return nil, fmt.Errorf("upload.max_size must be positive, got %d", config.Upload.MaxSize)
	}

	return config, nil
}
