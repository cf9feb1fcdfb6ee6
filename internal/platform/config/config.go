// Package config は起動時に一度だけ設定を読み込みます。
// 読み込んだ値はコンストラクタへ明示的に渡し、リクエスト処理中に環境変数は参照しません。
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingJWTSecret は署名用シークレットが未設定の場合に Validate が返すエラーです。
var ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")

// Config は環境変数・.env・config.yaml から読み込んだ設定をまとめたものです。
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig は接続先データベースの設定です。
// Driver は "postgres" か "sqlite"。Path は sqlite の場合のみ使用します。
type DatabaseConfig struct {
	Driver         string        `mapstructure:"driver"`
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	Name           string        `mapstructure:"name"`
	SSLMode        string        `mapstructure:"sslmode"`
	Path           string        `mapstructure:"path"`
	RunMigrations  bool          `mapstructure:"run_migrations"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Enabled は Redis ホストが設定されているかを返します。
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Host) != ""
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// AuthConfig は署名用シークレットのみを持ちます。トークンの有効期限は固定です。
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SlogLevel は Level を slog.Level に変換します。不正な値は info 扱いです。
func (l LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(l.Level))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// NewLogger は Level 以上を w へJSON形式で出力するロガーを返します。
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l.SlogLevel()}))
}

var envBindings = map[string]string{
	"server.addr":              "SERVER_ADDR",
	"server.shutdown_timeout":  "SHUTDOWN_TIMEOUT",
	"database.driver":          "DB_DRIVER",
	"database.host":            "DB_HOST",
	"database.port":            "DB_PORT",
	"database.user":            "DB_USER",
	"database.password":        "DB_PASSWORD",
	"database.name":            "DB_NAME",
	"database.sslmode":         "DB_SSLMODE",
	"database.path":            "DB_PATH",
	"database.run_migrations":  "RUN_MIGRATIONS",
	"database.connect_timeout": "DB_CONNECT_TIMEOUT",
	"redis.host":               "REDIS_HOST",
	"redis.port":               "REDIS_PORT",
	"redis.password":           "REDIS_PASSWORD",
	"redis.db":                 "REDIS_DB",
	"redis.cache_ttl":          "CACHE_TTL",
	"auth.jwt_secret":          "JWT_SECRET",
	"log.level":                "LOG_LEVEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "blog")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "./blog.db")
	v.SetDefault("database.run_migrations", false)
	v.SetDefault("database.connect_timeout", 60*time.Second)
	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", 5*time.Minute)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("log.level", "info")
}

// Load は .env と config.yaml（いずれも任意）と環境変数から設定を読み込みます。
// 環境変数が設定ファイルより優先されます。
func Load() (Config, error) {
	// 既存の環境変数は上書きされない
	_ = godotenv.Load(".env")

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	return cfg, nil
}

// Validate は起動に必須の設定を検証します。
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	return nil
}
