// Package db はリレーショナルデータベースへの接続とマイグレーションを提供します。
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authentity "blog_backend/internal/feature/auth/domain/entity"
	blogentity "blog_backend/internal/feature/blog/domain/entity"
	categoryentity "blog_backend/internal/feature/category/domain/entity"
	usersentity "blog_backend/internal/feature/users/domain/entity"
	"blog_backend/internal/platform/config"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	// retryInterval は接続リトライの間隔です。
	retryInterval = 3 * time.Second

	// pgUniqueViolation はPostgreSQLの一意制約違反のSQLSTATEです。
	pgUniqueViolation = "23505"
)

// Config はデータベース接続設定です。
type Config struct {
	Driver         string
	User           string
	Password       string
	Name           string
	Host           string
	Port           string
	SSLMode        string
	Path           string
	ConnectTimeout time.Duration
	RunMigrations  bool
}

// LoadConfig はアプリケーション設定からデータベース設定を作成します。
func LoadConfig(c config.DatabaseConfig) Config {
	return Config{
		Driver:         c.Driver,
		User:           c.User,
		Password:       c.Password,
		Name:           c.Name,
		Host:           c.Host,
		Port:           c.Port,
		SSLMode:        c.SSLMode,
		Path:           c.Path,
		ConnectTimeout: c.ConnectTimeout,
		RunMigrations:  c.RunMigrations,
	}
}

// BuildDSN はドライバーに応じた接続文字列を生成します。
// sqlite の場合はファイルパスをそのまま返します。
func BuildDSN(cfg Config) string {
	if cfg.Driver == DriverSQLite {
		return cfg.Path
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode)
}

// Opener はDSNから *gorm.DB を開く関数です。テストで差し替えられます。
type Opener func(dsn string) (*gorm.DB, error)

func gormConfig() *gorm.Config {
	// ドライバー固有の一意制約エラーを gorm.ErrDuplicatedKey に変換する
	return &gorm.Config{TranslateError: true}
}

// OpenerFor はドライバー名に対応する Opener を返します。
func OpenerFor(driver string) (Opener, error) {
	switch driver {
	case DriverPostgres:
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), gormConfig())
		}, nil
	case DriverSQLite:
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(sqlite.Open(dsn), gormConfig())
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// ConnectWithRetry はタイムアウトまで retryInterval 間隔で接続を試行します。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// Open は設定に従ってデータベースへ接続し、必要ならマイグレーションを実行します。
func Open(cfg Config) (*gorm.DB, error) {
	opener, err := OpenerFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := ConnectWithRetry(BuildDSN(cfg), cfg.ConnectTimeout, opener)
	if err != nil {
		return nil, err
	}

	if cfg.Driver == DriverSQLite {
		// sqlite は書き込みが単一接続に限られるため、ロック競合を避ける
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if cfg.RunMigrations {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		slog.Info("database migrated", "driver", cfg.Driver)
	}
	return db, nil
}

// OpenSQLiteMemory はインメモリのsqliteを開き、マイグレーション済みの状態で返します。
// 接続を1本に固定するため、トランザクション内外で同じデータベースが見えます。
func OpenSQLiteMemory() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate はすべてのテーブルを作成・更新します。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&authentity.User{},
		&usersentity.Follow{},
		&blogentity.Post{},
		&blogentity.PostLike{},
		&blogentity.Comment{},
		&categoryentity.Category{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// IsUniqueViolation は err が一意制約違反かどうかを返します。
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
