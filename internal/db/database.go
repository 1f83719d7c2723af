package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/ikkim/minishop-backend/config"
	appLogger "github.com/ikkim/minishop-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const pingTimeout = 3 * time.Second

// ErrSessionClosed is returned when a session is committed twice.
var ErrSessionClosed = errors.New("session already closed")

// Gateway owns the connection pool and hands out scoped sessions.
// It is built once by the entry point and passed to every service.
type Gateway struct {
	db *gorm.DB
}

// Session is a transactional handle valid only inside Gateway.WithSession.
type Session struct {
	tx     *gorm.DB
	closed bool
}

// Open connects to the store described by cfg.
func Open(cfg *config.DatabaseConfig) (*Gateway, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN())
	case "postgres", "postgresql", "":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	appLogger.Info("Connecting to database", map[string]interface{}{
		"driver":   cfg.Driver,
		"host":     cfg.Host,
		"database": cfg.DBName,
		"from_url": cfg.URL != "",
	})

	g, err := newGateway(dialector, cfg.Driver == "sqlite")
	if err != nil {
		return nil, err
	}

	sqlDB, err := g.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	appLogger.Info("Database connection established successfully")
	return g, nil
}

func newGateway(dialector gorm.Dialector, singleWriter bool) (*Gateway, error) {
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent), // we log through pkg/logger
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	configurePool(sqlDB, singleWriter)

	return &Gateway{db: gdb}, nil
}

func configurePool(sqlDB *sql.DB, singleWriter bool) {
	if singleWriter {
		// SQLite allows one writer; sessions queue on the pool instead of failing with SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		return
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
}

// WithSession runs fn inside a fresh transaction. The transaction is always
// released: unless fn calls Session.Commit it is rolled back, including when
// fn returns an error or panics.
func (g *Gateway) WithSession(ctx context.Context, fn func(s *Session) error) error {
	tx := g.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		appLogger.Error("Failed to open session", tx.Error)
		return fmt.Errorf("begin session: %w", tx.Error)
	}

	s := &Session{tx: tx}
	defer func() {
		if s.closed {
			return
		}
		if err := tx.Rollback().Error; err != nil && !errors.Is(err, sql.ErrTxDone) {
			appLogger.Error("Failed to roll back session", err)
		}
		s.closed = true
	}()

	return fn(s)
}

// DB returns the transactional handle repositories bind to.
func (s *Session) DB() *gorm.DB {
	return s.tx
}

// Commit makes the session's writes durable and closes it.
func (s *Session) Commit() error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.tx.Commit().Error; err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	s.closed = true
	return nil
}

// Close closes the database connection
func (g *Gateway) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB exposes the pooled handle for schema management and test assertions.
// Request handling goes through WithSession.
func (g *Gateway) DB() *gorm.DB {
	return g.db
}
