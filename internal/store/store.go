package store

import (
	"database/sql"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	// Pure Go SQLite driver; the gorm dialector runs on its connection.
	_ "modernc.org/sqlite"
)

// MemoryDSN names the process-wide in-memory database. The data lives only
// as long as the Store is open.
const MemoryDSN = "file:tonesnap?mode=memory&cache=shared"

// Store holds the database handle and provides access to repositories.
type Store struct {
	db *gorm.DB
}

// Open creates a Store connected to dsn, applies pragmas and migrates the
// event tables.
func Open(dsn string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps the in-memory database alive and makes
	// per-connection pragmas apply to every statement.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	db, err := gorm.Open(sqlite.Dialector{DriverName: "sqlite", Conn: sqlDB}, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := db.AutoMigrate(&LLMRequestEvent{}, &AnswerEvent{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection, discarding an in-memory database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db}
}

func applyPragmas(db *gorm.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = OFF",
	}
	for _, p := range pragmas {
		if err := db.Exec(p).Error; err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
