package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookcatalog/internal/entities"
)

// Models lists every table managed by AutoMigrate, parents first.
var Models = []any{
	&entities.Permission{},
	&entities.Group{},
	&entities.User{},
	&entities.AuthToken{},
	&entities.Book{},
	&entities.AuditEvent{},
}

type Database struct {
	DB *gorm.DB
}

// Options tunes how the connection is opened.
type Options struct {
	LogLevel logger.LogLevel
}

// NewDatabase opens the SQLite database at dbPath and migrates the schema.
func NewDatabase(dbPath string) (*Database, error) {
	return Open(dbPath, Options{LogLevel: logger.Warn})
}

// Open is NewDatabase with explicit options.
func Open(dbPath string, opts Options) (*Database, error) {
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}

	db, err := gorm.Open(sqlite.Open(dsn(dbPath)), &gorm.Config{
		Logger:         logger.Default.LogMode(opts.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

// dsn enables foreign keys and a busy timeout unless the caller already
// passed connection parameters.
func dsn(dbPath string) string {
	if strings.Contains(dbPath, "?") {
		return dbPath
	}
	return dbPath + "?_foreign_keys=on&_busy_timeout=5000"
}

// Ping verifies the underlying connection is usable.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
