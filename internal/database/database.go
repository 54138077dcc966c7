package database

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/sunflower/internal/entities"
	"github.com/mrlokans/sunflower/internal/live"
)

// SchemaVersion is stored in PRAGMA user_version. No migrations exist yet.
const SchemaVersion = 1

// InMemoryPath opens a private in-memory database instead of a file.
const InMemoryPath = ":memory:"

var memoryDatabases atomic.Int64

type Database struct {
	DB *gorm.DB

	path    string
	created bool
	hub     *live.Hub
}

// OnCreateFunc runs once per database, before its schema version is recorded.
// A failing hook leaves the version unset so the next open runs it again.
type OnCreateFunc func(db *Database) error

type options struct {
	logLevel logger.LogLevel
	onCreate []OnCreateFunc
}

// Option configures NewDatabase.
type Option func(*options)

// WithLogLevel sets the gorm logger level. Defaults to logger.Warn.
func WithLogLevel(level logger.LogLevel) Option {
	return func(o *options) {
		o.logLevel = level
	}
}

// WithOnCreate registers a hook that runs only while the database has no
// schema version recorded, which covers new files and files whose
// initialization never completed.
func WithOnCreate(fn OnCreateFunc) Option {
	return func(o *options) {
		o.onCreate = append(o.onCreate, fn)
	}
}

// ParseLogLevel maps a config string to a gorm log level.
func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func NewDatabase(dbPath string, opts ...Option) (*Database, error) {
	o := options{logLevel: logger.Warn}
	for _, opt := range opts {
		opt(&o)
	}

	if err := prepareFile(dbPath); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dsn(dbPath)), &gorm.Config{
		Logger: logger.Default.LogMode(o.logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database := &Database{
		DB:   db,
		path: dbPath,
		hub:  live.NewHub(),
	}

	version, err := database.SchemaVersion()
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("read schema version: %w", err)
	}
	if version > SchemaVersion {
		_ = database.Close()
		return nil, fmt.Errorf("database schema version %d is newer than supported version %d", version, SchemaVersion)
	}
	database.created = version == 0

	if err := database.migrate(); err != nil {
		_ = database.Close()
		return nil, err
	}

	if err := database.registerInvalidation(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to register change tracking: %w", err)
	}

	if database.created {
		for _, fn := range o.onCreate {
			if err := fn(database); err != nil {
				_ = database.Close()
				return nil, fmt.Errorf("on create callback: %w", err)
			}
		}
	}

	if version < SchemaVersion {
		if err := database.DB.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)).Error; err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("write schema version: %w", err)
		}
	}

	log.Printf("Database initialized successfully at %s (created=%t)", dbPath, database.created)

	return database, nil
}

// prepareFile creates the parent directory of a database file that does not
// exist yet.
func prepareFile(dbPath string) error {
	if dbPath == InMemoryPath {
		return nil
	}

	_, err := os.Stat(dbPath)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		if dir := filepath.Dir(dbPath); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create database dir: %w", err)
			}
		}
		return nil
	default:
		return fmt.Errorf("stat database file: %w", err)
	}
}

// dsn enables WAL, a busy timeout and foreign keys on every pooled connection.
func dsn(dbPath string) string {
	if dbPath == InMemoryPath {
		n := memoryDatabases.Add(1)
		return fmt.Sprintf("file:sunflower-mem-%d?mode=memory&cache=shared&_foreign_keys=on", n)
	}

	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
}

func (d *Database) migrate() error {
	err := d.DB.AutoMigrate(
		&entities.Plant{},
		&entities.GardenPlanting{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Path returns the path the database was opened with.
func (d *Database) Path() string {
	return d.path
}

// Created reports whether this open initialized the database, running the
// OnCreate hooks.
func (d *Database) Created() bool {
	return d.created
}

// Changes returns the notifier that signals writes, keyed by table name.
func (d *Database) Changes() live.Notifier {
	return d.hub
}

// SchemaVersion returns the version recorded in the database file.
func (d *Database) SchemaVersion() (int, error) {
	var version int
	err := d.DB.Raw("PRAGMA user_version").Scan(&version).Error
	return version, err
}
