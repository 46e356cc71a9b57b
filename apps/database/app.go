package database

import (
	"fmt"
	"time"

	"github.com/getevo/evo/v2/lib/log"
	"github.com/getevo/evo/v2/lib/settings"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the shared GORM handle. Services take it as a constructor argument so
// tests can substitute an in-memory database.
var DB *gorm.DB

// Config holds the database connection configuration
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Debug           bool
}

// App represents the database application module
type App struct{}

// Register opens the database connection so later apps can use it during
// their own registration
func (App) Register() error {
	log.Info("Registering database app...")
	return Initialize()
}

// Router registers HTTP routes (none for database)
func (App) Router() error {
	return nil
}

// WhenReady is a no-op, migration runs from the models app
func (App) WhenReady() error {
	return nil
}

// Name returns the app name
func (App) Name() string {
	return "database"
}

// Shutdown gracefully closes the database connection
func (App) Shutdown() error {
	log.Info("Shutting down database connection...")
	return Close()
}

// Initialize opens the MySQL connection described by settings
//
// Example config.yml:
//
//	DATABASE:
//	  DSN: "timechamp:secret@tcp(localhost:3306)/timechamp?charset=utf8mb4&parseTime=True&loc=Local"
//	  MAX_OPEN_CONNS: 25
func Initialize() error {
	config := loadConfig()

	if config.DSN == "" {
		return fmt.Errorf("DATABASE.DSN is not configured")
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Duplicate-key errors surface as gorm.ErrDuplicatedKey so services
		// can map them onto the Conflict taxonomy
		TranslateError: true,
	}
	if config.Debug {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(mysql.Open(config.DSN), gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)

	DB = db
	log.Info("Database connected (max open conns: %d)", config.MaxOpenConns)
	return nil
}

func loadConfig() Config {
	config := Config{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	}

	config.DSN = settings.Get("DATABASE.DSN").String()
	if maxOpen := settings.Get("DATABASE.MAX_OPEN_CONNS").Int(); maxOpen > 0 {
		config.MaxOpenConns = maxOpen
	}
	if maxIdle := settings.Get("DATABASE.MAX_IDLE_CONNS").Int(); maxIdle > 0 {
		config.MaxIdleConns = maxIdle
	}
	if lifetime, err := settings.Get("DATABASE.CONN_MAX_LIFETIME", "1h").Duration(); err == nil && lifetime > 0 {
		config.ConnMaxLifetime = lifetime
	}
	config.Debug = settings.Get("DATABASE.DEBUG").Bool()

	return config
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
