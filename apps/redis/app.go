package redis

import (
	"github.com/getevo/evo/v2/lib/application"
	"github.com/getevo/evo/v2/lib/log"
)

// App represents the Redis application module
type App struct{}

// Register initializes the Redis module
func (App) Register() error {
	log.Info("Registering Redis app...")
	return nil
}

// Router registers HTTP routes (none for Redis)
func (App) Router() error {
	return nil
}

// WhenReady connects to Redis after the application is fully initialized
func (App) WhenReady() error {
	return Initialize()
}

// Name returns the app name
func (App) Name() string {
	return "redis"
}

// Shutdown gracefully closes the Redis connection
func (App) Shutdown() error {
	log.Info("Shutting down Redis connection...")
	return Close()
}

var _ application.Application = (*App)(nil)
