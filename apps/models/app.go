package models

import (
	"github.com/getevo/evo/v2/lib/args"

	"github.com/Wakar473/Timechamp/apps/database"
)

type App struct{}

func (a App) Register() error {
	return nil
}

func (a App) Router() error {
	return nil
}

func (a App) WhenReady() error {
	if args.Exists("--migration-do") {
		return database.DB.AutoMigrate(
			&WorkSession{},
			&ActivityLog{},
			&DailySummary{},
			&Alert{},
		)
	}
	return nil
}

func (a App) Name() string {
	return "models"
}
