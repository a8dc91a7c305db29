package config

import (
	"log"

	"github.com/newsgap/newsgap/global"
	"github.com/newsgap/newsgap/models"
)

// MigrateDB runs database migrations
func MigrateDB() {
	err := global.DB.AutoMigrate(
		&models.Article{},
		&models.Source{},
		&models.CustomCategory{},
		&models.CategorySource{},
		&models.Analysis{},
		&models.TrendInsight{},
		&models.Credential{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")
}
