package postgres

import (
	"log"

	"github.com/crestline-media/fulfillment-service/internal/config"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.FulfillmentConfig) *gorm.DB {
	dsn := cfg.OrderDB.Dsn
	// TranslateError turns unique violations into gorm.ErrDuplicatedKey,
	// which the repositories map onto the domain duplicate errors.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	db.AutoMigrate(
		&models.OrderModel{},
		&models.WebhookEventModel{},
		&models.ConfirmationModel{},
		&models.FulfillmentModel{},
		&models.AuditEventModel{},
	)

	return db
}
