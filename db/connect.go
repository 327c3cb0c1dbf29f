package db

import (
	"time"

	"github.com/novayshop/shopbot/internal/models"
	"github.com/novayshop/shopbot/utils"
	"gorm.io/driver/postgres"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func ConnectDb(url string, log *utils.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  url,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Error),
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Info("✅ Database connection successfully")

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetMaxOpenConns(200)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func Migrate(db *gorm.DB, trigger bool, log *utils.Logger) error {
	if trigger {
		log.Info("📦 Migrating database...")
		tables := []interface{}{
			&models.User{},
			&models.Deposit{},
			&models.Product{},
			&models.Purchase{},
		}

		if err := db.AutoMigrate(tables...); err != nil {
			log.Errorf("✖ Failed to migrate database: %v", err)
			return err
		}
	}

	log.Info("✅ Database migrated")
	return nil
}
