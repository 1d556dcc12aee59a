package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/learnhub-backend/internal/data/docstore"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&docstore.DocumentRow{},
	)
}
