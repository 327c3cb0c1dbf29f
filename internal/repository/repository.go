package repository

import (
	"github.com/novayshop/shopbot/utils"
	"gorm.io/gorm"
)

// Repository is the ledger store. Every multi-row mutation (balance change
// plus the matching deposit/purchase row) runs inside a single database
// transaction; balance updates and the deposit status transition are
// conditional single-statement UPDATEs, never read-modify-write.
type Repository struct {
	db     *gorm.DB
	logger *utils.Logger
}

func NewRepository(db *gorm.DB, logger *utils.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}
