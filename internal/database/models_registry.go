package database

import "boostly/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Account{},
		&models.Company{},
		&models.Post{},
		&models.LikeEvent{},
	}
}
