package storage

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenAndMigrate opens the SQLite database at dataSourceName and brings the
// schema up to date.
func OpenAndMigrate(dataSourceName string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&BattleRecord{}, &PlayerStats{}, &CurrencyBalance{}); err != nil {
		return nil, err
	}
	return db, nil
}
